package httpserver

import (
	"errors"

	"github.com/dmitrijs2005/tasklist/internal/common"
	"github.com/gofiber/fiber/v2"
)

type errorResponse struct {
	Message string `json:"message"`
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	var fe *fiber.Error
	switch {
	case common.IsAuthError(err):
		return fiber.StatusUnauthorized
	case errors.Is(err, common.ErrStoreUnavailable):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, common.ErrorValidation), errors.Is(err, common.ErrPasswordHash):
		return fiber.StatusBadRequest
	case errors.Is(err, common.ErrorAlreadyExists):
		return fiber.StatusConflict
	case errors.Is(err, common.ErrorNotFound):
		return fiber.StatusNotFound
	case errors.As(err, &fe):
		return fe.Code
	default:
		return fiber.StatusInternalServerError
	}
}

func writeError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		msg = common.ErrorInternal.Error()
	}
	return c.Status(status).JSON(errorResponse{Message: msg})
}

func (s *HTTPServer) errorHandler(c *fiber.Ctx, err error) error {
	if statusFor(err) == fiber.StatusInternalServerError {
		s.logger.Error(c.UserContext(), "request failed", "path", c.Path(), "error", err)
	}
	return writeError(c, err)
}

// failureReason is the metrics label of an auth gate rejection.
func failureReason(err error) string {
	switch {
	case errors.Is(err, common.ErrTokenExpired):
		return "token_expired"
	case errors.Is(err, common.ErrInvalidSignature):
		return "invalid_signature"
	case errors.Is(err, common.ErrTokenMalformed):
		return "token_malformed"
	case errors.Is(err, common.ErrUserNotFound):
		return "user_not_found"
	case errors.Is(err, common.ErrSessionNotFound):
		return "session_not_found"
	case errors.Is(err, common.ErrSessionExpired):
		return "session_expired"
	case errors.Is(err, common.ErrStoreUnavailable):
		return "store_unavailable"
	default:
		return "internal"
	}
}
