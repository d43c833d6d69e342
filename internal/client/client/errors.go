package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnavailable    = errors.New("server unavailable")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrSessionExpired = errors.New("session expired, please log in again")
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("already exists")
	ErrNotLoggedIn    = errors.New("not logged in")
)

// APIError is a non-2xx reply of the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server replied %d", e.Status)
	}
	return fmt.Sprintf("server replied %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return ErrUnavailable
	default:
		return nil
	}
}
