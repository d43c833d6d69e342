package httpserver

import (
	"context"

	"github.com/dmitrijs2005/tasklist/internal/common"
	"github.com/dmitrijs2005/tasklist/internal/server/auth"
	"github.com/dmitrijs2005/tasklist/internal/server/metrics"
	"github.com/dmitrijs2005/tasklist/internal/server/models"
	"github.com/dmitrijs2005/tasklist/internal/server/services"
	"github.com/gofiber/fiber/v2"
)

// Locals keys set by the auth gates.
const (
	LocalUserID       = "userId"
	LocalUserObject   = "userObject"
	LocalRefreshToken = "refreshToken"
)

type ctxKey string

const userIDKey ctxKey = "userID"

// UserIDFromContext returns the id stored by Authenticate or VerifySession.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok
}

func setUserID(c *fiber.Ctx, userID string) {
	c.Locals(LocalUserID, userID)
	c.SetUserContext(context.WithValue(c.UserContext(), userIDKey, userID))
}

// Authenticate is the access gate. It verifies x-access-token without
// touching the store.
func Authenticate(issuer auth.Issuer, m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Get(common.AccessTokenHeaderName)
		if token == "" {
			m.AuthFailure(metrics.GateAccess, "missing")
			return writeError(c, common.ErrTokenMalformed)
		}

		userID, err := issuer.VerifyAccessToken(token)
		if err != nil {
			m.AuthFailure(metrics.GateAccess, failureReason(err))
			return writeError(c, err)
		}

		setUserID(c, userID)
		return c.Next()
	}
}

// VerifySession is the refresh gate. It validates the x-refresh-token and _id
// pair against the stored sessions.
func VerifySession(sessions services.SessionManager, m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		refreshToken := c.Get(common.RefreshTokenHeaderName)
		userID := c.Get(common.UserIDHeaderName)

		user, err := sessions.ValidateSession(c.UserContext(), userID, refreshToken)
		if err != nil {
			m.AuthFailure(metrics.GateRefresh, failureReason(err))
			return writeError(c, err)
		}

		setUserID(c, user.ID)
		c.Locals(LocalUserObject, user)
		c.Locals(LocalRefreshToken, refreshToken)
		return c.Next()
	}
}

func localUserID(c *fiber.Ctx) string {
	id, _ := UserIDFromContext(c.UserContext())
	return id
}

func localUser(c *fiber.Ctx) (*models.User, string) {
	user, _ := c.Locals(LocalUserObject).(*models.User)
	token, _ := c.Locals(LocalRefreshToken).(string)
	return user, token
}
