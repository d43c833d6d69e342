package httpserver

import (
	"github.com/dmitrijs2005/tasklist/internal/common"
	"github.com/dmitrijs2005/tasklist/internal/server/services"
	"github.com/gofiber/fiber/v2"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type accessTokenResponse struct {
	AccessToken string `json:"accessToken"`
}

func parseCredentials(c *fiber.Ctx) (*credentialsRequest, error) {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid JSON payload")
	}
	return &req, nil
}

func writeAuthResult(c *fiber.Ctx, res *services.AuthResult) error {
	c.Set(common.RefreshTokenHeaderName, res.RefreshToken)
	c.Set(common.AccessTokenHeaderName, res.AccessToken)
	return c.JSON(res.User)
}

// POST /users
func (s *HTTPServer) signup(c *fiber.Ctx) error {
	req, err := parseCredentials(c)
	if err != nil {
		return err
	}

	res, err := s.deps.Users.Signup(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	s.logger.Info(c.UserContext(), "user signed up", "user_id", res.User.ID)
	return writeAuthResult(c, res)
}

// POST /users/login
func (s *HTTPServer) login(c *fiber.Ctx) error {
	req, err := parseCredentials(c)
	if err != nil {
		return err
	}

	res, err := s.deps.Users.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return writeAuthResult(c, res)
}

// GET /users/me/access-token
func (s *HTTPServer) refreshAccessToken(c *fiber.Ctx) error {
	user, _ := localUser(c)

	token, err := s.deps.Users.IssueAccessToken(user)
	if err != nil {
		return err
	}

	c.Set(common.AccessTokenHeaderName, token)
	return c.JSON(accessTokenResponse{AccessToken: token})
}

// DELETE /users/session
func (s *HTTPServer) logout(c *fiber.Ctx) error {
	user, token := localUser(c)

	if err := s.deps.Users.Logout(c.UserContext(), user.ID, token); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
