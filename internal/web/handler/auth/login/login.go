// Package login handles local username/password logins.
package login

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/GoCampusAuth/GoCampusAuth/internal/auth"
	"github.com/GoCampusAuth/GoCampusAuth/internal/web/handler"
)

// Path is the local login endpoint.
const Path = "/api/auth/login"

// Service is the local login handler service.
type Service struct {
	handler.Service
	deps *handler.Deps
}

// Handler is the local login handler.
var Handler = Service{}

type loginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Init initializes the local login handler.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || deps == nil {
		return errors.New(handler.ErrNilADFatalLogMsg)
	}

	s.deps = deps

	app.Post(Path, s.Post)

	return nil
}

// Post authenticates a username/password pair and answers a token pair.
func (s *Service) Post(c *fiber.Ctx) error {
	if s.deps.Local == nil {
		return handler.Error(c, fiber.StatusNotFound, "local authentication is not enabled")
	}

	input := new(loginInput)
	if err := c.BodyParser(input); err != nil {
		return handler.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	if input.Username == "" || input.Password == "" {
		return handler.Error(c, fiber.StatusBadRequest, "username and password are required")
	}

	acct, profile, err := s.deps.Local.Authenticate(input.Username, input.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrAccountDisabled):
			return handler.Error(c, fiber.StatusForbidden, "account is disabled")
		case errors.Is(err, auth.ErrUserNotFound), errors.Is(err, auth.ErrInvalidPassword):
			return handler.Error(c, fiber.StatusUnauthorized, "invalid username or password")
		default:
			log.Error().Err(err).Msg("local login failed")

			return handler.Error(c, fiber.StatusInternalServerError, "internal server error")
		}
	}

	response, err := s.deps.Issuer.Issue(acct, profile)
	if err != nil {
		log.Error().Err(err).Msg("failed to issue tokens")

		return handler.Error(c, fiber.StatusInternalServerError, "internal server error")
	}

	return c.JSON(response)
}
