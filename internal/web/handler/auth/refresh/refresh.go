// Package refresh exchanges a refresh token for a fresh token pair.
package refresh

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/GoCampusAuth/GoCampusAuth/internal/db/controller/account"
	"github.com/GoCampusAuth/GoCampusAuth/internal/token"
	"github.com/GoCampusAuth/GoCampusAuth/internal/web/handler"
)

// Path is the token refresh endpoint.
const Path = "/api/auth/refresh"

// Service is the token refresh handler service.
type Service struct {
	handler.Service
	deps *handler.Deps
}

// Handler is the token refresh handler.
var Handler = Service{}

type refreshInput struct {
	Refresh string `json:"refresh"`
}

// Init initializes the token refresh handler.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || deps == nil {
		return errors.New(handler.ErrNilADFatalLogMsg)
	}

	s.deps = deps

	app.Post(Path, s.Post)

	return nil
}

// Post verifies the refresh token and answers a new token pair reflecting the
// account's current state.
func (s *Service) Post(c *fiber.Ctx) error {
	input := new(refreshInput)
	if err := c.BodyParser(input); err != nil || input.Refresh == "" {
		return handler.Error(c, fiber.StatusBadRequest, "refresh token is required")
	}

	claims, err := s.deps.Issuer.Verify(input.Refresh, token.TypeRefresh)
	if err != nil {
		return handler.Error(c, fiber.StatusUnauthorized, "invalid token")
	}

	acct, err := account.GetByUsername(s.deps.DB, claims.Username)
	if err != nil {
		return handler.Error(c, fiber.StatusUnauthorized, "invalid token")
	}

	if !acct.Active {
		return handler.Error(c, fiber.StatusForbidden, "account is disabled")
	}

	profile, err := account.EnsureProfile(s.deps.DB, acct, account.CreateOptions{
		DefaultAffiliation: s.deps.Config.Populate.DefaultAffiliation,
		HashkeySecret:      s.deps.Config.Populate.HashkeySecret,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to load profile")

		return handler.Error(c, fiber.StatusInternalServerError, "internal server error")
	}

	response, err := s.deps.Issuer.Issue(acct, profile)
	if err != nil {
		log.Error().Err(err).Msg("failed to issue tokens")

		return handler.Error(c, fiber.StatusInternalServerError, "internal server error")
	}

	return c.JSON(response)
}
