// Package oidc handles OpenID Connect authorization code logins.
package oidc

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/GoCampusAuth/GoCampusAuth/internal/auth"
	"github.com/GoCampusAuth/GoCampusAuth/internal/web/handler"
)

// Path is the OIDC login endpoint.
const Path = "/api/auth/oidc"

// Service is the OIDC login handler service.
type Service struct {
	handler.Service
	deps *handler.Deps
}

// Handler is the OIDC login handler.
var Handler = Service{}

type oidcInput struct {
	Code        string `json:"code"`
	RedirectURI string `json:"redirect_uri"`
}

// Init initializes the OIDC login handler.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || deps == nil {
		return errors.New(handler.ErrNilADFatalLogMsg)
	}

	s.deps = deps

	app.Post(Path, s.Post)

	return nil
}

// Post exchanges an authorization code and answers a token pair.
func (s *Service) Post(c *fiber.Ctx) error {
	if s.deps.OIDC == nil {
		return handler.Error(c, fiber.StatusNotFound, "oidc authentication is not enabled")
	}

	input := new(oidcInput)
	if err := c.BodyParser(input); err != nil {
		return handler.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	if input.Code == "" || input.RedirectURI == "" {
		return handler.Error(c, fiber.StatusBadRequest, "code and redirect_uri are required")
	}

	acct, profile, err := s.deps.OIDC.Authenticate(c.UserContext(), input.Code, input.RedirectURI)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrTokenExchangeFailed),
			errors.Is(err, auth.ErrUserInfoFetchFailed),
			errors.Is(err, auth.ErrMissingUsernameClaim):
			log.Debug().Err(err).Msg("oidc login rejected")

			return handler.Error(c, fiber.StatusUnauthorized, "authentication failed")
		case errors.Is(err, auth.ErrAccountDisabled):
			return handler.Error(c, fiber.StatusForbidden, "account is disabled")
		default:
			log.Error().Err(err).Msg("oidc login failed")

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
