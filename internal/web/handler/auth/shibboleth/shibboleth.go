// Package shibboleth handles logins asserted by the Shibboleth service
// provider proxy in front of the application.
package shibboleth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/GoCampusAuth/GoCampusAuth/internal/auth"
	"github.com/GoCampusAuth/GoCampusAuth/internal/web/handler"
)

// Path is the Shibboleth login endpoint.
const Path = "/api/auth/shibboleth"

// Service is the Shibboleth login handler service.
type Service struct {
	handler.Service
	deps *handler.Deps
}

// Handler is the Shibboleth login handler.
var Handler = Service{}

// Init initializes the Shibboleth login handler.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || deps == nil {
		return errors.New(handler.ErrNilADFatalLogMsg)
	}

	s.deps = deps

	app.Get(Path, s.Get)

	return nil
}

// Get resolves the proxy-asserted identity and answers a token pair.
func (s *Service) Get(c *fiber.Ctx) error {
	if s.deps.Shibboleth == nil {
		return handler.Error(c, fiber.StatusNotFound, "shibboleth authentication is not enabled")
	}

	headers := func(name string) string { return c.Get(name) }

	acct, profile, err := s.deps.Shibboleth.Authenticate(headers)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrMissingIdentityHeader),
			errors.Is(err, auth.ErrUntrustedSource),
			errors.Is(err, auth.ErrMissingRequiredAttribute):
			log.Debug().Err(err).Msg("shibboleth assertion rejected")

			return handler.Error(c, fiber.StatusUnauthorized, "authentication failed")
		case errors.Is(err, auth.ErrAccountDisabled):
			return handler.Error(c, fiber.StatusForbidden, "account is disabled")
		default:
			log.Error().Err(err).Msg("shibboleth login failed")

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
