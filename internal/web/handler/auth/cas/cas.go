// Package cas handles CAS ticket logins.
package cas

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/GoCampusAuth/GoCampusAuth/internal/auth"
	"github.com/GoCampusAuth/GoCampusAuth/internal/web/handler"
)

// Path is the CAS login endpoint.
const Path = "/api/auth/cas"

// Service is the CAS login handler service.
type Service struct {
	handler.Service
	deps *handler.Deps
}

// Handler is the CAS login handler.
var Handler = Service{}

type casInput struct {
	Ticket  string `json:"ticket"`
	Service string `json:"service"`
}

// Init initializes the CAS login handler.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || deps == nil {
		return errors.New(handler.ErrNilADFatalLogMsg)
	}

	s.deps = deps

	app.Post(Path, s.Post)

	return nil
}

// Post validates a service ticket and answers a token pair.
func (s *Service) Post(c *fiber.Ctx) error {
	if s.deps.CAS == nil {
		return handler.Error(c, fiber.StatusNotFound, "cas authentication is not enabled")
	}

	input := new(casInput)
	if err := c.BodyParser(input); err != nil {
		return handler.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	if input.Ticket == "" || input.Service == "" {
		return handler.Error(c, fiber.StatusBadRequest, "ticket and service are required")
	}

	acct, profile, err := s.deps.CAS.Authenticate(input.Ticket, input.Service)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidTicket):
			return handler.Error(c, fiber.StatusUnauthorized, "authentication failed")
		case errors.Is(err, auth.ErrAccountDisabled):
			return handler.Error(c, fiber.StatusForbidden, "account is disabled")
		default:
			log.Error().Err(err).Msg("cas login failed")

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
