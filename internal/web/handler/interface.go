// Package handler defines the shared plumbing of the web handlers.
package handler

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/GoCampusAuth/GoCampusAuth/internal/auth"
	"github.com/GoCampusAuth/GoCampusAuth/internal/config"
	"github.com/GoCampusAuth/GoCampusAuth/internal/populate"
	"github.com/GoCampusAuth/GoCampusAuth/internal/token"
)

// Deps carries the shared dependencies injected into every handler.
// Provider fields are nil when the matching provider is disabled; handlers
// answer 404 for routes of disabled providers.
type Deps struct {
	Config     *config.Config
	DB         *gorm.DB
	Issuer     *token.Issuer
	Populator  *populate.Populator
	Local      *auth.LocalProvider
	CAS        *auth.CASProvider
	Shibboleth *auth.ShibbolethProvider
	OIDC       *auth.OIDCProvider
}

// Service is the interface for a web handler service.
type Service interface {
	Init(app *fiber.App, deps *Deps) error
}
