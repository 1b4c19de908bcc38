// Package web wires the fiber application: routes, middleware and the
// graceful shutdown sequence.
package web

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoCampusAuth/GoCampusAuth/internal/auth"
	"github.com/GoCampusAuth/GoCampusAuth/internal/config"
	"github.com/GoCampusAuth/GoCampusAuth/internal/db/controller/account"
	"github.com/GoCampusAuth/GoCampusAuth/internal/directory"
	fiberlogger "github.com/GoCampusAuth/GoCampusAuth/internal/logger/adapter/fiber"
	"github.com/GoCampusAuth/GoCampusAuth/internal/populate"
	"github.com/GoCampusAuth/GoCampusAuth/internal/token"
	"github.com/GoCampusAuth/GoCampusAuth/internal/web/handler"
	groupadmin "github.com/GoCampusAuth/GoCampusAuth/internal/web/handler/admin/accessgroup"
	cashandler "github.com/GoCampusAuth/GoCampusAuth/internal/web/handler/auth/cas"
	"github.com/GoCampusAuth/GoCampusAuth/internal/web/handler/auth/login"
	oidchandler "github.com/GoCampusAuth/GoCampusAuth/internal/web/handler/auth/oidc"
	"github.com/GoCampusAuth/GoCampusAuth/internal/web/handler/auth/refresh"
	shibhandler "github.com/GoCampusAuth/GoCampusAuth/internal/web/handler/auth/shibboleth"
)

// CheckAlivePath is the load balancer health check endpoint.
const CheckAlivePath = "/checkalive"

// Service represents the web service.
type Service struct {
	App   *fiber.App
	cfg   *config.Config
	alive atomic.Bool
}

// New creates a new web service with the given configuration. The site row
// must already exist, population attaches new profiles and groups to it.
func New(cfg *config.Config, db *gorm.DB, siteID uint) *Service {
	if cfg == nil {
		panic("config cannot be nil")
	}

	if db == nil {
		panic("db cannot be nil")
	}

	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        cfg.Title,
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
		},
	)

	if !cfg.Webserver.DisableRecover {
		app.Use(recover.New())
	}

	app.Use(fiberlogger.New(fiberlogger.Config{
		Config:        cfg.Log,
		CheckAliveURI: CheckAlivePath,
	}))

	service := &Service{
		cfg: cfg,
		App: app,
	}
	service.alive.Store(true)

	app.Get(CheckAlivePath, func(c *fiber.Ctx) error {
		if !service.alive.Load() {
			return c.Status(fiber.StatusServiceUnavailable).SendString("shutting down")
		}

		return c.SendString("OK")
	})

	deps := buildDeps(cfg, db, siteID)

	// init handlers (they register their own routes)
	for name, h := range map[string]handler.Service{
		"login":       &login.Handler,
		"refresh":     &refresh.Handler,
		"cas":         &cashandler.Handler,
		"shibboleth":  &shibhandler.Handler,
		"oidc":        &oidchandler.Handler,
		"accessgroup": &groupadmin.Handler,
	} {
		if err := h.Init(app, deps); err != nil {
			log.Fatal().Err(err).Str("handler", name).Msg("failed to init handler")
		}
	}

	return service
}

// buildDeps constructs the shared handler dependencies: populator, token
// issuer and the enabled providers.
func buildDeps(cfg *config.Config, db *gorm.DB, siteID uint) *handler.Deps {
	issuer, err := token.New(&cfg.Token)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create token issuer")
	}

	dir := directory.New(&cfg.Directory)
	populator := populate.New(db, &cfg.Populate, dir, siteID)

	opts := account.CreateOptions{
		DefaultAffiliation: cfg.Populate.DefaultAffiliation,
		HashkeySecret:      cfg.Populate.HashkeySecret,
		SiteID:             siteID,
	}

	deps := &handler.Deps{
		Config:    cfg,
		DB:        db,
		Issuer:    issuer,
		Populator: populator,
	}

	if cfg.Auth.Local.Enabled {
		deps.Local, err = auth.NewLocalProvider(&cfg.Auth.Local, db, opts)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create local provider")
		}
	}

	if cfg.Auth.CAS.Enabled {
		deps.CAS, err = auth.NewCASProvider(&cfg.Auth.CAS, &cfg.Directory.Attributes, db, populator, opts)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create cas provider")
		}
	}

	if cfg.Auth.Shibboleth.Enabled {
		deps.Shibboleth, err = auth.NewShibbolethProvider(&cfg.Auth.Shibboleth, db, populator, opts)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create shibboleth provider")
		}
	}

	if cfg.Auth.OIDC.Enabled {
		deps.OIDC, err = auth.NewOIDCProvider(context.Background(), &cfg.Auth.OIDC, db, populator, opts)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create oidc provider")
		}
	}

	return deps
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown waits for a termination signal and shuts the service down.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: fail the health check first so
	// the load balancer removes this instance from its active targets.
	if s.cfg.Webserver.ShutDownTime > 0 {
		log.Info().Msgf(
			"graceful shutdown: returning 503 on %s for %d seconds",
			CheckAlivePath,
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	serverShutdown := make(chan struct{})

	go func() {
		log.Info().Msg("stopping http server ...")

		if err := s.App.Shutdown(); err != nil {
			log.Error().Err(err).Msg("")
		}

		serverShutdown <- struct{}{}
	}()

	<-serverShutdown
	log.Info().Msg("http server was stopped ... good bye...")
}
