// Package daemon boots the application: database, schema, seed data and the
// web service.
package daemon

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/GoCampusAuth/GoCampusAuth/internal/config"
	"github.com/GoCampusAuth/GoCampusAuth/internal/db/dsn"
	"github.com/GoCampusAuth/GoCampusAuth/internal/db/models"
	"github.com/GoCampusAuth/GoCampusAuth/internal/web"
)

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	webService *web.Service
}

// Start starts the daemon's web service and blocks until shutdown.
func (d *Daemon) Start() error {
	go d.webService.WaitShutdown()

	return d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port))
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) *Daemon {
	if cfg == nil {
		log.Fatal().Msg("config is nil")
		return nil
	}

	db, err := openDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	if err = db.AutoMigrate(
		&models.Site{},
		&models.Account{},
		&models.Profile{},
		&models.AccessGroup{},
	); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	site := seed(cfg, db)

	return &Daemon{
		cfg:        cfg,
		webService: web.New(cfg, db, site.ID),
	}
}

// openDB opens the database with the configured gorm engine.
// TranslateError turns driver duplicate-key errors into gorm.ErrDuplicatedKey,
// the get-or-create paths rely on it.
func openDB(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{TranslateError: true}

	switch cfg.DB.GormEngine {
	case "postgres":
		return gorm.Open(gormpostgres.Open(dsn.Create(cfg)), gormCfg)
	case "sqlite":
		return gorm.Open(sqlite.Open(dsn.Create(cfg)), gormCfg)
	default:
		return gorm.Open(gormmysql.Open(dsn.Create(cfg)), gormCfg)
	}
}
