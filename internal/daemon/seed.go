package daemon

import (
	"errors"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoCampusAuth/GoCampusAuth/internal/config"
	"github.com/GoCampusAuth/GoCampusAuth/internal/db/models"
	"github.com/GoCampusAuth/GoCampusAuth/internal/uniuri"
)

const generatedPasswordLen = 20

// seed ensures the current site row exists and creates the initial admin
// account on an empty database.
func seed(cfg *config.Config, db *gorm.DB) *models.Site {
	var site models.Site

	err := db.Where("domain = ?", cfg.Site.Domain).First(&site).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		site = models.Site{Domain: cfg.Site.Domain, Name: cfg.Site.Name}
		if err = db.Create(&site).Error; err != nil {
			log.Fatal().Err(err).Msg("failed to create site")
		}

		log.Info().Str("domain", site.Domain).Msg("created site")
	} else if err != nil {
		log.Fatal().Err(err).Msg("failed to load site")
	}

	var count int64

	db.Model(&models.Account{}).Count(&count)
	if count == 0 {
		// The generated password is printed once; change it after first login.
		password := uniuri.NewLen(generatedPasswordLen)

		admin := models.Account{
			Active:    true,
			Username:  "admin",
			Password:  models.HashPassword(password),
			Staff:     true,
			Superuser: true,
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&admin).Error; err != nil {
				return err
			}

			profile := models.Profile{
				AccountID:   admin.ID,
				AuthSource:  models.AuthSourceLocal,
				Affiliation: cfg.Populate.DefaultAffiliation,
				Sites:       []models.Site{site},
			}
			profile.EnsureHashkey(cfg.Populate.HashkeySecret, admin.Username)

			return tx.Create(&profile).Error
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create admin account")
		}

		log.Info().Str("username", admin.Username).Str("password", password).
			Msg("created initial admin account")
	}

	return &site
}
