// Package account provides account and profile persistence operations.
package account

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/GoCampusAuth/GoCampusAuth/internal/db/models"
)

var (
	// ErrAccountNotFound is returned when no account exists for the given username.
	ErrAccountNotFound = errors.New("account not found")
	// ErrUsernameEmpty is returned when an empty username is given.
	ErrUsernameEmpty = errors.New("username cannot be empty")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// CreateOptions carries the site-wide defaults applied when an account or
// profile is created on the fly during an external login.
type CreateOptions struct {
	// DefaultAffiliation seeds the profile affiliation of new accounts.
	DefaultAffiliation string
	// HashkeySecret is mixed into the profile secondary-id hash.
	HashkeySecret string
	// SiteID is the current site, attached to new profiles.
	SiteID uint
}

// GetByUsername retrieves an account by its unique username.
func GetByUsername(db *gorm.DB, username string) (*models.Account, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if username == "" {
		return nil, ErrUsernameEmpty
	}

	var acct models.Account

	result := db.Where("username = ?", username).First(&acct)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}

		return nil, result.Error
	}

	return &acct, nil
}

// GetOrCreateWithProfile retrieves the account with the given username along
// with its profile, creating either when missing. New accounts are active,
// carry an unusable password (external providers own the credential) and get
// a profile seeded with the default affiliation, a stable hashkey and the
// current site. The returned bool reports whether the account was created.
//
// Races on a new username are arbitrated by the unique constraint: the losing
// insert retries as a lookup.
func GetOrCreateWithProfile(db *gorm.DB, username string, opts CreateOptions) (*models.Account, *models.Profile, bool, error) {
	acct, err := GetByUsername(db, username)
	if err == nil {
		profile, perr := EnsureProfile(db, acct, opts)
		if perr != nil {
			return nil, nil, false, perr
		}

		return acct, profile, false, nil
	}

	if !errors.Is(err, ErrAccountNotFound) {
		return nil, nil, false, err
	}

	created := models.Account{
		Active:   true,
		Username: username,
		Password: models.UnusablePassword(),
	}

	if err = db.Create(&created).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// lost the race, the account exists now
			acct, err = GetByUsername(db, username)
			if err != nil {
				return nil, nil, false, err
			}

			profile, perr := EnsureProfile(db, acct, opts)
			if perr != nil {
				return nil, nil, false, perr
			}

			return acct, profile, false, nil
		}

		return nil, nil, false, fmt.Errorf("failed to create account %s: %w", username, err)
	}

	profile, err := EnsureProfile(db, &created, opts)
	if err != nil {
		return nil, nil, false, err
	}

	return &created, profile, true, nil
}

// EnsureProfile retrieves the profile of the given account, creating it when
// missing. Accounts predating the profile model or created through raw admin
// paths get their profile on first external login.
func EnsureProfile(db *gorm.DB, acct *models.Account, opts CreateOptions) (*models.Profile, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var profile models.Profile

	err := db.Where("account_id = ?", acct.ID).First(&profile).Error
	if err == nil {
		return &profile, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	affiliation := opts.DefaultAffiliation
	if affiliation == "" {
		affiliation = "member"
	}

	profile = models.Profile{
		AccountID:   acct.ID,
		AuthSource:  models.AuthSourceLocal,
		Affiliation: affiliation,
	}
	profile.EnsureHashkey(opts.HashkeySecret, acct.Username)

	if opts.SiteID != 0 {
		profile.Sites = []models.Site{{ID: opts.SiteID}}
	}

	if err = db.Create(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// lost the race on account_id, the profile exists now
			if lerr := db.Where("account_id = ?", acct.ID).First(&profile).Error; lerr != nil {
				return nil, lerr
			}

			return &profile, nil
		}

		return nil, fmt.Errorf("failed to create profile for %s: %w", acct.Username, err)
	}

	return &profile, nil
}
