package auth

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/GoCampusAuth/GoCampusAuth/internal/config"
	"github.com/GoCampusAuth/GoCampusAuth/internal/db/controller/account"
	"github.com/GoCampusAuth/GoCampusAuth/internal/db/models"
)

// LocalProvider handles local database authentication.
type LocalProvider struct {
	db   *gorm.DB
	opts account.CreateOptions
}

// NewLocalProvider creates a new local authentication provider.
func NewLocalProvider(cfg *config.LocalAuth, db *gorm.DB, opts account.CreateOptions) (*LocalProvider, error) {
	if !cfg.Enabled {
		return nil, ErrLocalDisabled
	}

	return &LocalProvider{
		db:   db,
		opts: opts,
	}, nil
}

// Authenticate verifies a username and password against the local database.
func (p *LocalProvider) Authenticate(username, password string) (*models.Account, *models.Profile, error) {
	acct, err := account.GetByUsername(p.db, username)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			return nil, nil, ErrUserNotFound
		}

		return nil, nil, fmt.Errorf("failed to query account: %w", err)
	}

	if !acct.Active {
		return nil, nil, ErrAccountDisabled
	}

	if !acct.VerifyPassword(password) {
		return nil, nil, ErrInvalidPassword
	}

	profile, err := account.EnsureProfile(p.db, acct, p.opts)
	if err != nil {
		return nil, nil, err
	}

	return acct, profile, nil
}

// CreateAccount creates a new local account with a usable password and its
// profile in one transaction.
func (p *LocalProvider) CreateAccount(username, email, password, firstName, lastName string) (*models.Account, error) {
	_, err := account.GetByUsername(p.db, username)
	if err == nil {
		return nil, ErrUsernameExists
	}

	if !errors.Is(err, account.ErrAccountNotFound) {
		return nil, err
	}

	acct := models.Account{
		Active:    true,
		Username:  username,
		Email:     email,
		Password:  models.HashPassword(password),
		FirstName: firstName,
		LastName:  lastName,
	}

	err = p.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&acct).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrUsernameExists
			}

			return fmt.Errorf("failed to create account: %w", err)
		}

		_, err := account.EnsureProfile(tx, &acct, p.opts)

		return err
	})
	if err != nil {
		return nil, err
	}

	return &acct, nil
}

// ResetPassword replaces the account's password with a hash of the given one.
func (p *LocalProvider) ResetPassword(username, password string) error {
	acct, err := account.GetByUsername(p.db, username)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			return ErrUserNotFound
		}

		return err
	}

	return p.db.Model(acct).Update("password", models.HashPassword(password)).Error
}

// SetActive enables or disables the account.
func (p *LocalProvider) SetActive(username string, active bool) error {
	acct, err := account.GetByUsername(p.db, username)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			return ErrUserNotFound
		}

		return err
	}

	return p.db.Model(acct).Update("active", active).Error
}
