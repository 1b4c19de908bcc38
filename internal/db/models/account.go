package models

import (
	"strings"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog/log"

	"github.com/GoCampusAuth/GoCampusAuth/internal/uniuri"
)

// unusablePasswordPrefix marks a password that can never verify.
// Accounts created by external providers carry one.
const unusablePasswordPrefix = "!"

const unusablePasswordLen = 40

// Account represents a user account in the system.
// The username is the natural key across all authentication providers;
// external providers get-or-create the account on first login.
type Account struct {
	// ID is the unique identifier for the account.
	ID uint64 `gorm:"primaryKey"`
	// Active indicates whether the account can log in.
	Active bool
	// Username is the unique, case-normalized login name.
	Username string `gorm:"unique;size:150;not null"`
	// Email is the account's email address.
	Email string `gorm:"size:255"`
	// Password is the Argon2id hashed password, or an unusable marker for
	// externally authenticated accounts.
	Password string `gorm:"size:255"`
	// FirstName is the account's given name.
	FirstName string `gorm:"size:150"`
	// LastName is the account's family name.
	LastName string `gorm:"size:150"`
	// Staff marks accounts with access to the administrative surface.
	// It is derived from affiliations and groups on every external login.
	Staff bool
	// Superuser marks accounts that bypass permission checks entirely.
	Superuser bool
	// CreatedAt is the timestamp when the account was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the account was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Account model.
func (Account) TableName() string {
	return "accounts"
}

// HashPassword hashes a plaintext password using the Argon2id algorithm.
func HashPassword(password string) string {
	hashedPassword, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		log.Fatal().Msgf("failed to hash password: %v", err)
	}

	return hashedPassword
}

// UnusablePassword returns a password value that never verifies.
// Used for accounts whose credentials live with an external provider.
func UnusablePassword() string {
	return unusablePasswordPrefix + uniuri.NewLen(unusablePasswordLen)
}

// HasUsablePassword reports whether the account carries a locally
// verifiable password.
func (a *Account) HasUsablePassword() bool {
	return a.Password != "" && !strings.HasPrefix(a.Password, unusablePasswordPrefix)
}

// VerifyPassword verifies a plaintext password against the account's stored
// hashed password. Accounts with an unusable password always fail.
func (a *Account) VerifyPassword(password string) bool {
	if !a.HasUsablePassword() {
		return false
	}

	match, err := argon2id.ComparePasswordAndHash(password, a.Password)
	if err != nil {
		log.Error().Msgf("failed to verify password: %v", err)
		return false
	}

	return match
}
