package models

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// AuthSource represents the authentication source that last populated a profile.
type AuthSource string

const (
	// AuthSourceLocal indicates the account authenticates with a local database password.
	AuthSourceLocal AuthSource = "local"
	// AuthSourceCAS indicates the account authenticates via CAS ticket validation.
	AuthSourceCAS AuthSource = "cas"
	// AuthSourceLDAP indicates the account is enriched from an LDAP directory.
	AuthSourceLDAP AuthSource = "ldap"
	// AuthSourceShibboleth indicates the account authenticates via Shibboleth proxy headers.
	AuthSourceShibboleth AuthSource = "shibboleth"
	// AuthSourceOIDC indicates the account authenticates via OpenID Connect.
	AuthSourceOIDC AuthSource = "oidc"
)

// Profile extends an Account with the derived identity state owned by the
// population engine: auth source, affiliation, establishment and the access
// group memberships synchronized on every external login.
// Exactly one profile exists per account once created.
type Profile struct {
	// ID is the unique identifier for the profile.
	ID uint64 `gorm:"primaryKey"`
	// AccountID links the profile to its account (one-to-one).
	AccountID uint64 `gorm:"uniqueIndex;not null"`
	// Account is the associated account.
	// Deleting the account removes the profile (CASCADE).
	Account Account `gorm:"foreignKey:AccountID;references:ID;constraint:OnDelete:CASCADE"`
	// AuthSource records which provider last populated this profile.
	AuthSource AuthSource `gorm:"type:varchar(20);not null;default:'local'"`
	// Affiliation is the primary affiliation, drawn from the configured vocabulary.
	Affiliation string `gorm:"size:50;not null;default:'member'"`
	// Establishment is the optional establishment code from the directory.
	Establishment string `gorm:"size:50"`
	// Hashkey is a stable secondary identifier derived from the username and a
	// server secret. Computed once when absent.
	Hashkey string `gorm:"size:64;uniqueIndex"`
	// AccessGroups are the group memberships held by this profile.
	AccessGroups []AccessGroup `gorm:"many2many:profile_access_groups"`
	// Sites the profile is visible on. Defaults to the current site on first save.
	Sites []Site `gorm:"many2many:profile_sites"`
	// CreatedAt is the timestamp when the profile was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the profile was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Profile model.
func (Profile) TableName() string {
	return "profiles"
}

// EnsureHashkey computes the secondary-id hash from the given username and
// secret if it has not been set yet. The hash is stable across logins.
func (p *Profile) EnsureHashkey(secret, username string) {
	if p.Hashkey != "" {
		return
	}

	sum := sha256.Sum256([]byte(secret + username))
	p.Hashkey = hex.EncodeToString(sum[:])
}
