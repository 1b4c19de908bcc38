// Package populate implements the identity population engine.
//
// Population reconciles the attribute set asserted by an external provider
// into the local account, profile and access-group state. Every external
// login runs through it, and the auto-sync subset of group memberships is
// recomputed from scratch on each run.
package populate

import (
	"errors"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/GoCampusAuth/GoCampusAuth/internal/config"
	"github.com/GoCampusAuth/GoCampusAuth/internal/db/controller/account"
	"github.com/GoCampusAuth/GoCampusAuth/internal/db/controller/accessgroup"
	"github.com/GoCampusAuth/GoCampusAuth/internal/db/models"
	"github.com/GoCampusAuth/GoCampusAuth/internal/directory"
)

// Populator applies canonical attribute sets to accounts.
type Populator struct {
	db     *gorm.DB
	cfg    *config.Populate
	dir    *directory.Client
	siteID uint
}

// New creates a populator bound to the current site.
func New(db *gorm.DB, cfg *config.Populate, dir *directory.Client, siteID uint) *Populator {
	return &Populator{
		db:     db,
		cfg:    cfg,
		dir:    dir,
		siteID: siteID,
	}
}

// Populate applies the attribute set to the account's derived state: auth
// source, primary affiliation, staff flag, establishment and the auto-sync
// group memberships. The account must already exist; the profile is created
// when missing. The whole run commits atomically, a cancelled request never
// leaves groups revoked but not re-granted.
func (p *Populator) Populate(acct *models.Account, source models.AuthSource, attrs *AttributeSet) error {
	if attrs == nil {
		attrs = &AttributeSet{}
	}

	return p.db.Transaction(func(tx *gorm.DB) error {
		profile, err := account.EnsureProfile(tx, acct, account.CreateOptions{
			DefaultAffiliation: p.cfg.DefaultAffiliation,
			HashkeySecret:      p.cfg.HashkeySecret,
			SiteID:             p.siteID,
		})
		if err != nil {
			return err
		}

		profile.AuthSource = source

		// Auto-sync memberships are owned by this run. Revoke them all before
		// any grant so the final set is exactly what the attributes derive.
		if _, err = accessgroup.RevokeAutoSync(tx, profile); err != nil {
			return err
		}

		applyIdentity(acct, profile, attrs)

		var staffSet bool

		switch source {
		case models.AuthSourceCAS, models.AuthSourceLDAP:
			err = p.applyExternal(tx, acct, profile, attrs, &staffSet)
		case models.AuthSourceShibboleth:
			shibAttrs := *attrs
			shibAttrs.Affiliations = splitAffiliations(attrs.Affiliations)
			err = p.applyExternal(tx, acct, profile, &shibAttrs, &staffSet)
		case models.AuthSourceOIDC:
			err = p.applyDefaults(tx, acct, profile, attrs, &staffSet)
		case models.AuthSourceLocal:
			// local logins carry no external attributes
		}

		if err != nil {
			return err
		}

		if source == models.AuthSourceLDAP {
			if err = p.enrichFromDirectory(tx, acct, profile, &staffSet); err != nil {
				return err
			}
		}

		// The staff flag is set-only within a run unless the clearing variant
		// is explicitly enabled.
		if p.cfg.ClearStaffOnNonMatchingAffiliation && !staffSet {
			acct.Staff = false
		}

		if err = tx.Omit(clause.Associations).Save(profile).Error; err != nil {
			return err
		}

		return tx.Omit(clause.Associations).Save(acct).Error
	})
}

// applyIdentity updates the identity fields supplied by the provider.
// Absent fields leave the stored values untouched.
func applyIdentity(acct *models.Account, profile *models.Profile, attrs *AttributeSet) {
	if attrs.Email != "" {
		acct.Email = attrs.Email
	}

	if attrs.FirstName != "" {
		acct.FirstName = attrs.FirstName
	}

	if attrs.LastName != "" {
		acct.LastName = attrs.LastName
	}

	if attrs.Establishment != "" {
		profile.Establishment = attrs.Establishment
	}
}

// applyExternal is the CAS/LDAP/Shibboleth attribute path: primary
// affiliation, staff derivation and group reconciliation.
func (p *Populator) applyExternal(tx *gorm.DB, acct *models.Account, profile *models.Profile, attrs *AttributeSet, staffSet *bool) error {
	// The primary affiliation is recomputed on every run: the asserted value
	// when released, the configured default otherwise. A provider that stops
	// releasing the attribute must not leave a stale affiliation behind.
	affiliation := attrs.PrimaryAffiliation
	if affiliation == "" {
		affiliation = p.cfg.DefaultAffiliation
	}

	profile.Affiliation = affiliation

	for _, affiliation := range attrs.Affiliations {
		if slices.Contains(p.cfg.StaffAffiliations, affiliation) {
			acct.Staff = true
			*staffSet = true
		}

		// Affiliation-derived groups are only granted when auto-creation is
		// enabled; unlike group codes there is no grant-if-exists fallback.
		if p.cfg.CreateGroupFromAffiliation {
			if err := p.grantCreating(tx, profile, affiliation); err != nil {
				return err
			}
		}
	}

	for _, code := range attrs.Groups {
		if slices.Contains(p.cfg.StaffGroups, code) {
			acct.Staff = true
			*staffSet = true
		}

		if err := p.grantGroupCode(tx, profile, code); err != nil {
			return err
		}
	}

	return nil
}

// applyDefaults is the OIDC path: the configured default affiliation is
// applied flatly and the configured default group codes are granted.
func (p *Populator) applyDefaults(tx *gorm.DB, acct *models.Account, profile *models.Profile, attrs *AttributeSet, staffSet *bool) error {
	affiliation := attrs.PrimaryAffiliation
	if affiliation == "" {
		affiliation = p.cfg.DefaultAffiliation
	}

	profile.Affiliation = affiliation

	if slices.Contains(p.cfg.StaffAffiliations, affiliation) {
		acct.Staff = true
		*staffSet = true
	}

	for _, code := range attrs.Groups {
		if err := p.grantGroupCode(tx, profile, code); err != nil {
			return err
		}
	}

	return nil
}

// grantGroupCode grants the group with the given code, creating it first when
// group auto-creation is enabled. With creation disabled, unknown codes are
// silently skipped.
func (p *Populator) grantGroupCode(tx *gorm.DB, profile *models.Profile, code string) error {
	if p.cfg.CreateGroupFromGroups {
		return p.grantCreating(tx, profile, code)
	}

	group, err := accessgroup.GetByCode(tx, code)
	if err != nil {
		if errors.Is(err, accessgroup.ErrGroupNotFound) {
			log.Debug().Str("code", code).Msg("skipping unknown access group")

			return nil
		}

		return err
	}

	return accessgroup.Grant(tx, profile, group)
}

// grantCreating get-or-creates the group for the given code and grants it.
func (p *Populator) grantCreating(tx *gorm.DB, profile *models.Profile, code string) error {
	group, _, err := accessgroup.GetOrCreate(tx, code, p.siteID)
	if err != nil {
		return err
	}

	return accessgroup.Grant(tx, profile, group)
}

// enrichFromDirectory overlays the directory entry for the account, when the
// directory is configured and the entry exists. Directory failures are logged
// and swallowed; login must not depend on directory availability.
func (p *Populator) enrichFromDirectory(tx *gorm.DB, acct *models.Account, profile *models.Profile, staffSet *bool) error {
	if p.dir == nil || !p.dir.Enabled() {
		return nil
	}

	conn := p.dir.Connect()
	if conn == nil {
		return nil
	}
	defer conn.Close()

	entry := p.dir.Lookup(conn, acct.Username)
	if entry == nil {
		return nil
	}

	attrs := &AttributeSet{
		PrimaryAffiliation: entry.PrimaryAffiliation,
		Affiliations:       entry.Affiliations,
		Groups:             entry.Groups,
		Email:              entry.Email,
		FirstName:          entry.FirstName,
		LastName:           entry.LastName,
		Establishment:      entry.Establishment,
	}

	applyIdentity(acct, profile, attrs)

	return p.applyExternal(tx, acct, profile, attrs, staffSet)
}

// splitAffiliations expands semicolon-delimited affiliation values into
// individual entries. Already split lists pass through unchanged.
func splitAffiliations(values []string) []string {
	var out []string

	for _, value := range values {
		for _, part := range strings.Split(value, ";") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
	}

	return out
}
