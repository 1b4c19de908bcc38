package auth

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/GoCampusAuth/GoCampusAuth/internal/config"
	"github.com/GoCampusAuth/GoCampusAuth/internal/db/controller/account"
	"github.com/GoCampusAuth/GoCampusAuth/internal/db/models"
	"github.com/GoCampusAuth/GoCampusAuth/internal/populate"
)

// canonical fields a header attribute can map to.
const (
	FieldFirstName     = "first_name"
	FieldLastName      = "last_name"
	FieldEmail         = "email"
	FieldAffiliation   = "affiliation"
	FieldAffiliations  = "affiliations"
	FieldEstablishment = "establishment"
)

// HeaderLookup returns the value of a request header, or "" when absent.
// Decoupling the provider from the HTTP framework keeps it testable with a
// plain map.
type HeaderLookup func(name string) string

// ShibbolethProvider logs in users asserted by a trusted reverse proxy
// through request headers.
type ShibbolethProvider struct {
	cfg       *config.ShibbolethAuth
	db        *gorm.DB
	populator *populate.Populator
	opts      account.CreateOptions
}

// NewShibbolethProvider creates a new Shibboleth authentication provider.
func NewShibbolethProvider(cfg *config.ShibbolethAuth, db *gorm.DB, populator *populate.Populator, opts account.CreateOptions) (*ShibbolethProvider, error) {
	if !cfg.Enabled {
		return nil, ErrShibbolethDisabled
	}

	return &ShibbolethProvider{
		cfg:       cfg,
		db:        db,
		populator: populator,
		opts:      opts,
	}, nil
}

// Authenticate resolves the identity asserted in the request headers.
// The identity and security headers are checked before any account is
// created, a request failing them leaves no trace in the database.
func (p *ShibbolethProvider) Authenticate(header HeaderLookup) (*models.Account, *models.Profile, error) {
	if p.cfg.SecureHeader != "" && header(p.cfg.SecureHeader) != p.cfg.SecureValue {
		return nil, nil, ErrUntrustedSource
	}

	username := header(p.cfg.IdentityHeader)
	if username == "" {
		return nil, nil, ErrMissingIdentityHeader
	}

	attrs, err := p.attributeSet(header)
	if err != nil {
		return nil, nil, err
	}

	acct, _, _, err := account.GetOrCreateWithProfile(p.db, username, p.opts)
	if err != nil {
		return nil, nil, err
	}

	if !acct.Active {
		return nil, nil, ErrAccountDisabled
	}

	if err = p.populator.Populate(acct, models.AuthSourceShibboleth, attrs); err != nil {
		return nil, nil, err
	}

	profile, err := account.EnsureProfile(p.db, acct, p.opts)
	if err != nil {
		return nil, nil, err
	}

	return acct, profile, nil
}

// attributeSet maps the configured headers to the canonical attribute set.
func (p *ShibbolethProvider) attributeSet(header HeaderLookup) (*populate.AttributeSet, error) {
	attrs := &populate.AttributeSet{}

	for _, mapping := range p.cfg.AttributeMap {
		value := header(mapping.Header)
		if value == "" {
			if mapping.Required {
				return nil, fmt.Errorf("%w: %s", ErrMissingRequiredAttribute, mapping.Header)
			}

			continue
		}

		switch mapping.Field {
		case FieldFirstName:
			attrs.FirstName = value
		case FieldLastName:
			attrs.LastName = value
		case FieldEmail:
			attrs.Email = value
		case FieldAffiliation:
			attrs.PrimaryAffiliation = value
		case FieldAffiliations:
			// possibly semicolon-delimited, the populator splits it
			attrs.Affiliations = append(attrs.Affiliations, value)
		case FieldEstablishment:
			attrs.Establishment = value
		}
	}

	return attrs, nil
}
