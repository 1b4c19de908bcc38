package auth

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	cas "gopkg.in/cas.v2"
	"gorm.io/gorm"

	"github.com/GoCampusAuth/GoCampusAuth/internal/config"
	"github.com/GoCampusAuth/GoCampusAuth/internal/db/controller/account"
	"github.com/GoCampusAuth/GoCampusAuth/internal/db/models"
	"github.com/GoCampusAuth/GoCampusAuth/internal/populate"
)

// populate strategies after ticket validation.
const (
	// PopulateFromCAS uses the attributes released with the ticket.
	PopulateFromCAS = "cas"
	// PopulateFromLDAP enriches from the directory instead.
	PopulateFromLDAP = "ldap"
)

// CASProvider validates CAS service tickets and logs the resolved user in.
type CASProvider struct {
	cfg       *config.CASAuth
	attrs     *config.DirectoryAttributes
	db        *gorm.DB
	populator *populate.Populator
	opts      account.CreateOptions
	validator *cas.ServiceTicketValidator
}

// NewCASProvider creates a new CAS authentication provider.
// The directory attribute map doubles as the name map for attributes released
// with the ticket, CAS servers typically release directory attributes.
func NewCASProvider(cfg *config.CASAuth, attrs *config.DirectoryAttributes, db *gorm.DB, populator *populate.Populator, opts account.CreateOptions) (*CASProvider, error) {
	if !cfg.Enabled {
		return nil, ErrCASDisabled
	}

	serverURL, err := url.Parse(cfg.ServerURL)
	if err != nil {
		return nil, fmt.Errorf("invalid cas server url: %w", err)
	}

	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	// Ticket validation must not hang on a slow CAS server.
	client := &http.Client{Timeout: timeout}

	return &CASProvider{
		cfg:       cfg,
		attrs:     attrs,
		db:        db,
		populator: populator,
		opts:      opts,
		validator: cas.NewServiceTicketValidator(client, serverURL),
	}, nil
}

// Authenticate exchanges the service ticket against the CAS server, then
// get-or-creates the account and populates it per the configured strategy.
func (p *CASProvider) Authenticate(ticket, serviceURL string) (*models.Account, *models.Profile, error) {
	service, err := url.Parse(serviceURL)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid service url: %w", err)
	}

	response, err := p.validator.ValidateTicket(service, ticket)
	if err != nil {
		log.Debug().Err(err).Msg("cas ticket validation failed")

		return nil, nil, ErrInvalidTicket
	}

	username := p.foldUsername(response.User)

	acct, profile, _, err := account.GetOrCreateWithProfile(p.db, username, p.opts)
	if err != nil {
		return nil, nil, err
	}

	if !acct.Active {
		return nil, nil, ErrAccountDisabled
	}

	switch p.cfg.PopulateFrom {
	case PopulateFromCAS:
		err = p.populator.Populate(acct, models.AuthSourceCAS, p.attributeSet(response.Attributes))
	case PopulateFromLDAP:
		err = p.populator.Populate(acct, models.AuthSourceLDAP, nil)
	default:
		// population disabled, the profile keeps its current state
		return acct, profile, nil
	}

	if err != nil {
		return nil, nil, err
	}

	profile, err = account.EnsureProfile(p.db, acct, p.opts)
	if err != nil {
		return nil, nil, err
	}

	return acct, profile, nil
}

// foldUsername applies the configured username case policy.
func (p *CASProvider) foldUsername(username string) string {
	switch p.cfg.UsernameCase {
	case "upper":
		return strings.ToUpper(username)
	case "lower":
		return strings.ToLower(username)
	default:
		return username
	}
}

// attributeSet maps the attributes released with the ticket to the canonical set.
func (p *CASProvider) attributeSet(released cas.UserAttributes) *populate.AttributeSet {
	return &populate.AttributeSet{
		PrimaryAffiliation: released.Get(p.attrs.PrimaryAffiliation),
		Affiliations:       released[p.attrs.Affiliations],
		Groups:             released[p.attrs.Groups],
		Email:              released.Get(p.attrs.Email),
		FirstName:          released.Get(p.attrs.FirstName),
		LastName:           released.Get(p.attrs.LastName),
		Establishment:      released.Get(p.attrs.Establishment),
	}
}
