package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"gorm.io/gorm"

	"github.com/GoCampusAuth/GoCampusAuth/internal/config"
	"github.com/GoCampusAuth/GoCampusAuth/internal/db/controller/account"
	"github.com/GoCampusAuth/GoCampusAuth/internal/db/models"
	"github.com/GoCampusAuth/GoCampusAuth/internal/populate"
)

// OIDCProvider handles OpenID Connect authentication via the authorization
// code flow: code exchange followed by a userinfo fetch.
type OIDCProvider struct {
	cfg        *config.OIDCAuth
	db         *gorm.DB
	populator  *populate.Populator
	opts       account.CreateOptions
	provider   *oidc.Provider
	oauth2     oauth2.Config
	httpClient *http.Client
}

// NewOIDCProvider creates a new OIDC provider. Endpoints are discovered from
// ProviderURL when set; otherwise the explicit endpoint configuration is
// required and its absence is a fatal configuration error.
func NewOIDCProvider(ctx context.Context, cfg *config.OIDCAuth, db *gorm.DB, populator *populate.Populator, opts account.CreateOptions) (*OIDCProvider, error) {
	if !cfg.Enabled {
		return nil, ErrOIDCDisabled
	}

	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	// Both outbound calls of the login path go through this client; the
	// authentication path must not hang on a slow identity provider.
	client := &http.Client{Timeout: timeout}
	ctx = oidc.ClientContext(ctx, client)

	var (
		provider *oidc.Provider
		endpoint oauth2.Endpoint
		err      error
	)

	switch {
	case cfg.ProviderURL != "":
		provider, err = oidc.NewProvider(ctx, cfg.ProviderURL)
		if err != nil {
			return nil, fmt.Errorf("oidc discovery failed: %w", err)
		}

		endpoint = provider.Endpoint()
	case cfg.AuthEndpoint != "" && cfg.TokenEndpoint != "" && cfg.UserInfoEndpoint != "":
		provider = (&oidc.ProviderConfig{
			AuthURL:     cfg.AuthEndpoint,
			TokenURL:    cfg.TokenEndpoint,
			UserInfoURL: cfg.UserInfoEndpoint,
		}).NewProvider(ctx)
		endpoint = oauth2.Endpoint{
			AuthURL:  cfg.AuthEndpoint,
			TokenURL: cfg.TokenEndpoint,
		}
	default:
		return nil, ErrOIDCNotConfigured
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{oidc.ScopeOpenID, "profile", "email"}
	}

	return &OIDCProvider{
		cfg:       cfg,
		db:        db,
		populator: populator,
		opts:      opts,
		provider:  provider,
		oauth2: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     endpoint,
			Scopes:       scopes,
		},
		httpClient: client,
	}, nil
}

// AuthCodeURL returns the authorization URL for the given state and redirect URI.
func (p *OIDCProvider) AuthCodeURL(state, redirectURI string) string {
	conf := p.oauth2
	conf.RedirectURL = redirectURI

	return conf.AuthCodeURL(state)
}

// Authenticate exchanges the authorization code, fetches the userinfo record
// and logs the resolved user in.
func (p *OIDCProvider) Authenticate(ctx context.Context, code, redirectURI string) (*models.Account, *models.Profile, error) {
	ctx = oidc.ClientContext(ctx, p.httpClient)

	conf := p.oauth2
	conf.RedirectURL = redirectURI

	token, err := conf.Exchange(ctx, code)
	if err != nil {
		log.Debug().Err(err).Msg("oidc code exchange failed")

		return nil, nil, ErrTokenExchangeFailed
	}

	userInfo, err := p.provider.UserInfo(ctx, oauth2.StaticTokenSource(token))
	if err != nil {
		log.Debug().Err(err).Msg("oidc userinfo fetch failed")

		return nil, nil, ErrUserInfoFetchFailed
	}

	var claims map[string]any
	if err = userInfo.Claims(&claims); err != nil {
		return nil, nil, ErrUserInfoFetchFailed
	}

	username := stringClaim(claims, p.cfg.UsernameClaim)
	if username == "" {
		return nil, nil, ErrMissingUsernameClaim
	}

	username = strings.ToLower(username)

	acct, _, _, err := account.GetOrCreateWithProfile(p.db, username, p.opts)
	if err != nil {
		return nil, nil, err
	}

	if !acct.Active {
		return nil, nil, ErrAccountDisabled
	}

	attrs := &populate.AttributeSet{
		PrimaryAffiliation: p.cfg.DefaultAffiliation,
		Groups:             p.cfg.DefaultAccessGroupCodes,
		Email:              userInfo.Email,
		FirstName:          stringClaim(claims, p.cfg.GivenNameClaim),
		LastName:           stringClaim(claims, p.cfg.FamilyNameClaim),
	}

	if err = p.populator.Populate(acct, models.AuthSourceOIDC, attrs); err != nil {
		return nil, nil, err
	}

	profile, err := account.EnsureProfile(p.db, acct, p.opts)
	if err != nil {
		return nil, nil, err
	}

	return acct, profile, nil
}

// stringClaim reads a string claim by name, "" when absent or not a string.
func stringClaim(claims map[string]any, name string) string {
	if name == "" {
		return ""
	}

	value, _ := claims[name].(string)

	return value
}
