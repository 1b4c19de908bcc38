// Package token issues and verifies the signed token pairs returned to
// authenticated clients.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"

	"github.com/GoCampusAuth/GoCampusAuth/internal/config"
	"github.com/GoCampusAuth/GoCampusAuth/internal/db/models"
	"github.com/GoCampusAuth/GoCampusAuth/internal/uniuri"
)

// token types carried in the token_type claim.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

const jtiLen = 24

var (
	// ErrEmptySigningKey is returned when constructing an issuer without a key.
	ErrEmptySigningKey = errors.New("token signing key cannot be empty")
	// ErrInvalidToken is returned for tokens that fail parsing, signature or
	// expiry checks.
	ErrInvalidToken = errors.New("invalid token")
	// ErrWrongTokenType is returned when a token of another type is presented.
	ErrWrongTokenType = errors.New("wrong token type")
)

// Claims are the application claims embedded in every issued token.
type Claims struct {
	Username    string `json:"username"`
	Staff       bool   `json:"is_staff"`
	Affiliation string `json:"affiliation"`
	TokenType   string `json:"token_type"`
}

// User is the profile summary returned alongside the token pair.
type User struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Affiliation string `json:"affiliation"`
	Staff       bool   `json:"staff"`
}

// Response is the login response body: the token pair and the user summary.
type Response struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
	User    User   `json:"user"`
}

// Issuer signs and verifies HS256 tokens.
type Issuer struct {
	key        []byte
	issuer     string
	signer     jose.Signer
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// New creates an issuer from the token settings. The signing key is required.
func New(cfg *config.Token) (*Issuer, error) {
	if cfg.SigningKey == "" {
		return nil, ErrEmptySigningKey
	}

	key := []byte(cfg.SigningKey)

	signer, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.HS256, Key: key},
		(&jose.SignerOptions{}).WithType("JWT"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create signer: %w", err)
	}

	return &Issuer{
		key:        key,
		issuer:     cfg.Issuer,
		signer:     signer,
		accessTTL:  time.Duration(cfg.AccessTTL) * time.Second,
		refreshTTL: time.Duration(cfg.RefreshTTL) * time.Second,
	}, nil
}

// Issue builds the login response for the given account and profile: a fresh
// access/refresh token pair plus the user summary.
func (i *Issuer) Issue(acct *models.Account, profile *models.Profile) (*Response, error) {
	access, err := i.sign(acct, profile, TypeAccess, i.accessTTL)
	if err != nil {
		return nil, err
	}

	refresh, err := i.sign(acct, profile, TypeRefresh, i.refreshTTL)
	if err != nil {
		return nil, err
	}

	return &Response{
		Access:  access,
		Refresh: refresh,
		User: User{
			Username:    acct.Username,
			Email:       acct.Email,
			FirstName:   acct.FirstName,
			LastName:    acct.LastName,
			Affiliation: profile.Affiliation,
			Staff:       acct.Staff,
		},
	}, nil
}

func (i *Issuer) sign(acct *models.Account, profile *models.Profile, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()

	standard := jwt.Claims{
		Issuer:   i.issuer,
		Subject:  acct.Username,
		IssuedAt: jwt.NewNumericDate(now),
		Expiry:   jwt.NewNumericDate(now.Add(ttl)),
		ID:       uniuri.NewLen(jtiLen),
	}

	custom := Claims{
		Username:    acct.Username,
		Staff:       acct.Staff,
		Affiliation: profile.Affiliation,
		TokenType:   tokenType,
	}

	raw, err := jwt.Signed(i.signer).Claims(standard).Claims(custom).Serialize()
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", tokenType, err)
	}

	return raw, nil
}

// Verify checks signature, expiry and token type of a raw token and returns
// its application claims.
func (i *Issuer) Verify(raw, wantType string) (*Claims, error) {
	parsed, err := jwt.ParseSigned(raw, []jose.SignatureAlgorithm{jose.HS256})
	if err != nil {
		return nil, ErrInvalidToken
	}

	var (
		standard jwt.Claims
		custom   Claims
	)

	if err = parsed.Claims(i.key, &standard, &custom); err != nil {
		return nil, ErrInvalidToken
	}

	if err = standard.Validate(jwt.Expected{Time: time.Now()}); err != nil {
		return nil, ErrInvalidToken
	}

	if custom.TokenType != wantType {
		return nil, ErrWrongTokenType
	}

	return &custom, nil
}
