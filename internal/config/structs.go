package config

import (
	"github.com/GoCampusAuth/GoCampusAuth/internal/logger"
)

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Webserver Webserver
	Site      Site
	Auth      Auth
	Populate  Populate
	Directory Directory
	Token     Token
}

// Webserver implement webserver settings.
type Webserver struct {
	CleanPath      bool   // use clean path middleware to allow multi slash requests
	DisableRecover bool   // disable recover middleware
	Domain         string // domain name for the webserver
	Port           int    // listening port for the webserver
	ShutDownTime   int    // wait time for shutdown
	URL            string // base url for the webserver
}

// Site identifies the current site; profiles and access groups created by
// the population engine are attached to it.
type Site struct {
	Domain string
	Name   string
}

// Auth groups the per-provider authentication settings.
type Auth struct {
	Local      LocalAuth
	CAS        CASAuth
	Shibboleth ShibbolethAuth
	OIDC       OIDCAuth
}

// LocalAuth holds local database authentication settings.
type LocalAuth struct {
	Enabled bool
}

// CASAuth holds CAS ticket validation settings.
type CASAuth struct {
	Enabled bool
	// ServerURL is the base URL of the CAS server (e.g. "https://cas.univ.fr/cas").
	ServerURL string
	// UsernameCase folds the resolved username: "lower", "upper" or "" to keep as-is.
	UsernameCase string
	// PopulateFrom selects the population strategy after ticket validation:
	// "cas" uses the attributes released with the ticket, "ldap" enriches from
	// the directory, "" skips population.
	PopulateFrom string
	// Timeout is the ticket validation request timeout in seconds.
	Timeout int
}

// HeaderAttribute maps one trusted proxy header to a canonical attribute field.
type HeaderAttribute struct {
	// Header is the HTTP header name injected by the authenticating proxy.
	Header string
	// Field is the canonical field the value maps to: "first_name", "last_name",
	// "email", "affiliation" or "affiliations".
	Field string
	// Required rejects the request when the header is absent.
	Required bool
}

// ShibbolethAuth holds Shibboleth (trusted reverse proxy) settings.
type ShibbolethAuth struct {
	Enabled bool
	// IdentityHeader carries the authenticated username.
	IdentityHeader string
	// SecureHeader and SecureValue, when configured, assert the request passed
	// through the service provider proxy.
	SecureHeader string
	SecureValue  string
	// AttributeMap maps further headers to canonical attribute fields.
	AttributeMap []HeaderAttribute
}

// OIDCAuth holds OpenID Connect settings.
type OIDCAuth struct {
	Enabled bool
	// ProviderURL enables endpoint discovery when set. Otherwise the explicit
	// endpoints below are required.
	ProviderURL      string
	AuthEndpoint     string
	TokenEndpoint    string
	UserInfoEndpoint string
	ClientID         string
	ClientSecret     string
	Scopes           []string
	// Claim name overrides.
	UsernameClaim   string
	GivenNameClaim  string
	FamilyNameClaim string
	// DefaultAffiliation is applied flatly to every OIDC login.
	DefaultAffiliation string
	// DefaultAccessGroupCodes are granted on every OIDC login.
	DefaultAccessGroupCodes []string
	// Timeout is the outbound request timeout in seconds.
	Timeout int
}

// Populate holds the population engine settings.
type Populate struct {
	// DefaultAffiliation is used when a provider supplies none.
	DefaultAffiliation string
	// StaffAffiliations mark an account as staff when matched.
	StaffAffiliations []string
	// StaffGroups mark an account as staff when matched.
	StaffGroups []string
	// CreateGroupFromAffiliation auto-creates access groups from affiliations.
	CreateGroupFromAffiliation bool
	// CreateGroupFromGroups auto-creates access groups from group codes.
	CreateGroupFromGroups bool
	// ClearStaffOnNonMatchingAffiliation clears the staff flag when none of the
	// processed affiliations is in StaffAffiliations. Off by default: the staff
	// flag is only ever set within a population run.
	ClearStaffOnNonMatchingAffiliation bool
	// HashkeySecret seeds the profile secondary-id hash.
	HashkeySecret string
}

// DirectoryAttributes maps canonical fields to directory attribute names.
type DirectoryAttributes struct {
	Username           string
	Email              string
	FirstName          string
	LastName           string
	PrimaryAffiliation string
	Affiliations       string
	Groups             string
	Establishment      string
}

// Directory holds the LDAP directory enrichment settings.
// An empty URL disables the directory entirely; this is the designed default
// for installations without one.
type Directory struct {
	URL          string
	BindDN       string
	BindPassword string
	BaseDN       string
	// Filter is the search filter template; "{username}" is replaced with the
	// escaped username.
	Filter string
	// Timeout is the connect and search timeout in seconds.
	Timeout    int
	Attributes DirectoryAttributes
}

// Token holds the token issuance settings.
type Token struct {
	// SigningKey is the HMAC key for token signatures.
	SigningKey string
	Issuer     string
	// AccessTTL and RefreshTTL are lifetimes in seconds.
	AccessTTL  int
	RefreshTTL int
}
