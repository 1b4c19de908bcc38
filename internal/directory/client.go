// Package directory looks up identity attributes in an LDAP directory.
//
// The directory is an enrichment source, not an authenticator: every lookup
// failure degrades to "no directory data" so that logins keep working when
// the directory is down or not configured.
package directory

import (
	"strings"
	"time"

	ldap "github.com/go-ldap/ldap/v3"
	"github.com/rs/zerolog/log"

	"github.com/GoCampusAuth/GoCampusAuth/internal/config"
)

// usernamePlaceholder is replaced in the search filter template with the
// escaped username.
const usernamePlaceholder = "{username}"

// Entry holds the canonical identity attributes read from a directory entry.
type Entry struct {
	// Username as stored in the directory.
	Username string
	// Email address.
	Email string
	// FirstName is the given name.
	FirstName string
	// LastName is the family name. Multi-valued surname attributes keep the
	// first value only.
	LastName string
	// PrimaryAffiliation is the single primary affiliation value.
	PrimaryAffiliation string
	// Affiliations is the full multi-valued affiliation list.
	Affiliations []string
	// Groups is the full multi-valued group membership list.
	Groups []string
	// Establishment is the optional establishment code.
	Establishment string
}

// Client performs directory lookups against the configured LDAP server.
type Client struct {
	cfg *config.Directory
}

// New creates a directory client from the given settings.
func New(cfg *config.Directory) *Client {
	return &Client{cfg: cfg}
}

// Enabled reports whether a directory URL is configured.
func (c *Client) Enabled() bool {
	return c.cfg != nil && c.cfg.URL != ""
}

// Connect opens and binds a connection to the directory. It returns nil when
// the directory is not configured or unreachable; callers treat a nil
// connection as "no directory available" and continue without enrichment.
func (c *Client) Connect() *ldap.Conn {
	if !c.Enabled() {
		return nil
	}

	conn, err := ldap.DialURL(c.cfg.URL)
	if err != nil {
		log.Warn().Err(err).Str("url", c.cfg.URL).Msg("directory unreachable, continuing without enrichment")

		return nil
	}

	if c.cfg.Timeout > 0 {
		conn.SetTimeout(time.Duration(c.cfg.Timeout) * time.Second)
	}

	if c.cfg.BindDN != "" {
		if err = conn.Bind(c.cfg.BindDN, c.cfg.BindPassword); err != nil {
			log.Warn().Err(err).Str("bind_dn", c.cfg.BindDN).Msg("directory bind failed, continuing without enrichment")
			conn.Close()

			return nil
		}
	}

	return conn
}

// Lookup searches the directory for the given username on an open connection
// and returns the mapped entry. A missing entry or a failed search returns
// nil; population continues with the attributes it already has.
func (c *Client) Lookup(conn *ldap.Conn, username string) *Entry {
	if conn == nil {
		return nil
	}

	filter := strings.ReplaceAll(c.cfg.Filter, usernamePlaceholder, ldap.EscapeFilter(username))

	request := ldap.NewSearchRequest(
		c.cfg.BaseDN,
		ldap.ScopeWholeSubtree,
		ldap.NeverDerefAliases,
		1, // size limit, the filter targets a single entry
		c.cfg.Timeout,
		false,
		filter,
		c.attributeList(),
		nil,
	)

	result, err := conn.Search(request)
	if err != nil {
		log.Warn().Err(err).Str("username", username).Msg("directory search failed, continuing without enrichment")

		return nil
	}

	if len(result.Entries) == 0 {
		log.Debug().Str("username", username).Msg("no directory entry found")

		return nil
	}

	return c.mapEntry(result.Entries[0])
}

// attributeList returns the configured attribute names, skipping unset ones.
func (c *Client) attributeList() []string {
	var attrs []string

	for _, name := range []string{
		c.cfg.Attributes.Username,
		c.cfg.Attributes.Email,
		c.cfg.Attributes.FirstName,
		c.cfg.Attributes.LastName,
		c.cfg.Attributes.PrimaryAffiliation,
		c.cfg.Attributes.Affiliations,
		c.cfg.Attributes.Groups,
		c.cfg.Attributes.Establishment,
	} {
		if name != "" {
			attrs = append(attrs, name)
		}
	}

	return attrs
}

// mapEntry coerces the raw LDAP entry into the canonical attribute set.
func (c *Client) mapEntry(raw *ldap.Entry) *Entry {
	entry := &Entry{
		Username:           raw.GetAttributeValue(c.cfg.Attributes.Username),
		Email:              raw.GetAttributeValue(c.cfg.Attributes.Email),
		FirstName:          raw.GetAttributeValue(c.cfg.Attributes.FirstName),
		PrimaryAffiliation: raw.GetAttributeValue(c.cfg.Attributes.PrimaryAffiliation),
		Affiliations:       raw.GetAttributeValues(c.cfg.Attributes.Affiliations),
		Groups:             raw.GetAttributeValues(c.cfg.Attributes.Groups),
		Establishment:      raw.GetAttributeValue(c.cfg.Attributes.Establishment),
	}

	// GetAttributeValue already returns the first value for multi-valued
	// surnames.
	entry.LastName = raw.GetAttributeValue(c.cfg.Attributes.LastName)

	return entry
}
