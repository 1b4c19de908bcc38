// Package config handles input from etc/*.toml files
package config

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/BurntSushi/toml"
)

// DefaultAffiliation is the fallback primary affiliation.
const DefaultAffiliation = "member"

// ReadConfig from config file.
func ReadConfig(path string) (Config, error) {
	var (
		c             Config
		JSONConfigEnv string
		err           error
	)

	// Read main configuration
	if path == "" {
		path = "./etc/"
	}

	if _, err = toml.DecodeFile(path+"main.toml", &c); err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	// override it from env
	JSONConfigEnv = os.Getenv("GO_CAMPUS_AUTH_CONFIG_JSON")

	if JSONConfigEnv != "" {
		c, err = decodeAndMergeConfig(c, JSONConfigEnv)
		if err != nil {
			return c, err
		}
	}

	applyDefaults(&c)

	return c, validate(c)
}

func decodeAndMergeConfig(c Config, configAsJSON string) (Config, error) {
	err := json.Unmarshal([]byte(configAsJSON), &c)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	return c, nil
}

// DumpConfig config as TOML String.
func DumpConfig(c Config) (string, error) {
	var buffer bytes.Buffer
	t := toml.NewEncoder(&buffer)

	if err := t.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// DumpConfigJSON config as JSON String.
func DumpConfigJSON(c Config) (string, error) {
	var buffer bytes.Buffer
	j := json.NewEncoder(&buffer)
	j.SetIndent("", "  ")

	if err := j.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// applyDefaults fills settings the toml file may omit.
func applyDefaults(c *Config) { //nolint:funlen
	if c.Webserver.ShutDownTime == 0 {
		c.Webserver.ShutDownTime = 5 // set default of 5 seconds
	}

	if c.Populate.DefaultAffiliation == "" {
		c.Populate.DefaultAffiliation = DefaultAffiliation
	}

	if c.Populate.StaffAffiliations == nil {
		c.Populate.StaffAffiliations = []string{"faculty", "employee", "staff"}
	}

	if c.Populate.StaffGroups == nil {
		c.Populate.StaffGroups = c.Populate.StaffAffiliations
	}

	if c.Auth.CAS.UsernameCase == "" {
		c.Auth.CAS.UsernameCase = "lower"
	}

	if c.Auth.CAS.Timeout == 0 {
		c.Auth.CAS.Timeout = 10
	}

	if c.Auth.Shibboleth.IdentityHeader == "" {
		c.Auth.Shibboleth.IdentityHeader = "Remote-User"
	}

	if c.Auth.Shibboleth.AttributeMap == nil {
		c.Auth.Shibboleth.AttributeMap = []HeaderAttribute{
			{Header: "Shibboleth-Givenname", Field: "first_name", Required: true},
			{Header: "Shibboleth-Sn", Field: "last_name"},
			{Header: "Shibboleth-Mail", Field: "email"},
			{Header: "Shibboleth-Primary-Affiliation", Field: "affiliation"},
			{Header: "Shibboleth-Unscoped-Affiliation", Field: "affiliations"},
		}
	}

	if c.Auth.OIDC.UsernameClaim == "" {
		c.Auth.OIDC.UsernameClaim = "preferred_username"
	}

	if c.Auth.OIDC.GivenNameClaim == "" {
		c.Auth.OIDC.GivenNameClaim = "given_name"
	}

	if c.Auth.OIDC.FamilyNameClaim == "" {
		c.Auth.OIDC.FamilyNameClaim = "family_name"
	}

	if c.Auth.OIDC.DefaultAffiliation == "" {
		c.Auth.OIDC.DefaultAffiliation = c.Populate.DefaultAffiliation
	}

	if c.Auth.OIDC.Timeout == 0 {
		c.Auth.OIDC.Timeout = 10
	}

	if c.Directory.Timeout == 0 {
		c.Directory.Timeout = 10
	}

	attrs := &c.Directory.Attributes
	if attrs.Username == "" {
		attrs.Username = "uid"
	}

	if attrs.Email == "" {
		attrs.Email = "mail"
	}

	if attrs.FirstName == "" {
		attrs.FirstName = "givenname"
	}

	if attrs.LastName == "" {
		attrs.LastName = "sn"
	}

	if attrs.PrimaryAffiliation == "" {
		attrs.PrimaryAffiliation = "eduPersonPrimaryAffiliation"
	}

	if attrs.Affiliations == "" {
		attrs.Affiliations = "eduPersonAffiliation"
	}

	if attrs.Groups == "" {
		attrs.Groups = "memberOf"
	}

	if attrs.Establishment == "" {
		attrs.Establishment = "establishment"
	}

	if c.Directory.Filter == "" {
		c.Directory.Filter = "(uid={username})"
	}

	if c.Token.Issuer == "" {
		c.Token.Issuer = c.Webserver.URL
	}

	if c.Token.AccessTTL == 0 {
		c.Token.AccessTTL = 300 // 5 minutes
	}

	if c.Token.RefreshTTL == 0 {
		c.Token.RefreshTTL = 86400 // 24 hours
	}
}

// validate minimal config settings for go-campus-auth.
func validate(c Config) error {
	invalidErrMessage := "invalid config"

	// validate webserver listening port
	if c.Webserver.Port == 0 {
		return errors.Wrap(ErrWebServerPortCanNotBeZero, invalidErrMessage)
	}

	if c.Webserver.URL == "" {
		return errors.Wrap(ErrEmptyURL, invalidErrMessage)
	}

	if c.Token.SigningKey == "" {
		return errors.Wrap(ErrEmptyTokenSigningKey, invalidErrMessage)
	}

	if c.Site.Domain == "" {
		return errors.Wrap(ErrEmptySiteDomain, invalidErrMessage)
	}

	return nil
}
