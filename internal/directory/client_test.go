package directory

import (
	"testing"

	ldap "github.com/go-ldap/ldap/v3"
	"github.com/stretchr/testify/assert"

	"github.com/GoCampusAuth/GoCampusAuth/internal/config"
)

func testConfig() *config.Directory {
	return &config.Directory{
		URL:    "ldap://directory.example.org:389",
		BaseDN: "ou=people,dc=example,dc=org",
		Filter: "(uid={username})",
		Attributes: config.DirectoryAttributes{
			Username:           "uid",
			Email:              "mail",
			FirstName:          "givenName",
			LastName:           "sn",
			PrimaryAffiliation: "eduPersonPrimaryAffiliation",
			Affiliations:       "eduPersonAffiliation",
			Groups:             "memberOf",
			Establishment:      "supannEtablissement",
		},
	}
}

func TestEnabled(t *testing.T) {
	assert.True(t, New(testConfig()).Enabled())
	assert.False(t, New(&config.Directory{}).Enabled(), "empty URL disables the directory")
	assert.False(t, New(nil).Enabled())
}

func TestConnectDisabled(t *testing.T) {
	assert.Nil(t, New(&config.Directory{}).Connect(), "disabled directory yields no connection")
}

func TestLookupNilConn(t *testing.T) {
	assert.Nil(t, New(testConfig()).Lookup(nil, "alice"), "nil connection degrades to no entry")
}

func TestAttributeList(t *testing.T) {
	client := New(testConfig())

	attrs := client.attributeList()
	assert.Equal(t, []string{
		"uid", "mail", "givenName", "sn",
		"eduPersonPrimaryAffiliation", "eduPersonAffiliation", "memberOf",
		"supannEtablissement",
	}, attrs)

	cfg := testConfig()
	cfg.Attributes.Establishment = ""
	assert.NotContains(t, New(cfg).attributeList(), "supannEtablissement", "unset attributes are skipped")
}

func TestMapEntry(t *testing.T) {
	client := New(testConfig())

	raw := ldap.NewEntry("uid=alice,ou=people,dc=example,dc=org", map[string][]string{
		"uid":                         {"alice"},
		"mail":                        {"alice@example.org"},
		"givenName":                   {"Alice"},
		"sn":                          {"Martin", "Martin-Dupont"},
		"eduPersonPrimaryAffiliation": {"faculty"},
		"eduPersonAffiliation":        {"faculty", "member"},
		"memberOf":                    {"cn=math,ou=groups", "cn=physics,ou=groups"},
		"supannEtablissement":         {"UAI123"},
	})

	entry := client.mapEntry(raw)
	assert.Equal(t, "alice", entry.Username)
	assert.Equal(t, "alice@example.org", entry.Email)
	assert.Equal(t, "Alice", entry.FirstName)
	assert.Equal(t, "Martin", entry.LastName, "multi-valued surname keeps the first value")
	assert.Equal(t, "faculty", entry.PrimaryAffiliation)
	assert.Equal(t, []string{"faculty", "member"}, entry.Affiliations)
	assert.Equal(t, []string{"cn=math,ou=groups", "cn=physics,ou=groups"}, entry.Groups)
	assert.Equal(t, "UAI123", entry.Establishment)
}

func TestMapEntryMissingAttributes(t *testing.T) {
	client := New(testConfig())

	raw := ldap.NewEntry("uid=bob,ou=people,dc=example,dc=org", map[string][]string{
		"uid": {"bob"},
	})

	entry := client.mapEntry(raw)
	assert.Equal(t, "bob", entry.Username)
	assert.Empty(t, entry.Email)
	assert.Empty(t, entry.Affiliations)
	assert.Empty(t, entry.Groups)
}
