package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoCampusAuth/GoCampusAuth/internal/config"
	"github.com/GoCampusAuth/GoCampusAuth/internal/db/models"
)

func testTokenConfig() *config.Token {
	return &config.Token{
		SigningKey: "test-signing-key-test-signing-key",
		Issuer:     "go-campus-auth",
		AccessTTL:  300,
		RefreshTTL: 86400,
	}
}

func testAccountAndProfile() (*models.Account, *models.Profile) {
	acct := &models.Account{
		ID:        1,
		Username:  "alice",
		Email:     "alice@example.org",
		FirstName: "Alice",
		LastName:  "Martin",
		Staff:     true,
	}
	profile := &models.Profile{AccountID: 1, Affiliation: "faculty"}

	return acct, profile
}

func TestNewRequiresKey(t *testing.T) {
	_, err := New(&config.Token{})
	assert.ErrorIs(t, err, ErrEmptySigningKey)
}

func TestIssueAndVerify(t *testing.T) {
	issuer, err := New(testTokenConfig())
	require.NoError(t, err)

	acct, profile := testAccountAndProfile()

	response, err := issuer.Issue(acct, profile)
	require.NoError(t, err)

	assert.NotEmpty(t, response.Access)
	assert.NotEmpty(t, response.Refresh)
	assert.NotEqual(t, response.Access, response.Refresh)

	assert.Equal(t, "alice", response.User.Username)
	assert.Equal(t, "alice@example.org", response.User.Email)
	assert.Equal(t, "Alice", response.User.FirstName)
	assert.Equal(t, "Martin", response.User.LastName)
	assert.Equal(t, "faculty", response.User.Affiliation)
	assert.True(t, response.User.Staff)

	claims, err := issuer.Verify(response.Access, TypeAccess)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "faculty", claims.Affiliation)
	assert.True(t, claims.Staff)
	assert.Equal(t, TypeAccess, claims.TokenType)

	refreshClaims, err := issuer.Verify(response.Refresh, TypeRefresh)
	require.NoError(t, err)
	assert.Equal(t, TypeRefresh, refreshClaims.TokenType)
}

func TestVerifyRejectsWrongType(t *testing.T) {
	issuer, err := New(testTokenConfig())
	require.NoError(t, err)

	acct, profile := testAccountAndProfile()

	response, err := issuer.Issue(acct, profile)
	require.NoError(t, err)

	_, err = issuer.Verify(response.Refresh, TypeAccess)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}

func TestVerifyRejectsTampering(t *testing.T) {
	issuer, err := New(testTokenConfig())
	require.NoError(t, err)

	acct, profile := testAccountAndProfile()

	response, err := issuer.Issue(acct, profile)
	require.NoError(t, err)

	t.Run("garbage token", func(t *testing.T) {
		_, err := issuer.Verify("not-a-token", TypeAccess)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong key", func(t *testing.T) {
		cfg := testTokenConfig()
		cfg.SigningKey = "another-key-another-key-another-k"

		other, err := New(cfg)
		require.NoError(t, err)

		_, err = other.Verify(response.Access, TypeAccess)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestVerifyRejectsExpired(t *testing.T) {
	cfg := testTokenConfig()
	cfg.AccessTTL = -300

	issuer, err := New(cfg)
	require.NoError(t, err)

	acct, profile := testAccountAndProfile()

	response, err := issuer.Issue(acct, profile)
	require.NoError(t, err)

	_, err = issuer.Verify(response.Access, TypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
