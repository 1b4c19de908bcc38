package account

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/GoCampusAuth/GoCampusAuth/internal/db/models"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "failed to create test database")

	// Migrate the schema
	err = db.AutoMigrate(&models.Site{}, &models.Account{}, &models.Profile{}, &models.AccessGroup{})
	require.NoError(t, err, "failed to migrate test database")

	return db
}

func TestGetByUsername(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, db.Create(&models.Account{Active: true, Username: "alice"}).Error)

	t.Run("existing account", func(t *testing.T) {
		acct, err := GetByUsername(db, "alice")
		require.NoError(t, err)
		assert.Equal(t, "alice", acct.Username)
	})

	t.Run("missing account", func(t *testing.T) {
		_, err := GetByUsername(db, "ghost")
		assert.ErrorIs(t, err, ErrAccountNotFound)
	})

	t.Run("empty username", func(t *testing.T) {
		_, err := GetByUsername(db, "")
		assert.ErrorIs(t, err, ErrUsernameEmpty)
	})

	t.Run("nil db", func(t *testing.T) {
		_, err := GetByUsername(nil, "alice")
		assert.ErrorIs(t, err, ErrDBNil)
	})
}

func TestGetOrCreateWithProfile(t *testing.T) {
	db := setupTestDB(t)

	site := models.Site{Domain: "campus.example.org", Name: "Campus"}
	require.NoError(t, db.Create(&site).Error)

	opts := CreateOptions{
		DefaultAffiliation: "member",
		HashkeySecret:      "secret",
		SiteID:             site.ID,
	}

	t.Run("creates account and profile", func(t *testing.T) {
		acct, profile, created, err := GetOrCreateWithProfile(db, "alice", opts)
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, "alice", acct.Username)
		assert.True(t, acct.Active)
		assert.False(t, acct.HasUsablePassword(), "external accounts get an unusable password")
		assert.Equal(t, acct.ID, profile.AccountID)
		assert.Equal(t, "member", profile.Affiliation)
		assert.Len(t, profile.Hashkey, 64, "hashkey is a hex encoded sha256")

		var count int64
		require.NoError(t, db.Table("profile_sites").
			Where("profile_id = ? AND site_id = ?", profile.ID, site.ID).
			Count(&count).Error)
		assert.EqualValues(t, 1, count, "new profile is attached to the site")
	})

	t.Run("returns existing pair untouched", func(t *testing.T) {
		first, firstProfile, _, err := GetOrCreateWithProfile(db, "bob", opts)
		require.NoError(t, err)

		again, againProfile, created, err := GetOrCreateWithProfile(db, "bob", opts)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, first.ID, again.ID)
		assert.Equal(t, firstProfile.ID, againProfile.ID)
		assert.Equal(t, firstProfile.Hashkey, againProfile.Hashkey, "hashkey is stable across logins")
	})

	t.Run("backfills missing profile", func(t *testing.T) {
		// Accounts created through raw admin paths have no profile yet.
		raw := models.Account{Active: true, Username: "carol", Password: models.HashPassword("pw")}
		require.NoError(t, db.Create(&raw).Error)

		acct, profile, created, err := GetOrCreateWithProfile(db, "carol", opts)
		require.NoError(t, err)
		assert.False(t, created, "the account already existed")
		assert.Equal(t, raw.ID, acct.ID)
		assert.Equal(t, raw.ID, profile.AccountID)
		assert.True(t, acct.HasUsablePassword(), "existing credentials are preserved")
	})
}

func TestEnsureProfileDefaults(t *testing.T) {
	db := setupTestDB(t)

	acct := models.Account{Active: true, Username: "dave"}
	require.NoError(t, db.Create(&acct).Error)

	profile, err := EnsureProfile(db, &acct, CreateOptions{HashkeySecret: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "member", profile.Affiliation, "empty default affiliation falls back to member")
	assert.Equal(t, models.AuthSourceLocal, profile.AuthSource)
}
