package accessgroup

import (
	"path/filepath"
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

// createTestProfile inserts an account with a profile for membership tests.
func createTestProfile(t *testing.T, db *gorm.DB, username string) *models.Profile {
	t.Helper()

	acct := models.Account{
		Active:   true,
		Username: username,
		Password: models.UnusablePassword(),
	}
	require.NoError(t, db.Create(&acct).Error)

	profile := models.Profile{
		AccountID:   acct.ID,
		AuthSource:  models.AuthSourceLocal,
		Affiliation: "member",
	}
	profile.EnsureHashkey("secret", username)
	require.NoError(t, db.Create(&profile).Error)

	return &profile
}

func TestGetByCode(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, db.Create(&models.AccessGroup{Code: "students", DisplayName: "Students"}).Error)

	t.Run("existing group", func(t *testing.T) {
		group, err := GetByCode(db, "students")
		require.NoError(t, err)
		assert.Equal(t, "students", group.Code)
		assert.Equal(t, "Students", group.DisplayName)
	})

	t.Run("missing group", func(t *testing.T) {
		_, err := GetByCode(db, "nope")
		assert.ErrorIs(t, err, ErrGroupNotFound)
	})

	t.Run("empty code", func(t *testing.T) {
		_, err := GetByCode(db, "")
		assert.ErrorIs(t, err, ErrGroupCodeEmpty)
	})

	t.Run("nil db", func(t *testing.T) {
		_, err := GetByCode(nil, "students")
		assert.ErrorIs(t, err, ErrDBNil)
	})
}

func TestGetOrCreate(t *testing.T) {
	db := setupTestDB(t)

	site := models.Site{Domain: "campus.example.org", Name: "Campus"}
	require.NoError(t, db.Create(&site).Error)

	t.Run("creates missing group", func(t *testing.T) {
		group, created, err := GetOrCreate(db, "faculty", site.ID)
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, "faculty", group.Code)
		assert.Equal(t, "faculty", group.DisplayName, "new groups use the code as display name")
		assert.True(t, group.AutoSync, "population-created groups are auto-sync")

		var count int64
		require.NoError(t, db.Table("access_group_sites").
			Where("access_group_id = ? AND site_id = ?", group.ID, site.ID).
			Count(&count).Error)
		assert.EqualValues(t, 1, count, "new group is attached to the site")
	})

	t.Run("returns existing group untouched", func(t *testing.T) {
		require.NoError(t, db.Create(&models.AccessGroup{
			Code:        "vip",
			DisplayName: "Very Important",
			AutoSync:    false,
		}).Error)

		group, created, err := GetOrCreate(db, "vip", site.ID)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, "Very Important", group.DisplayName)
		assert.False(t, group.AutoSync, "existing groups keep their auto-sync flag")
	})

	t.Run("idempotent", func(t *testing.T) {
		_, created, err := GetOrCreate(db, "faculty", site.ID)
		require.NoError(t, err)
		assert.False(t, created)

		var count int64
		require.NoError(t, db.Model(&models.AccessGroup{}).Where("code = ?", "faculty").Count(&count).Error)
		assert.EqualValues(t, 1, count)
	})
}

func TestGetOrCreateLostRace(t *testing.T) {
	// File backed so the competing writer's connection sees the same
	// database as the one inside the create transaction.
	db, err := gorm.Open(
		sqlite.Open(filepath.Join(t.TempDir(), "race.db")),
		&gorm.Config{TranslateError: true},
	)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Site{}, &models.AccessGroup{}))

	// A competing writer inserts the row after the lookup misses but before
	// our insert lands, so the unique constraint arbitrates.
	var planted bool

	err = db.Callback().Create().Before("gorm:create").Register("competing_insert", func(tx *gorm.DB) {
		if planted || tx.Statement.Table != "access_groups" {
			return
		}

		planted = true

		require.NoError(t, db.Session(&gorm.Session{NewDB: true}).Create(&models.AccessGroup{
			Code:        "contested",
			DisplayName: "Contested",
			AutoSync:    true,
		}).Error)
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, db.Callback().Create().Remove("competing_insert"))
	})

	group, created, err := GetOrCreate(db, "contested", 0)
	require.NoError(t, err)
	assert.False(t, created, "the losing insert reports the group as pre-existing")
	assert.Equal(t, "contested", group.Code)
	assert.Equal(t, "Contested", group.DisplayName)

	var count int64
	require.NoError(t, db.Model(&models.AccessGroup{}).Where("code = ?", "contested").Count(&count).Error)
	assert.EqualValues(t, 1, count, "exactly one row exists for the contested code")
}

func TestGrantAndRevoke(t *testing.T) {
	db := setupTestDB(t)

	profile := createTestProfile(t, db, "alice")

	group, _, err := GetOrCreate(db, "students", 0)
	require.NoError(t, err)

	require.NoError(t, Grant(db, profile, group))
	// Granting twice must not duplicate the link.
	require.NoError(t, Grant(db, profile, group))

	held, err := HeldGroups(db, profile)
	require.NoError(t, err)
	require.Len(t, held, 1)
	assert.Equal(t, "students", held[0].Code)

	require.NoError(t, Revoke(db, profile, group))

	held, err = HeldGroups(db, profile)
	require.NoError(t, err)
	assert.Empty(t, held)
}

func TestRevokeAutoSync(t *testing.T) {
	db := setupTestDB(t)

	profile := createTestProfile(t, db, "bob")

	auto1, _, err := GetOrCreate(db, "students", 0)
	require.NoError(t, err)
	auto2, _, err := GetOrCreate(db, "cs101", 0)
	require.NoError(t, err)

	manual := models.AccessGroup{Code: "vip", DisplayName: "VIP", AutoSync: false}
	require.NoError(t, db.Create(&manual).Error)

	require.NoError(t, Grant(db, profile, auto1))
	require.NoError(t, Grant(db, profile, auto2))
	require.NoError(t, Grant(db, profile, &manual))

	revoked, err := RevokeAutoSync(db, profile)
	require.NoError(t, err)
	assert.Len(t, revoked, 2)

	held, err := HeldGroups(db, profile)
	require.NoError(t, err)
	require.Len(t, held, 1, "manually assigned groups survive auto-sync revocation")
	assert.Equal(t, "vip", held[0].Code)

	// No auto-sync memberships left, nothing to revoke.
	revoked, err = RevokeAutoSync(db, profile)
	require.NoError(t, err)
	assert.Empty(t, revoked)
}
