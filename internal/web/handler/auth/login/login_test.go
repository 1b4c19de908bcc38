package login

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/GoCampusAuth/GoCampusAuth/internal/auth"
	"github.com/GoCampusAuth/GoCampusAuth/internal/config"
	"github.com/GoCampusAuth/GoCampusAuth/internal/db/controller/account"
	"github.com/GoCampusAuth/GoCampusAuth/internal/db/models"
	"github.com/GoCampusAuth/GoCampusAuth/internal/token"
	"github.com/GoCampusAuth/GoCampusAuth/internal/web/handler"
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

func setupApp(t *testing.T, db *gorm.DB) *fiber.App {
	t.Helper()

	issuer, err := token.New(&config.Token{
		SigningKey: "test-signing-key-test-signing-key",
		Issuer:     "test",
		AccessTTL:  300,
		RefreshTTL: 3600,
	})
	require.NoError(t, err)

	local, err := auth.NewLocalProvider(&config.LocalAuth{Enabled: true}, db, account.CreateOptions{
		DefaultAffiliation: "member",
		HashkeySecret:      "secret",
	})
	require.NoError(t, err)

	app := fiber.New()

	s := Service{}
	require.NoError(t, s.Init(app, &handler.Deps{DB: db, Issuer: issuer, Local: local}))

	return app
}

func postJSON(t *testing.T, app *fiber.App, path, body string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)

	return resp
}

func TestLoginPost(t *testing.T) {
	db := setupTestDB(t)
	app := setupApp(t, db)

	acct := models.Account{
		Active:   true,
		Username: "alice",
		Email:    "alice@example.org",
		Password: models.HashPassword("s3cret"),
	}
	require.NoError(t, db.Create(&acct).Error)

	t.Run("valid credentials", func(t *testing.T) {
		resp := postJSON(t, app, Path, `{"username":"alice","password":"s3cret"}`)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body token.Response
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.NotEmpty(t, body.Access)
		assert.NotEmpty(t, body.Refresh)
		assert.Equal(t, "alice", body.User.Username)
		assert.Equal(t, "member", body.User.Affiliation)
	})

	t.Run("wrong password", func(t *testing.T) {
		resp := postJSON(t, app, Path, `{"username":"alice","password":"wrong"}`)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("unknown user answers like wrong password", func(t *testing.T) {
		resp := postJSON(t, app, Path, `{"username":"ghost","password":"s3cret"}`)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("missing fields", func(t *testing.T) {
		resp := postJSON(t, app, Path, `{"username":"alice"}`)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("disabled account", func(t *testing.T) {
		require.NoError(t, db.Model(&acct).Update("active", false).Error)

		resp := postJSON(t, app, Path, `{"username":"alice","password":"s3cret"}`)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

		require.NoError(t, db.Model(&acct).Update("active", true).Error)
	})
}

func TestLoginDisabledProvider(t *testing.T) {
	db := setupTestDB(t)

	issuer, err := token.New(&config.Token{SigningKey: "k-k-k-k-k-k-k-k-k", AccessTTL: 300, RefreshTTL: 3600})
	require.NoError(t, err)

	app := fiber.New()

	s := Service{}
	require.NoError(t, s.Init(app, &handler.Deps{DB: db, Issuer: issuer}))

	resp := postJSON(t, app, Path, `{"username":"alice","password":"s3cret"}`)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
