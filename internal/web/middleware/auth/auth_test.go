package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoCampusAuth/GoCampusAuth/internal/config"
	"github.com/GoCampusAuth/GoCampusAuth/internal/db/models"
	"github.com/GoCampusAuth/GoCampusAuth/internal/token"
)

func setupApp(t *testing.T) (*fiber.App, *token.Issuer) {
	t.Helper()

	issuer, err := token.New(&config.Token{
		SigningKey: "test-signing-key-test-signing-key",
		AccessTTL:  300,
		RefreshTTL: 3600,
	})
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/protected", New(issuer), RequireStaff(), func(c *fiber.Ctx) error {
		return c.SendString(Claims(c).Username)
	})

	return app, issuer
}

func request(t *testing.T, app *fiber.App, bearer string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if bearer != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+bearer)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	return resp
}

func TestBearerMiddleware(t *testing.T) {
	app, issuer := setupApp(t)

	issue := func(staff bool) string {
		response, err := issuer.Issue(
			&models.Account{Username: "alice", Staff: staff},
			&models.Profile{Affiliation: "member"},
		)
		require.NoError(t, err)

		return response.Access
	}

	t.Run("missing header", func(t *testing.T) {
		resp := request(t, app, "")
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("invalid token", func(t *testing.T) {
		resp := request(t, app, "garbage")
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("refresh token rejected", func(t *testing.T) {
		response, err := issuer.Issue(
			&models.Account{Username: "alice", Staff: true},
			&models.Profile{Affiliation: "member"},
		)
		require.NoError(t, err)

		resp := request(t, app, response.Refresh)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("non staff rejected", func(t *testing.T) {
		resp := request(t, app, issue(false))
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})

	t.Run("staff accepted", func(t *testing.T) {
		resp := request(t, app, issue(true))
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})
}
