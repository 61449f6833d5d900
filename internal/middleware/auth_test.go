package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"inkwell/internal/session"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionApp(t *testing.T, store session.Store) *fiber.App {
	t.Helper()
	app := fiber.New()
	app.Use(LoadSession(store))
	app.Get("/me", AuthRequired, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id":  c.Locals(LocalUserID),
			"username": c.Locals(LocalUsername),
		})
	})
	app.Get("/admin", AuthRequired, AdminRequired, func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestSessionAuth(t *testing.T) {
	store := session.NewMemoryStore(time.Hour)
	app := sessionApp(t, store)

	login := func(t *testing.T, sess session.Session) string {
		t.Helper()
		id, err := store.Create(context.Background(), sess)
		require.NoError(t, err)
		return id
	}

	t.Run("no cookie is rejected", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/me", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("stale cookie is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "gone"})

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("valid session passes", func(t *testing.T) {
		id := login(t, session.Session{UserID: 4, Username: "alice"})
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: id})

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("non admin is forbidden from admin routes", func(t *testing.T) {
		id := login(t, session.Session{UserID: 4, Username: "alice"})
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: id})

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("admin session reaches admin routes", func(t *testing.T) {
		id := login(t, session.Session{UserID: 1, Username: "admin", IsAdmin: true})
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: id})

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()
	})
}
