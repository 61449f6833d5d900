package server

import (
	"testing"

	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	e := newTestEnv(t)

	t.Run("creates the account and logs it in", func(t *testing.T) {
		cookie := e.register(t, "alice", "secret123")

		resp := e.do(t, fiber.MethodGet, "/api/auth/me", cookie, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var user models.User
		decodeJSON(t, resp, &user)
		assert.Equal(t, "alice", user.Username)
		assert.False(t, user.IsAdmin)
	})

	t.Run("never exposes the password hash", func(t *testing.T) {
		cookie := e.register(t, "hashcheck", "secret123")
		resp := e.do(t, fiber.MethodGet, "/api/auth/me", cookie, nil)

		var raw map[string]any
		decodeJSON(t, resp, &raw)
		assert.NotContains(t, raw, "password_hash")
		assert.NotContains(t, raw, "password")
	})

	t.Run("rejects a taken username", func(t *testing.T) {
		e.register(t, "bob", "secret123")
		resp := e.do(t, fiber.MethodPost, "/api/auth/register", "", fiber.Map{
			"username": "bob",
			"password": "other-secret",
		})
		assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	})

	t.Run("rejects weak input", func(t *testing.T) {
		cases := []fiber.Map{
			{"username": "", "password": "secret123"},
			{"username": "ok-user", "password": ""},
			{"username": "ab", "password": "secret123"},
			{"username": "ok-user", "password": "short"},
		}
		for _, body := range cases {
			resp := e.do(t, fiber.MethodPost, "/api/auth/register", "", body)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		}
	})
}

func TestLogin(t *testing.T) {
	e := newTestEnv(t)
	e.register(t, "carol", "secret123")

	t.Run("valid credentials", func(t *testing.T) {
		resp := e.do(t, fiber.MethodPost, "/api/auth/login", "", fiber.Map{
			"username": "carol",
			"password": "secret123",
		})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.NotEmpty(t, sessionCookie(resp))
	})

	t.Run("wrong password", func(t *testing.T) {
		resp := e.do(t, fiber.MethodPost, "/api/auth/login", "", fiber.Map{
			"username": "carol",
			"password": "wrong",
		})
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("unknown user gets the same error as a wrong password", func(t *testing.T) {
		resp := e.do(t, fiber.MethodPost, "/api/auth/login", "", fiber.Map{
			"username": "nobody",
			"password": "secret123",
		})
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}

func TestLogout(t *testing.T) {
	e := newTestEnv(t)
	cookie := e.register(t, "dave", "secret123")

	resp := e.do(t, fiber.MethodPost, "/api/auth/logout", cookie, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// The old session ID no longer resolves.
	resp = e.do(t, fiber.MethodGet, "/api/auth/me", cookie, nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestCurrentUserAnonymous(t *testing.T) {
	e := newTestEnv(t)
	resp := e.do(t, fiber.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
