// Package middleware provides authentication, logging and rate limiting
// middleware for the application.
package middleware

import (
	"errors"

	"inkwell/internal/session"

	"github.com/gofiber/fiber/v2"
)

// Fiber locals keys populated by LoadSession.
const (
	LocalUserID   = "userID"
	LocalUsername = "username"
	LocalIsAdmin  = "isAdmin"
)

// LoadSession resolves the session cookie, if any, and stores the logged-in
// user in Fiber locals. It never rejects a request; handlers that require a
// login stack AuthRequired on top. A cookie pointing at a dead session is
// treated the same as no cookie.
func LoadSession(store session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Cookies(session.CookieName)
		if id == "" {
			return c.Next()
		}

		sess, err := store.Get(c.UserContext(), id)
		if err != nil {
			if !errors.Is(err, session.ErrNotFound) {
				Logger.WarnContext(c.UserContext(), "session lookup failed", "error", err)
			}
			return c.Next()
		}

		c.Locals(LocalUserID, sess.UserID)
		c.Locals(LocalUsername, sess.Username)
		c.Locals(LocalIsAdmin, sess.IsAdmin)
		return c.Next()
	}
}

// AuthRequired rejects requests that did not resolve to a logged-in user.
func AuthRequired(c *fiber.Ctx) error {
	if _, ok := c.Locals(LocalUserID).(uint); !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Login required",
		})
	}
	return c.Next()
}

// AdminRequired rejects requests from non-admin users. It assumes
// AuthRequired already ran.
func AdminRequired(c *fiber.Ctx) error {
	if isAdmin, ok := c.Locals(LocalIsAdmin).(bool); !ok || !isAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Admin access required",
		})
	}
	return c.Next()
}
