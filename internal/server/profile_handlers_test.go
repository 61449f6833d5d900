package server

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"inkwell/internal/models"
	"inkwell/internal/session"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfile(t *testing.T) {
	e := newTestEnv(t)
	cookie := e.register(t, "profiled", "secret123")

	t.Run("get own profile", func(t *testing.T) {
		resp := e.do(t, fiber.MethodGet, "/api/profile", cookie, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var user models.User
		decodeJSON(t, resp, &user)
		assert.Equal(t, "profiled", user.Username)
	})

	t.Run("partial update leaves other fields alone", func(t *testing.T) {
		resp := e.do(t, fiber.MethodPut, "/api/profile", cookie, fiber.Map{
			"bio": "writes about nothing",
		})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		resp = e.do(t, fiber.MethodPut, "/api/profile", cookie, fiber.Map{
			"birthday": "1990-04-01",
		})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var user models.User
		decodeJSON(t, resp, &user)
		assert.Equal(t, "writes about nothing", user.Bio)
		require.NotNil(t, user.Birthday)
		assert.Equal(t, "1990-04-01", *user.Birthday)
	})

	t.Run("malformed birthday is 400", func(t *testing.T) {
		resp := e.do(t, fiber.MethodPut, "/api/profile", cookie, fiber.Map{
			"birthday": "April 1st",
		})
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("bio over 500 characters is 400", func(t *testing.T) {
		resp := e.do(t, fiber.MethodPut, "/api/profile", cookie, fiber.Map{
			"bio": strings.Repeat("b", 501),
		})
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("requires a login", func(t *testing.T) {
		resp := e.do(t, fiber.MethodGet, "/api/profile", "", nil)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}

func TestUpdateBirthdayRoute(t *testing.T) {
	e := newTestEnv(t)
	cookie := e.register(t, "borndaily", "secret123")

	t.Run("sets the birthday only", func(t *testing.T) {
		resp := e.do(t, fiber.MethodPut, "/api/profile", cookie, fiber.Map{
			"bio": "kept intact",
		})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		resp = e.do(t, fiber.MethodPut, "/api/profile/birthday", cookie, fiber.Map{
			"birthday": "1985-12-24",
		})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var user models.User
		decodeJSON(t, resp, &user)
		require.NotNil(t, user.Birthday)
		assert.Equal(t, "1985-12-24", *user.Birthday)
		assert.Equal(t, "kept intact", user.Bio)
	})

	t.Run("malformed date is 400", func(t *testing.T) {
		resp := e.do(t, fiber.MethodPut, "/api/profile/birthday", cookie, fiber.Map{
			"birthday": "24/12/1985",
		})
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("requires a login", func(t *testing.T) {
		resp := e.do(t, fiber.MethodPut, "/api/profile/birthday", "", fiber.Map{
			"birthday": "1985-12-24",
		})
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}

func TestUpdateBioRoute(t *testing.T) {
	e := newTestEnv(t)
	cookie := e.register(t, "biographed", "secret123")

	t.Run("sets the bio", func(t *testing.T) {
		resp := e.do(t, fiber.MethodPut, "/api/profile/bio", cookie, fiber.Map{
			"bio": "collects fountain pens",
		})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var user models.User
		decodeJSON(t, resp, &user)
		assert.Equal(t, "collects fountain pens", user.Bio)
	})

	t.Run("bio over 500 characters is 400", func(t *testing.T) {
		resp := e.do(t, fiber.MethodPut, "/api/profile/bio", cookie, fiber.Map{
			"bio": strings.Repeat("b", 501),
		})
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("requires a login", func(t *testing.T) {
		resp := e.do(t, fiber.MethodPut, "/api/profile/bio", "", fiber.Map{
			"bio": "anonymous",
		})
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}

func TestPublicProfile(t *testing.T) {
	e := newTestEnv(t)
	cookie := e.register(t, "visible", "secret123")
	e.createPost(t, cookie, "One", "body", nil)
	e.createPost(t, cookie, "Two", "body", nil)

	t.Run("by username with post count", func(t *testing.T) {
		resp := e.do(t, fiber.MethodGet, "/api/users/visible", "", nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body struct {
			User       models.User `json:"user"`
			TotalPosts int64       `json:"total_posts"`
		}
		decodeJSON(t, resp, &body)
		assert.Equal(t, "visible", body.User.Username)
		assert.Equal(t, int64(2), body.TotalPosts)
	})

	t.Run("unknown username is 404", func(t *testing.T) {
		resp := e.do(t, fiber.MethodGet, "/api/users/ghost", "", nil)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// uploadFile sends a multipart avatar upload under the "file" field.
func (e *testEnv) uploadFile(t *testing.T, cookie, filename string, content []byte) *http.Response {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(fiber.MethodPost, "/api/profile/avatar", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: cookie})
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestUploadAvatar(t *testing.T) {
	e := newTestEnv(t)
	cookie := e.register(t, "pictured", "secret123")

	t.Run("valid png is stored and linked", func(t *testing.T) {
		resp := e.uploadFile(t, cookie, "me.png", pngBytes(t))
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body struct {
			AvatarURL string `json:"avatar_url"`
		}
		decodeJSON(t, resp, &body)
		assert.True(t, strings.HasPrefix(body.AvatarURL, "/static/uploads/me_"))
		assert.True(t, strings.HasSuffix(body.AvatarURL, ".png"))

		var user models.User
		require.NoError(t, e.db.Where("username = ?", "pictured").Take(&user).Error)
		assert.Equal(t, body.AvatarURL, user.AvatarURL)
	})

	t.Run("disallowed extension is rejected", func(t *testing.T) {
		resp := e.uploadFile(t, cookie, "payload.svg", pngBytes(t))
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("extension lying about the content is rejected", func(t *testing.T) {
		resp := e.uploadFile(t, cookie, "notreally.jpg", pngBytes(t))
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("non-image bytes are rejected", func(t *testing.T) {
		resp := e.uploadFile(t, cookie, "script.png", []byte("#!/bin/sh\necho pwned"))
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("missing file field is rejected", func(t *testing.T) {
		resp := e.do(t, fiber.MethodPost, "/api/profile/avatar", cookie, fiber.Map{})
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("requires a login", func(t *testing.T) {
		resp := e.uploadFile(t, "", "me.png", pngBytes(t))
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}
