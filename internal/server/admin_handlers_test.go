package server

import (
	"fmt"
	"testing"

	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminAccessControl(t *testing.T) {
	e := newTestEnv(t)
	user := e.register(t, "plebeian", "secret123")

	t.Run("anonymous is 401", func(t *testing.T) {
		resp := e.do(t, fiber.MethodGet, "/api/admin/users", "", nil)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("non-admin is 403", func(t *testing.T) {
		resp := e.do(t, fiber.MethodGet, "/api/admin/users", user, nil)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})
}

func TestAdminListUsers(t *testing.T) {
	e := newTestEnv(t)
	e.register(t, "member-one", "secret123")
	e.register(t, "member-two", "secret123")
	admin := e.loginAdmin(t)

	resp := e.do(t, fiber.MethodGet, "/api/admin/users", admin, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Users      []*models.User    `json:"users"`
		Pagination models.Pagination `json:"pagination"`
	}
	decodeJSON(t, resp, &body)
	assert.Equal(t, int64(3), body.Pagination.Total) // admin + two members
	assert.Len(t, body.Users, 3)
}

func TestAdminDeleteUser(t *testing.T) {
	e := newTestEnv(t)
	victim := e.register(t, "victim", "secret123")
	bystander := e.register(t, "bystander2", "secret123")
	admin := e.loginAdmin(t)

	postID := e.createPost(t, victim, "Victim post", "body", nil)
	rootID := e.createComment(t, bystander, postID, "on victim's post", nil)
	e.createComment(t, victim, postID, "reply", &rootID)
	survivorPost := e.createPost(t, bystander, "Survivor post", "body", nil)
	e.createComment(t, bystander, survivorPost, "untouched", nil)

	var victimRow models.User
	require.NoError(t, e.db.Where("username = ?", "victim").Take(&victimRow).Error)

	t.Run("cascade removes the user's posts and the comment fallout", func(t *testing.T) {
		resp := e.do(t, fiber.MethodDelete,
			fmt.Sprintf("/api/admin/users/%d", victimRow.ID), admin, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var posts, comments int64
		require.NoError(t, e.db.Model(&models.Post{}).
			Where("author_id = ?", victimRow.ID).Count(&posts).Error)
		require.NoError(t, e.db.Model(&models.Comment{}).
			Where("post_id = ?", postID).Count(&comments).Error)
		assert.Zero(t, posts)
		assert.Zero(t, comments)

		// Content elsewhere survives.
		var survivors int64
		require.NoError(t, e.db.Model(&models.Comment{}).
			Where("post_id = ?", survivorPost).Count(&survivors).Error)
		assert.Equal(t, int64(1), survivors)
	})

	t.Run("admin accounts cannot be deleted", func(t *testing.T) {
		var adminRow models.User
		require.NoError(t, e.db.Where("username = ?", "admin").Take(&adminRow).Error)

		resp := e.do(t, fiber.MethodDelete,
			fmt.Sprintf("/api/admin/users/%d", adminRow.ID), admin, nil)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unknown user is 404", func(t *testing.T) {
		resp := e.do(t, fiber.MethodDelete, "/api/admin/users/99999", admin, nil)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})
}

func TestAdminComments(t *testing.T) {
	e := newTestEnv(t)
	author := e.register(t, "noisy", "secret123")
	admin := e.loginAdmin(t)

	postID := e.createPost(t, author, "Discussed", "body", nil)
	otherPost := e.createPost(t, author, "Quiet", "body", nil)
	for i := 0; i < 3; i++ {
		e.createComment(t, author, postID, fmt.Sprintf("comment %d", i), nil)
	}
	doomed := e.createComment(t, author, otherPost, "off topic", nil)

	t.Run("list filters by post", func(t *testing.T) {
		resp := e.do(t, fiber.MethodGet,
			fmt.Sprintf("/api/admin/comments?post_id=%d", postID), admin, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var page models.CommentPage
		decodeJSON(t, resp, &page)
		assert.Equal(t, int64(3), page.Total)
		for _, cm := range page.Comments {
			assert.Equal(t, postID, cm.PostID)
			assert.Equal(t, "Discussed", cm.PostTitle)
		}
	})

	t.Run("recent returns newest first", func(t *testing.T) {
		resp := e.do(t, fiber.MethodGet, "/api/admin/comments/recent?limit=2", admin, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body struct {
			Comments []*models.Comment `json:"comments"`
		}
		decodeJSON(t, resp, &body)
		assert.Len(t, body.Comments, 2)
	})

	t.Run("admin deletes any comment", func(t *testing.T) {
		resp := e.do(t, fiber.MethodDelete,
			fmt.Sprintf("/api/admin/comments/%d", doomed), admin, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var count int64
		require.NoError(t, e.db.Model(&models.Comment{}).
			Where("id = ?", doomed).Count(&count).Error)
		assert.Zero(t, count)
	})
}

func TestAdminListPosts(t *testing.T) {
	e := newTestEnv(t)
	author := e.register(t, "prolific", "secret123")
	admin := e.loginAdmin(t)

	e.createPost(t, author, "A", "body", nil)
	e.createPost(t, author, "B", "body", nil)

	resp := e.do(t, fiber.MethodGet, "/api/admin/posts", admin, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var page models.PostPage
	decodeJSON(t, resp, &page)
	assert.Equal(t, int64(2), page.Pagination.Total)
	for _, p := range page.Posts {
		assert.NotEmpty(t, p.PreviewHTML)
	}
}

func TestSiteStats(t *testing.T) {
	e := newTestEnv(t)
	author := e.register(t, "counted", "secret123")

	for i := 0; i < 6; i++ {
		id := e.createPost(t, author, fmt.Sprintf("Stat %d", i), "body", nil)
		e.createComment(t, author, id, "hi", nil)
	}

	resp := e.do(t, fiber.MethodGet, "/api/stats", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var stats models.SiteStats
	decodeJSON(t, resp, &stats)
	assert.Equal(t, int64(6), stats.TotalPosts)
	assert.Equal(t, int64(2), stats.TotalUsers) // admin + author
	assert.Equal(t, int64(4), stats.TotalCategories)
	assert.Equal(t, int64(6), stats.TotalComments)
	assert.Len(t, stats.LatestPosts, 5)
}
