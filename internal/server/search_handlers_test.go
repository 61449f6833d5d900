package server

import (
	"testing"
	"time"

	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch(t *testing.T) {
	e := newTestEnv(t)
	cookie := e.register(t, "searcher", "secret123")

	e.createPost(t, cookie, "Go concurrency patterns", "channels and goroutines", nil)
	e.createPost(t, cookie, "Python tips", "generators and Go interop", nil)
	e.createPost(t, cookie, "Gardening", "tomatoes", nil)

	t.Run("substring match on title and content", func(t *testing.T) {
		resp := e.do(t, fiber.MethodGet, "/api/search?keyword=go", "", nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var result models.SearchResult
		decodeJSON(t, resp, &result)
		assert.Equal(t, int64(2), result.Total)
		assert.Equal(t, "go", result.Keyword)
		assert.Equal(t, 1, result.TotalPages)
	})

	t.Run("matched titles carry mark highlighting", func(t *testing.T) {
		resp := e.do(t, fiber.MethodGet, "/api/search?keyword=concurrency", "", nil)
		var result models.SearchResult
		decodeJSON(t, resp, &result)
		require.Len(t, result.Posts, 1)
		assert.Contains(t, result.Posts[0].TitleHighlighted, "<mark>concurrency</mark>")
	})

	t.Run("no matches yields zero pages", func(t *testing.T) {
		resp := e.do(t, fiber.MethodGet, "/api/search?keyword=zzzznothing", "", nil)
		var result models.SearchResult
		decodeJSON(t, resp, &result)
		assert.Zero(t, result.Total)
		assert.Zero(t, result.TotalPages)
	})

	t.Run("missing keyword is 400", func(t *testing.T) {
		resp := e.do(t, fiber.MethodGet, "/api/search", "", nil)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func TestSuggestions(t *testing.T) {
	e := newTestEnv(t)
	cookie := e.register(t, "suggester", "secret123")
	e.createPost(t, cookie, "Technically speaking", "body", nil)

	t.Run("mixes post titles and category names", func(t *testing.T) {
		resp := e.do(t, fiber.MethodGet, "/api/search/suggestions?keyword=tech", "", nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body struct {
			Suggestions []models.Suggestion `json:"suggestions"`
		}
		decodeJSON(t, resp, &body)

		types := map[string]bool{}
		for _, s := range body.Suggestions {
			types[s.Type] = true
		}
		assert.True(t, types["post"])
		assert.True(t, types["category"]) // "Technology"
	})

	t.Run("empty keyword returns an empty list", func(t *testing.T) {
		resp := e.do(t, fiber.MethodGet, "/api/search/suggestions", "", nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body struct {
			Suggestions []models.Suggestion `json:"suggestions"`
		}
		decodeJSON(t, resp, &body)
		assert.Empty(t, body.Suggestions)
	})
}

func TestAutocomplete(t *testing.T) {
	e := newTestEnv(t)
	cookie := e.register(t, "completer", "secret123")
	e.createPost(t, cookie, "Alpha release notes", "body", nil)
	e.createPost(t, cookie, "Alpha roadmap", "body", nil)

	resp := e.do(t, fiber.MethodGet, "/api/search/autocomplete?keyword=alpha", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Titles []string `json:"titles"`
	}
	decodeJSON(t, resp, &body)
	assert.ElementsMatch(t, []string{"Alpha release notes", "Alpha roadmap"}, body.Titles)
}

func TestPopularKeywords(t *testing.T) {
	e := newTestEnv(t)
	cookie := e.register(t, "ranker", "secret123")
	e.createPost(t, cookie, "golang tips", "body", nil)
	e.createPost(t, cookie, "golang tricks", "body", nil)
	e.createPost(t, cookie, "cooking tips", "body", nil)

	resp := e.do(t, fiber.MethodGet, "/api/search/popular", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Keywords []models.KeywordCount `json:"keywords"`
	}
	decodeJSON(t, resp, &body)
	require.NotEmpty(t, body.Keywords)
	// "golang" and "tips" both appear twice; "golang" was seen first.
	assert.Equal(t, "golang", body.Keywords[0].Keyword)
	assert.Equal(t, 2, body.Keywords[0].Count)
}

func TestAdvancedSearch(t *testing.T) {
	e := newTestEnv(t)
	cookie := e.register(t, "advanced", "secret123")

	oldID := e.createPost(t, cookie, "Old entry", "archive", nil)
	e.backdatePost(t, oldID, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	newID := e.createPost(t, cookie, "New entry", "fresh", nil)
	e.backdatePost(t, newID, time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC))

	t.Run("date range is inclusive of both ends", func(t *testing.T) {
		resp := e.do(t, fiber.MethodPost, "/api/search/advanced", "", fiber.Map{
			"keyword":   "entry",
			"date_from": "2025-03-01",
			"date_to":   "2025-03-01",
		})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var result models.SearchResult
		decodeJSON(t, resp, &result)
		require.Len(t, result.Posts, 1)
		assert.Equal(t, "Old entry", result.Posts[0].Title)
	})

	t.Run("author filter", func(t *testing.T) {
		var author models.User
		require.NoError(t, e.db.Where("username = ?", "advanced").Take(&author).Error)

		resp := e.do(t, fiber.MethodPost, "/api/search/advanced", "", fiber.Map{
			"author_id": author.ID,
		})
		var result models.SearchResult
		decodeJSON(t, resp, &result)
		assert.Equal(t, int64(2), result.Total)
	})

	t.Run("malformed date is 400", func(t *testing.T) {
		resp := e.do(t, fiber.MethodPost, "/api/search/advanced", "", fiber.Map{
			"date_from": "01/03/2025",
		})
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}
