package server

import (
	"strings"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
	"inkwell/internal/search"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultSuggestionLimit   = 5
	defaultAutocompleteLimit = 10
	defaultPopularLimit      = 10
	maxSearchLimit           = 50
)

// Search handles GET /api/search?keyword=&page=&per_page=&category_id=&author_id=
func (s *Server) Search(c *fiber.Ctx) error {
	ctx := c.Context()
	keyword := strings.TrimSpace(c.Query("keyword"))
	if keyword == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Search keyword is required"))
	}
	observability.SearchQueries.WithLabelValues("search").Inc()

	page := parsePagination(c, defaultSearchPerPage)
	opts := repository.SearchOptions{
		Keyword:    keyword,
		CategoryID: optionalUintQuery(c, "category_id"),
		AuthorID:   optionalUintQuery(c, "author_id"),
		Page:       page.Page,
		PerPage:    page.PerPage,
	}

	posts, total, err := s.searches.SearchPosts(ctx, opts)
	if err != nil {
		return respondRepoError(c, err, "Posts not found")
	}
	s.decorateSearchResults(posts, keyword)

	return c.JSON(models.SearchResult{
		Posts:      posts,
		Total:      total,
		Page:       page.Page,
		PerPage:    page.PerPage,
		TotalPages: models.TotalPages(total, page.PerPage),
		Keyword:    keyword,
	})
}

// Suggestions handles GET /api/search/suggestions?keyword=&limit=
// An empty keyword yields an empty list rather than an error, so type-ahead
// clients can call it unconditionally.
func (s *Server) Suggestions(c *fiber.Ctx) error {
	keyword := strings.TrimSpace(c.Query("keyword"))
	if keyword == "" {
		return c.JSON(fiber.Map{"suggestions": []models.Suggestion{}})
	}
	observability.SearchQueries.WithLabelValues("suggestions").Inc()

	limit := clampLimit(c.QueryInt("limit", defaultSuggestionLimit))
	suggestions, err := s.searches.Suggestions(c.Context(), keyword, limit)
	if err != nil {
		return respondRepoError(c, err, "Suggestions not found")
	}
	return c.JSON(fiber.Map{"suggestions": suggestions})
}

// Autocomplete handles GET /api/search/autocomplete?keyword=&limit=
func (s *Server) Autocomplete(c *fiber.Ctx) error {
	keyword := strings.TrimSpace(c.Query("keyword"))
	if keyword == "" {
		return c.JSON(fiber.Map{"titles": []string{}})
	}
	observability.SearchQueries.WithLabelValues("autocomplete").Inc()

	limit := clampLimit(c.QueryInt("limit", defaultAutocompleteLimit))
	titles, err := s.searches.Autocomplete(c.Context(), keyword, limit)
	if err != nil {
		return respondRepoError(c, err, "Titles not found")
	}
	return c.JSON(fiber.Map{"titles": titles})
}

// PopularKeywords handles GET /api/search/popular?limit=
func (s *Server) PopularKeywords(c *fiber.Ctx) error {
	observability.SearchQueries.WithLabelValues("popular").Inc()

	limit := clampLimit(c.QueryInt("limit", defaultPopularLimit))
	keywords, err := s.searches.PopularKeywords(c.Context(), limit)
	if err != nil {
		return respondRepoError(c, err, "Keywords not found")
	}
	return c.JSON(fiber.Map{"keywords": keywords})
}

// AdvancedSearch handles POST /api/search/advanced. All filters are
// optional and AND-combined; dates are inclusive on both ends and use the
// YYYY-MM-DD format.
func (s *Server) AdvancedSearch(c *fiber.Ctx) error {
	ctx := c.Context()

	var req struct {
		Keyword    string `json:"keyword"`
		CategoryID *uint  `json:"category_id"`
		AuthorID   *uint  `json:"author_id"`
		DateFrom   string `json:"date_from"`
		DateTo     string `json:"date_to"`
		Page       int    `json:"page"`
		PerPage    int    `json:"per_page"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	observability.SearchQueries.WithLabelValues("advanced").Inc()

	opts := repository.SearchOptions{
		Keyword:    strings.TrimSpace(req.Keyword),
		CategoryID: req.CategoryID,
		AuthorID:   req.AuthorID,
		Page:       req.Page,
		PerPage:    req.PerPage,
	}
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.PerPage < 1 {
		opts.PerPage = defaultSearchPerPage
	}
	if opts.PerPage > maxPerPage {
		opts.PerPage = maxPerPage
	}

	if req.DateFrom != "" {
		from, err := time.Parse("2006-01-02", req.DateFrom)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("date_from must be YYYY-MM-DD"))
		}
		opts.DateFrom = &from
	}
	if req.DateTo != "" {
		to, err := time.Parse("2006-01-02", req.DateTo)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("date_to must be YYYY-MM-DD"))
		}
		// The repository bound is exclusive; shift a day so the named end
		// date is included.
		end := to.Add(24 * time.Hour)
		opts.DateTo = &end
	}

	posts, total, err := s.searches.SearchPosts(ctx, opts)
	if err != nil {
		return respondRepoError(c, err, "Posts not found")
	}
	s.decorateSearchResults(posts, opts.Keyword)

	return c.JSON(models.SearchResult{
		Posts:      posts,
		Total:      total,
		Page:       opts.Page,
		PerPage:    opts.PerPage,
		TotalPages: models.TotalPages(total, opts.PerPage),
		Keyword:    opts.Keyword,
	})
}

// decorateSearchResults attaches previews and keyword-highlighted titles.
func (s *Server) decorateSearchResults(posts []*models.Post, keyword string) {
	for _, p := range posts {
		p.PreviewHTML = s.renderer.Preview(p.Content, listingPreviewRunes)
		if keyword != "" {
			p.TitleHighlighted = search.HighlightKeyword(p.Title, keyword)
		}
	}
}

func clampLimit(limit int) int {
	if limit < 1 {
		return 1
	}
	if limit > maxSearchLimit {
		return maxSearchLimit
	}
	return limit
}
