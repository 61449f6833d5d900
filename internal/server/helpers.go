package server

import (
	"errors"
	"strings"
	"unicode"

	"inkwell/internal/middleware"
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper.  Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

const (
	defaultPostsPerPage    = 7
	defaultSearchPerPage   = 10
	defaultCommentsPerPage = 20
	defaultAdminPerPage    = 20
	maxPerPage             = 100

	// Listing previews show the opening of a post; the shorter cut is used
	// on the denser my-posts and admin listings.
	listingPreviewRunes = 200
	compactPreviewRunes = 150

	maxCommentRunes = 1000
	maxBioRunes     = 500
)

// Pagination holds parsed page/per_page query parameters.
type Pagination struct {
	Page    int
	PerPage int
}

// parsePagination extracts page and per_page query parameters. Page floors
// at 1 rather than erroring; per_page is clamped to [1, 100].
func parsePagination(c *fiber.Ctx, defaultPerPage int) Pagination {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	perPage := c.QueryInt("per_page", defaultPerPage)
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	return Pagination{
		Page:    page,
		PerPage: perPage,
	}
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "userId" -> "user ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		prefix := param[:len(param)-2]
		words := splitCamel(prefix)
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

// splitCamel splits a camelCase string into words.
func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	words = append(words, s[start:])
	return words
}

// currentUserID reads the logged-in user from locals. The second return is
// false for anonymous requests.
func currentUserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals(middleware.LocalUserID).(uint)
	return id, ok
}

func currentIsAdmin(c *fiber.Ctx) bool {
	isAdmin, ok := c.Locals(middleware.LocalIsAdmin).(bool)
	return ok && isAdmin
}

// canModify reports whether the logged-in user may mutate content owned by
// ownerID: the owner themselves, or any admin.
func canModify(c *fiber.Ctx, ownerID uint) bool {
	userID, ok := currentUserID(c)
	if !ok {
		return false
	}
	return userID == ownerID || currentIsAdmin(c)
}

// optionalUintQuery parses a positive integer query parameter, nil if absent.
func optionalUintQuery(c *fiber.Ctx, name string) *uint {
	v := c.QueryInt(name, 0)
	if v <= 0 {
		return nil
	}
	u := uint(v)
	return &u
}

// respondRepoError maps repository failures to HTTP responses: missing rows
// become 404 with the given message, typed errors keep their status, and
// anything else is a 500.
func respondRepoError(c *fiber.Ctx, err error, notFoundMsg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError(notFoundMsg))
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return models.RespondWithError(c, models.StatusForError(appErr), appErr)
	}
	return models.RespondWithError(c, fiber.StatusInternalServerError,
		models.NewInternalError(err))
}

// decorateListing attaches rendered previews to a page of posts.
func (s *Server) decorateListing(posts []*models.Post, previewRunes int) {
	for _, p := range posts {
		p.PreviewHTML = s.renderer.Preview(p.Content, previewRunes)
	}
}

// decorateDetail attaches the fully rendered body to a single post.
func (s *Server) decorateDetail(post *models.Post) {
	post.ContentHTML = s.renderer.Render(post.Content)
}
