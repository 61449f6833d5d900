package repository

import (
	"context"
	"strings"
	"time"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/search"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

// SearchOptions carries the filters of a post search. Keyword is matched as
// a substring against title and content; the remaining filters narrow the
// result further. Nil filters are skipped.
type SearchOptions struct {
	Keyword    string
	CategoryID *uint
	AuthorID   *uint
	DateFrom   *time.Time
	DateTo     *time.Time
	Page       int
	PerPage    int
}

// SearchRepository implements post search, suggestions and the keyword
// ranking.
type SearchRepository interface {
	SearchPosts(ctx context.Context, opts SearchOptions) ([]*models.Post, int64, error)
	Suggestions(ctx context.Context, keyword string, limit int) ([]models.Suggestion, error)
	Autocomplete(ctx context.Context, keyword string, limit int) ([]string, error)
	PopularKeywords(ctx context.Context, limit int) ([]models.KeywordCount, error)
}

type searchRepository struct {
	db    *gorm.DB
	posts PostRepository
}

// NewSearchRepository creates a new search repository.
func NewSearchRepository(db *gorm.DB) SearchRepository {
	return &searchRepository{db: db, posts: NewPostRepository(db)}
}

// likePattern lowercases the keyword so substring matching is
// case-insensitive on both dialects, matched against LOWER(column).
func likePattern(keyword string) string {
	return "%" + strings.ToLower(keyword) + "%"
}

func (r *searchRepository) applyFilters(db *gorm.DB, opts SearchOptions) *gorm.DB {
	if opts.Keyword != "" {
		pattern := likePattern(opts.Keyword)
		db = db.Where("LOWER(posts.title) LIKE ? OR LOWER(posts.content) LIKE ?", pattern, pattern)
	}
	if opts.CategoryID != nil {
		db = db.Where("posts.category_id = ?", *opts.CategoryID)
	}
	if opts.AuthorID != nil {
		db = db.Where("posts.author_id = ?", *opts.AuthorID)
	}
	if opts.DateFrom != nil {
		db = db.Where("posts.created_at >= ?", *opts.DateFrom)
	}
	if opts.DateTo != nil {
		db = db.Where("posts.created_at < ?", *opts.DateTo)
	}
	return db
}

func (r *searchRepository) SearchPosts(ctx context.Context, opts SearchOptions) ([]*models.Post, int64, error) {
	defer observability.TrackQuery("search", "posts")()
	span, ctx := observability.NewSpan(ctx, "repository.SearchPosts")
	defer span.End()
	span.AddAttributes(
		attribute.String("search.keyword", opts.Keyword),
		attribute.Int("search.page", opts.Page),
	)

	var total int64
	counted := r.applyFilters(r.db.WithContext(ctx).Model(&models.Post{}), opts)
	if err := counted.Count(&total).Error; err != nil {
		span.SetError(err)
		return nil, 0, err
	}

	var posts []*models.Post
	query := r.applyFilters(applyPostDetails(r.db.WithContext(ctx)), opts)
	err := query.
		Order("posts.created_at DESC").
		Limit(opts.PerPage).
		Offset((opts.Page - 1) * opts.PerPage).
		Find(&posts).Error
	if err != nil {
		span.SetError(err)
		return nil, 0, err
	}
	return posts, total, nil
}

// Suggestions merges matching post titles and category names. Each source
// is capped at limit before merging and the merged list is cut back to
// limit, so a keyword with many matching titles can crowd the categories
// out entirely.
func (r *searchRepository) Suggestions(ctx context.Context, keyword string, limit int) ([]models.Suggestion, error) {
	defer observability.TrackQuery("suggestions", "posts")()
	pattern := likePattern(keyword)

	type row struct {
		ID    uint
		Title string
	}

	var postRows []row
	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Select("MIN(id) AS id, title").
		Where("LOWER(title) LIKE ?", pattern).
		Group("title").
		Order("title ASC").
		Limit(limit).
		Scan(&postRows).Error
	if err != nil {
		return nil, err
	}

	suggestions := make([]models.Suggestion, 0, limit)
	for _, p := range postRows {
		suggestions = append(suggestions, models.Suggestion{
			Suggestion: p.Title,
			Type:       "post",
			ID:         p.ID,
		})
	}

	var categories []*models.Category
	err = r.db.WithContext(ctx).
		Where("LOWER(name) LIKE ?", pattern).
		Order("name ASC").
		Limit(limit).
		Find(&categories).Error
	if err != nil {
		return nil, err
	}
	for _, c := range categories {
		suggestions = append(suggestions, models.Suggestion{
			Suggestion: c.Name,
			Type:       "category",
			ID:         c.ID,
		})
	}

	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	return suggestions, nil
}

func (r *searchRepository) Autocomplete(ctx context.Context, keyword string, limit int) ([]string, error) {
	defer observability.TrackQuery("autocomplete", "posts")()
	var titles []string
	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Distinct("title").
		Where("LOWER(title) LIKE ?", likePattern(keyword)).
		Order("title ASC").
		Limit(limit).
		Pluck("title", &titles).Error
	return titles, err
}

// PopularKeywords ranks keywords across all post titles. The ranking is
// cached briefly; it only shifts as posts are written.
func (r *searchRepository) PopularKeywords(ctx context.Context, limit int) ([]models.KeywordCount, error) {
	key := cache.PopularKeywordsKeyFor(limit)
	var cached []models.KeywordCount
	if cache.GetJSON(ctx, key, &cached) {
		return cached, nil
	}

	titles, err := r.posts.Titles(ctx)
	if err != nil {
		return nil, err
	}
	ranked := search.ExtractKeywords(titles, limit)
	cache.SetJSON(ctx, key, ranked, cache.PopularKeywordsTTL)
	return ranked, nil
}
