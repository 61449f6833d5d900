package models

import "time"

// DeletedUserLabel is shown as the author of content whose owning user row
// no longer exists. Post author references are deliberately not cascading,
// so a post can outlive its author.
const DeletedUserLabel = "deleted user"

// Post is a blog article. Content holds raw Markdown source; rendered HTML
// is attached at response time, never persisted.
type Post struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Title      string    `gorm:"not null" json:"title"`
	Content    string    `gorm:"not null" json:"content"`
	AuthorID   uint      `gorm:"not null;index" json:"author_id"`
	CategoryID *uint     `gorm:"index" json:"category_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Resolved at query time via outer joins; not persisted.
	Author       string `gorm:"->;-:migration" json:"author"`
	CategoryName string `gorm:"->;-:migration" json:"category_name,omitempty"`
	AuthorAvatar string `gorm:"->;-:migration" json:"author_avatar,omitempty"`

	// Attached by the handler layer; never persisted.
	PreviewHTML      string `gorm:"-" json:"preview_html,omitempty"`
	ContentHTML      string `gorm:"-" json:"content_html,omitempty"`
	TitleHighlighted string `gorm:"-" json:"title_highlighted,omitempty"`
}

// Pagination describes the page envelope returned by listing endpoints.
type Pagination struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasPrev    bool  `json:"has_prev"`
	HasNext    bool  `json:"has_next"`
	PrevPage   *int  `json:"prev_page"`
	NextPage   *int  `json:"next_page"`
}

// NewPagination computes the page envelope for the given totals.
// total_pages is ceil(total/perPage), which yields 0 pages for 0 rows.
func NewPagination(page, perPage int, total int64) Pagination {
	p := Pagination{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: TotalPages(total, perPage),
	}
	p.HasPrev = page > 1
	p.HasNext = page < p.TotalPages
	if p.HasPrev {
		prev := page - 1
		p.PrevPage = &prev
	}
	if p.HasNext {
		next := page + 1
		p.NextPage = &next
	}
	return p
}

// TotalPages returns ceil(total/perPage); zero rows mean zero pages.
func TotalPages(total int64, perPage int) int {
	if perPage <= 0 {
		return 0
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}

// PostPage is the envelope for paginated post listings.
type PostPage struct {
	Posts      []*Post    `json:"posts"`
	Pagination Pagination `json:"pagination"`
}

// SearchResult is the flat envelope returned by post search.
type SearchResult struct {
	Posts      []*Post `json:"posts"`
	Total      int64   `json:"total"`
	Page       int     `json:"page"`
	PerPage    int     `json:"per_page"`
	TotalPages int     `json:"total_pages"`
	Keyword    string  `json:"keyword"`
}

// Suggestion is a single search suggestion: a matching post title or
// category name, tagged with its origin.
type Suggestion struct {
	Suggestion string `json:"suggestion"`
	Type       string `json:"type"` // "post" or "category"
	ID         uint   `json:"id"`
}

// KeywordCount is one entry of the popular-keyword ranking.
type KeywordCount struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

// SiteStats aggregates the site-wide counters plus the newest posts.
type SiteStats struct {
	TotalPosts      int64   `json:"total_posts"`
	TotalUsers      int64   `json:"total_users"`
	TotalCategories int64   `json:"total_categories"`
	TotalComments   int64   `json:"total_comments"`
	LatestPosts     []*Post `json:"latest_posts"`
}
