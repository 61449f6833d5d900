package models

import "time"

// Comment is a remark on a post. A nil ParentID marks a root comment; a
// non-nil ParentID references another comment on the same post. The schema
// imposes no depth limit, though clients typically render two levels.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	AuthorID  uint      `gorm:"not null;index" json:"author_id"`
	Content   string    `gorm:"not null" json:"content"`
	ParentID  *uint     `gorm:"index" json:"parent_id"`
	CreatedAt time.Time `json:"created_at"`

	// Resolved at query time via joins; not persisted.
	AuthorName   string `gorm:"->;-:migration" json:"author_name"`
	AuthorAvatar string `gorm:"->;-:migration" json:"author_avatar,omitempty"`
	PostTitle    string `gorm:"->;-:migration" json:"post_title,omitempty"`

	// Populated by BuildCommentTree; never persisted.
	Replies []*Comment `gorm:"-" json:"replies"`
}

// CommentPage is the envelope for paginated comment listings.
type CommentPage struct {
	Comments   []*Comment `json:"comments"`
	Total      int64      `json:"total"`
	Page       int        `json:"page"`
	PerPage    int        `json:"per_page"`
	TotalPages int        `json:"total_pages"`
}
