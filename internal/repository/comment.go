package repository

import (
	"context"

	"inkwell/internal/models"
	"inkwell/internal/observability"

	"gorm.io/gorm"
)

// ListCommentsOptions narrows and pages comment listings.
type ListCommentsOptions struct {
	PostID   *uint
	AuthorID *uint
	Page     int
	PerPage  int
}

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error)
	List(ctx context.Context, opts ListCommentsOptions) ([]*models.Comment, int64, error)
	Recent(ctx context.Context, limit int) ([]*models.Comment, error)
	CountByPost(ctx context.Context, postID uint) (int64, error)
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id uint) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// applyCommentDetails resolves the author and post title in the same query.
// The author join is outer so comments survive their author's deletion.
func applyCommentDetails(db *gorm.DB) *gorm.DB {
	return db.Model(&models.Comment{}).
		Select("comments.*, "+
			"COALESCE(users.username, ?) AS author_name, "+
			"COALESCE(users.avatar_url, '') AS author_avatar, "+
			"COALESCE(posts.title, '') AS post_title", models.DeletedUserLabel).
		Joins("LEFT JOIN users ON users.id = comments.author_id").
		Joins("LEFT JOIN posts ON posts.id = comments.post_id")
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	defer observability.TrackQuery("create", "comments")()
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return err
	}
	kind := "root"
	if comment.ParentID != nil {
		kind = "reply"
	}
	observability.CommentsCreated.WithLabelValues(kind).Inc()
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	defer observability.TrackQuery("get", "comments")()
	var comment models.Comment
	err := applyCommentDetails(r.db.WithContext(ctx)).
		Where("comments.id = ?", id).
		Take(&comment).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListByPost returns the post's full comment list oldest first, the order
// BuildCommentTree expects.
func (r *commentRepository) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	defer observability.TrackQuery("list_by_post", "comments")()
	var comments []*models.Comment
	err := applyCommentDetails(r.db.WithContext(ctx)).
		Where("comments.post_id = ?", postID).
		Order("comments.created_at ASC").
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) List(ctx context.Context, opts ListCommentsOptions) ([]*models.Comment, int64, error) {
	defer observability.TrackQuery("list", "comments")()

	filtered := r.db.WithContext(ctx).Model(&models.Comment{})
	if opts.PostID != nil {
		filtered = filtered.Where("comments.post_id = ?", *opts.PostID)
	}
	if opts.AuthorID != nil {
		filtered = filtered.Where("comments.author_id = ?", *opts.AuthorID)
	}

	var total int64
	if err := filtered.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := applyCommentDetails(r.db.WithContext(ctx))
	if opts.PostID != nil {
		query = query.Where("comments.post_id = ?", *opts.PostID)
	}
	if opts.AuthorID != nil {
		query = query.Where("comments.author_id = ?", *opts.AuthorID)
	}

	var comments []*models.Comment
	err := query.
		Order("comments.created_at DESC").
		Limit(opts.PerPage).
		Offset((opts.Page - 1) * opts.PerPage).
		Find(&comments).Error
	if err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

func (r *commentRepository) Recent(ctx context.Context, limit int) ([]*models.Comment, error) {
	defer observability.TrackQuery("recent", "comments")()
	var comments []*models.Comment
	err := applyCommentDetails(r.db.WithContext(ctx)).
		Order("comments.created_at DESC").
		Limit(limit).
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) CountByPost(ctx context.Context, postID uint) (int64, error) {
	defer observability.TrackQuery("count_by_post", "comments")()
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	return count, err
}

func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	defer observability.TrackQuery("update", "comments")()
	return r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("id = ?", comment.ID).
		Update("content", comment.Content).Error
}

// Delete removes the comment and its whole reply closure in one
// transaction. The closure walk handles arbitrarily deep threads.
func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	defer observability.TrackQuery("delete", "comments")()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		doomed, err := collectReplyClosure(tx, []uint{id})
		if err != nil {
			return err
		}
		return tx.Where("id IN ?", doomed).Delete(&models.Comment{}).Error
	})
}

// collectReplyClosure expands the given comment IDs with every descendant
// reply, level by level.
func collectReplyClosure(tx *gorm.DB, roots []uint) ([]uint, error) {
	seen := make(map[uint]bool, len(roots))
	all := make([]uint, 0, len(roots))
	for _, id := range roots {
		seen[id] = true
		all = append(all, id)
	}

	frontier := roots
	for len(frontier) > 0 {
		var fetched []uint
		if err := tx.Model(&models.Comment{}).
			Where("parent_id IN ?", frontier).
			Pluck("id", &fetched).Error; err != nil {
			return nil, err
		}
		var next []uint
		for _, id := range fetched {
			if !seen[id] {
				seen[id] = true
				all = append(all, id)
				next = append(next, id)
			}
		}
		frontier = next
	}
	return all, nil
}
