// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"time"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/observability"

	"gorm.io/gorm"
)

// ListPostsOptions narrows and pages post listings.
type ListPostsOptions struct {
	CategoryID *uint
	AuthorID   *uint
	Page       int
	PerPage    int
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	List(ctx context.Context, opts ListPostsOptions) ([]*models.Post, int64, error)
	Latest(ctx context.Context, limit int) ([]*models.Post, error)
	Titles(ctx context.Context) ([]string, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// applyPostDetails resolves author and category names in the same query.
// Outer joins keep posts visible when the author row is gone; such posts
// show the placeholder author instead of disappearing.
func applyPostDetails(db *gorm.DB) *gorm.DB {
	return db.Model(&models.Post{}).
		Select("posts.*, "+
			"COALESCE(users.username, ?) AS author, "+
			"COALESCE(users.avatar_url, '') AS author_avatar, "+
			"COALESCE(categories.name, '') AS category_name", models.DeletedUserLabel).
		Joins("LEFT JOIN users ON users.id = posts.author_id").
		Joins("LEFT JOIN categories ON categories.id = posts.category_id")
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("create", "posts")()
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return err
	}
	observability.PostsCreated.Inc()
	cache.Invalidate(ctx, cache.SiteStatsKey)
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	defer observability.TrackQuery("get", "posts")()
	var post models.Post
	err := applyPostDetails(r.db.WithContext(ctx)).
		Where("posts.id = ?", id).
		Take(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, opts ListPostsOptions) ([]*models.Post, int64, error) {
	defer observability.TrackQuery("list", "posts")()

	filtered := r.db.WithContext(ctx).Model(&models.Post{})
	if opts.CategoryID != nil {
		filtered = filtered.Where("posts.category_id = ?", *opts.CategoryID)
	}
	if opts.AuthorID != nil {
		filtered = filtered.Where("posts.author_id = ?", *opts.AuthorID)
	}

	var total int64
	if err := filtered.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := applyPostDetails(r.db.WithContext(ctx))
	if opts.CategoryID != nil {
		query = query.Where("posts.category_id = ?", *opts.CategoryID)
	}
	if opts.AuthorID != nil {
		query = query.Where("posts.author_id = ?", *opts.AuthorID)
	}

	var posts []*models.Post
	err := query.
		Order("posts.created_at DESC").
		Limit(opts.PerPage).
		Offset((opts.Page - 1) * opts.PerPage).
		Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (r *postRepository) Latest(ctx context.Context, limit int) ([]*models.Post, error) {
	defer observability.TrackQuery("latest", "posts")()
	var posts []*models.Post
	err := applyPostDetails(r.db.WithContext(ctx)).
		Order("posts.created_at DESC").
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) Titles(ctx context.Context) ([]string, error) {
	defer observability.TrackQuery("titles", "posts")()
	var titles []string
	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Order("created_at DESC").
		Pluck("title", &titles).Error
	return titles, err
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("update", "posts")()
	post.UpdatedAt = time.Now()
	if err := r.db.WithContext(ctx).Save(post).Error; err != nil {
		return err
	}
	cache.Invalidate(ctx, cache.SiteStatsKey)
	return nil
}

// Delete removes the post and every comment on it in one transaction, so a
// failure midway leaves the thread intact.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	defer observability.TrackQuery("delete", "posts")()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, id).Error
	})
	if err != nil {
		return err
	}
	cache.Invalidate(ctx, cache.SiteStatsKey)
	return nil
}
