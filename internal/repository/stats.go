package repository

import (
	"context"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/observability"

	"gorm.io/gorm"
)

// StatsRepository aggregates the site-wide counters.
type StatsRepository interface {
	SiteStats(ctx context.Context, latestCount int) (*models.SiteStats, error)
}

type statsRepository struct {
	db    *gorm.DB
	posts PostRepository
}

// NewStatsRepository creates a new stats repository.
func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &statsRepository{db: db, posts: NewPostRepository(db)}
}

// SiteStats counts every table and attaches the newest posts. The result is
// cached for a minute; every post and user mutation invalidates it.
func (r *statsRepository) SiteStats(ctx context.Context, latestCount int) (*models.SiteStats, error) {
	var cached models.SiteStats
	if cache.GetJSON(ctx, cache.SiteStatsKey, &cached) {
		return &cached, nil
	}

	defer observability.TrackQuery("site_stats", "posts")()

	stats := &models.SiteStats{}
	counts := []struct {
		model interface{}
		dest  *int64
	}{
		{&models.Post{}, &stats.TotalPosts},
		{&models.User{}, &stats.TotalUsers},
		{&models.Category{}, &stats.TotalCategories},
		{&models.Comment{}, &stats.TotalComments},
	}
	for _, c := range counts {
		if err := r.db.WithContext(ctx).Model(c.model).Count(c.dest).Error; err != nil {
			return nil, err
		}
	}

	latest, err := r.posts.Latest(ctx, latestCount)
	if err != nil {
		return nil, err
	}
	stats.LatestPosts = latest

	cache.SetJSON(ctx, cache.SiteStatsKey, stats, cache.SiteStatsTTL)
	return stats, nil
}
