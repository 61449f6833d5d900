package server

import (
	"github.com/gofiber/fiber/v2"
)

const latestPostsCount = 5

// GetSiteStats handles GET /api/stats
func (s *Server) GetSiteStats(c *fiber.Ctx) error {
	stats, err := s.stats.SiteStats(c.Context(), latestPostsCount)
	if err != nil {
		return respondRepoError(c, err, "Stats not found")
	}
	s.decorateListing(stats.LatestPosts, listingPreviewRunes)
	return c.JSON(stats)
}
