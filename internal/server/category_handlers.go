package server

import (
	"inkwell/internal/models"
	"inkwell/internal/repository"

	"github.com/gofiber/fiber/v2"
)

// GetCategories handles GET /api/categories
func (s *Server) GetCategories(c *fiber.Ctx) error {
	categories, err := s.categories.List(c.Context())
	if err != nil {
		return respondRepoError(c, err, "Categories not found")
	}
	return c.JSON(fiber.Map{"categories": categories})
}

// GetCategoryPosts handles GET /api/categories/:id/posts
func (s *Server) GetCategoryPosts(c *fiber.Ctx) error {
	ctx := c.Context()
	categoryID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	category, err := s.categories.GetByID(ctx, categoryID)
	if err != nil {
		return respondRepoError(c, err, "Category not found")
	}

	page := parsePagination(c, defaultPostsPerPage)
	posts, total, err := s.posts.List(ctx, repository.ListPostsOptions{
		CategoryID: &categoryID,
		Page:       page.Page,
		PerPage:    page.PerPage,
	})
	if err != nil {
		return respondRepoError(c, err, "Posts not found")
	}
	s.decorateListing(posts, listingPreviewRunes)

	return c.JSON(fiber.Map{
		"category":   category,
		"posts":      posts,
		"pagination": models.NewPagination(page.Page, page.PerPage, total),
	})
}
