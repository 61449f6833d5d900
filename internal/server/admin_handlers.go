package server

import (
	"errors"

	"inkwell/internal/models"
	"inkwell/internal/repository"

	"github.com/gofiber/fiber/v2"
)

// AdminListUsers handles GET /api/admin/users
func (s *Server) AdminListUsers(c *fiber.Ctx) error {
	page := parsePagination(c, defaultAdminPerPage)

	users, total, err := s.users.List(c.Context(), page.Page, page.PerPage)
	if err != nil {
		return respondRepoError(c, err, "Users not found")
	}

	return c.JSON(fiber.Map{
		"users":      users,
		"pagination": models.NewPagination(page.Page, page.PerPage, total),
	})
}

// AdminDeleteUser handles DELETE /api/admin/users/:id. Deleting a user
// removes their posts and the full comment fallout; admin accounts are
// refused so the site can never lose its last admin.
func (s *Server) AdminDeleteUser(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.users.Delete(c.Context(), userID); err != nil {
		if errors.Is(err, repository.ErrAdminUndeletable) {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Admin accounts cannot be deleted"))
		}
		return respondRepoError(c, err, "User not found")
	}
	return c.JSON(fiber.Map{"message": "User deleted"})
}

// AdminListPosts handles GET /api/admin/posts
func (s *Server) AdminListPosts(c *fiber.Ctx) error {
	page := parsePagination(c, defaultAdminPerPage)

	posts, total, err := s.posts.List(c.Context(), repository.ListPostsOptions{
		AuthorID: optionalUintQuery(c, "author_id"),
		Page:     page.Page,
		PerPage:  page.PerPage,
	})
	if err != nil {
		return respondRepoError(c, err, "Posts not found")
	}
	s.decorateListing(posts, compactPreviewRunes)

	return c.JSON(models.PostPage{
		Posts:      posts,
		Pagination: models.NewPagination(page.Page, page.PerPage, total),
	})
}

// AdminListComments handles GET /api/admin/comments with optional post_id
// and author_id filters, newest first.
func (s *Server) AdminListComments(c *fiber.Ctx) error {
	page := parsePagination(c, defaultCommentsPerPage)

	comments, total, err := s.comments.List(c.Context(), repository.ListCommentsOptions{
		PostID:   optionalUintQuery(c, "post_id"),
		AuthorID: optionalUintQuery(c, "author_id"),
		Page:     page.Page,
		PerPage:  page.PerPage,
	})
	if err != nil {
		return respondRepoError(c, err, "Comments not found")
	}

	return c.JSON(models.CommentPage{
		Comments:   comments,
		Total:      total,
		Page:       page.Page,
		PerPage:    page.PerPage,
		TotalPages: models.TotalPages(total, page.PerPage),
	})
}

// AdminRecentComments handles GET /api/admin/comments/recent?limit=
func (s *Server) AdminRecentComments(c *fiber.Ctx) error {
	limit := clampLimit(c.QueryInt("limit", 10))

	comments, err := s.comments.Recent(c.Context(), limit)
	if err != nil {
		return respondRepoError(c, err, "Comments not found")
	}
	return c.JSON(fiber.Map{"comments": comments})
}

// AdminDeleteComment handles DELETE /api/admin/comments/:id. Unlike the
// owner route this skips the ownership check; admin status was already
// enforced by the route group.
func (s *Server) AdminDeleteComment(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if _, err := s.comments.GetByID(c.Context(), commentID); err != nil {
		return respondRepoError(c, err, "Comment not found")
	}
	if err := s.comments.Delete(c.Context(), commentID); err != nil {
		return respondRepoError(c, err, "Comment not found")
	}
	return c.JSON(fiber.Map{"message": "Comment deleted"})
}
