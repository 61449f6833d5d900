package server

import (
	"strings"

	"inkwell/internal/models"
	"inkwell/internal/repository"

	"github.com/gofiber/fiber/v2"
)

// GetPosts handles GET /api/posts?page=&per_page=&category_id=
func (s *Server) GetPosts(c *fiber.Ctx) error {
	ctx := c.Context()
	page := parsePagination(c, defaultPostsPerPage)

	opts := repository.ListPostsOptions{
		CategoryID: optionalUintQuery(c, "category_id"),
		Page:       page.Page,
		PerPage:    page.PerPage,
	}

	posts, total, err := s.posts.List(ctx, opts)
	if err != nil {
		return respondRepoError(c, err, "Posts not found")
	}
	s.decorateListing(posts, listingPreviewRunes)

	return c.JSON(models.PostPage{
		Posts:      posts,
		Pagination: models.NewPagination(page.Page, page.PerPage, total),
	})
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return respondRepoError(c, err, "Post not found")
	}
	s.decorateDetail(post)

	commentCount, err := s.comments.CountByPost(ctx, id)
	if err != nil {
		return respondRepoError(c, err, "Post not found")
	}

	return c.JSON(fiber.Map{
		"post":          post,
		"comment_count": commentCount,
	})
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	ctx := c.Context()
	userID, _ := currentUserID(c)

	var req struct {
		Title      string `json:"title"`
		Content    string `json:"content"`
		CategoryID *uint  `json:"category_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || strings.TrimSpace(req.Content) == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Title and content are required"))
	}
	if req.CategoryID != nil {
		if _, err := s.categories.GetByID(ctx, *req.CategoryID); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Category does not exist"))
		}
	}

	post := &models.Post{
		Title:      req.Title,
		Content:    req.Content,
		AuthorID:   userID,
		CategoryID: req.CategoryID,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return respondRepoError(c, err, "Post not found")
	}

	// Reload for the joined author and category fields.
	post, err := s.posts.GetByID(ctx, post.ID)
	if err != nil {
		return respondRepoError(c, err, "Post not found")
	}
	s.decorateDetail(post)

	return c.Status(fiber.StatusCreated).JSON(post)
}

// UpdatePost handles PUT /api/posts/:id. The update is a full overwrite:
// title and content are required, category_id replaces the stored value
// (null clears it).
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	ctx := c.Context()
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Title      string `json:"title"`
		Content    string `json:"content"`
		CategoryID *uint  `json:"category_id"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || strings.TrimSpace(req.Content) == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Title and content are required"))
	}
	if req.CategoryID != nil {
		if _, catErr := s.categories.GetByID(ctx, *req.CategoryID); catErr != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Category does not exist"))
		}
	}

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return respondRepoError(c, err, "Post not found")
	}
	if !canModify(c, post.AuthorID) {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("You can only edit your own posts"))
	}

	post.Title = req.Title
	post.Content = req.Content
	post.CategoryID = req.CategoryID
	if err := s.posts.Update(ctx, post); err != nil {
		return respondRepoError(c, err, "Post not found")
	}

	post, err = s.posts.GetByID(ctx, postID)
	if err != nil {
		return respondRepoError(c, err, "Post not found")
	}
	s.decorateDetail(post)

	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id. Deleting a post removes all of
// its comments with it.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	ctx := c.Context()
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return respondRepoError(c, err, "Post not found")
	}
	if !canModify(c, post.AuthorID) {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("You can only delete your own posts"))
	}

	if err := s.posts.Delete(ctx, postID); err != nil {
		return respondRepoError(c, err, "Post not found")
	}
	return c.JSON(fiber.Map{"message": "Post deleted"})
}

// GetMyPosts handles GET /api/my-posts
func (s *Server) GetMyPosts(c *fiber.Ctx) error {
	ctx := c.Context()
	userID, _ := currentUserID(c)
	page := parsePagination(c, defaultPostsPerPage)

	posts, total, err := s.posts.List(ctx, repository.ListPostsOptions{
		AuthorID: &userID,
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
