package server

import (
	"strings"

	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetComments handles GET /api/posts/:id/comments, returning the post's
// comment thread as a tree of root comments with nested replies.
func (s *Server) GetComments(c *fiber.Ctx) error {
	ctx := c.Context()
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return respondRepoError(c, err, "Post not found")
	}

	flat, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return respondRepoError(c, err, "Comments not found")
	}
	tree := models.BuildCommentTree(flat)

	return c.JSON(fiber.Map{
		"comments": tree,
		"total":    len(flat),
	})
}

// CreateComment handles POST /api/posts/:id/comments. A parent_id, when
// given, must name an existing comment on the same post.
func (s *Server) CreateComment(c *fiber.Ctx) error {
	ctx := c.Context()
	userID, _ := currentUserID(c)
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Content  string `json:"content"`
		ParentID *uint  `json:"parent_id"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if msg, ok := validateCommentContent(req.Content); !ok {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(msg))
	}

	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return respondRepoError(c, err, "Post not found")
	}

	if req.ParentID != nil {
		parent, parentErr := s.comments.GetByID(ctx, *req.ParentID)
		if parentErr != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Parent comment does not exist"))
		}
		if parent.PostID != postID {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Parent comment belongs to a different post"))
		}
	}

	comment := &models.Comment{
		PostID:   postID,
		AuthorID: userID,
		Content:  strings.TrimSpace(req.Content),
		ParentID: req.ParentID,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return respondRepoError(c, err, "Comment not found")
	}

	comment, err = s.comments.GetByID(ctx, comment.ID)
	if err != nil {
		return respondRepoError(c, err, "Comment not found")
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// UpdateComment handles PUT /api/comments/:id
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	ctx := c.Context()
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if msg, ok := validateCommentContent(req.Content); !ok {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(msg))
	}

	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return respondRepoError(c, err, "Comment not found")
	}
	if !canModify(c, comment.AuthorID) {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("You can only edit your own comments"))
	}

	comment.Content = strings.TrimSpace(req.Content)
	if err := s.comments.Update(ctx, comment); err != nil {
		return respondRepoError(c, err, "Comment not found")
	}

	comment, err = s.comments.GetByID(ctx, commentID)
	if err != nil {
		return respondRepoError(c, err, "Comment not found")
	}
	return c.JSON(comment)
}

// DeleteComment handles DELETE /api/comments/:id. Deleting a comment removes
// every reply below it.
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	ctx := c.Context()
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return respondRepoError(c, err, "Comment not found")
	}
	if !canModify(c, comment.AuthorID) {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("You can only delete your own comments"))
	}

	if err := s.comments.Delete(ctx, commentID); err != nil {
		return respondRepoError(c, err, "Comment not found")
	}
	return c.JSON(fiber.Map{"message": "Comment deleted"})
}

func validateCommentContent(content string) (string, bool) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "Comment content is required", false
	}
	if len([]rune(trimmed)) > maxCommentRunes {
		return "Comment content must be 1000 characters or fewer", false
	}
	return "", true
}
