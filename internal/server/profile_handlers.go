package server

import (
	"io"
	"strings"
	"time"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
	"inkwell/internal/storage"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/profile
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	userID, _ := currentUserID(c)
	user, err := s.users.GetByID(c.Context(), userID)
	if err != nil {
		return respondRepoError(c, err, "User not found")
	}
	return c.JSON(user)
}

// UpdateMyProfile handles PUT /api/profile. Only the fields present in the
// body are touched; a missing field keeps its stored value.
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req struct {
		Birthday *string `json:"birthday"`
		Bio      *string `json:"bio"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := validateBirthday(req.Birthday); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}
	if err := validateBio(req.Bio); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	return s.saveProfile(c, models.ProfileUpdate{
		Birthday: req.Birthday,
		Bio:      req.Bio,
	})
}

// UpdateBirthday handles PUT /api/profile/birthday, a single-field variant
// of UpdateMyProfile.
func (s *Server) UpdateBirthday(c *fiber.Ctx) error {
	var req struct {
		Birthday string `json:"birthday"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := validateBirthday(&req.Birthday); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}
	return s.saveProfile(c, models.ProfileUpdate{Birthday: &req.Birthday})
}

// UpdateBio handles PUT /api/profile/bio, a single-field variant of
// UpdateMyProfile.
func (s *Server) UpdateBio(c *fiber.Ctx) error {
	var req struct {
		Bio string `json:"bio"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := validateBio(&req.Bio); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}
	return s.saveProfile(c, models.ProfileUpdate{Bio: &req.Bio})
}

func validateBirthday(birthday *string) *models.AppError {
	if birthday == nil || *birthday == "" {
		return nil
	}
	if _, err := time.Parse("2006-01-02", *birthday); err != nil {
		return models.NewValidationError("Birthday must be YYYY-MM-DD")
	}
	return nil
}

func validateBio(bio *string) *models.AppError {
	if bio != nil && len([]rune(*bio)) > maxBioRunes {
		return models.NewValidationError("Bio must be 500 characters or fewer")
	}
	return nil
}

// saveProfile applies the update for the logged-in user, drops the cached
// public profile, and responds with the fresh user row.
func (s *Server) saveProfile(c *fiber.Ctx, update models.ProfileUpdate) error {
	ctx := c.Context()
	userID, _ := currentUserID(c)

	if err := s.users.UpdateProfile(ctx, userID, update); err != nil {
		return respondRepoError(c, err, "User not found")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return respondRepoError(c, err, "User not found")
	}
	cache.InvalidateProfile(ctx, user.Username)

	return c.JSON(user)
}

// UploadAvatar handles POST /api/profile/avatar with a multipart "file"
// field. The stored file is served under /static/uploads.
func (s *Server) UploadAvatar(c *fiber.Ctx) error {
	ctx := c.Context()
	userID, _ := currentUserID(c)

	header, err := c.FormFile("file")
	if err != nil {
		observability.AvatarUploads.WithLabelValues("rejected").Inc()
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("No file uploaded"))
	}

	file, err := header.Open()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	avatarURL, err := s.avatars.Save(storage.UploadInput{
		Filename: header.Filename,
		Content:  content,
	})
	if err != nil {
		observability.AvatarUploads.WithLabelValues("rejected").Inc()
		return respondRepoError(c, err, "File not found")
	}

	update := models.ProfileUpdate{AvatarURL: &avatarURL}
	if err := s.users.UpdateProfile(ctx, userID, update); err != nil {
		return respondRepoError(c, err, "User not found")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return respondRepoError(c, err, "User not found")
	}
	cache.InvalidateProfile(ctx, user.Username)
	observability.AvatarUploads.WithLabelValues("accepted").Inc()

	return c.JSON(fiber.Map{
		"message":    "Avatar updated",
		"avatar_url": avatarURL,
	})
}

// publicProfile is the cached payload of GetPublicProfile.
type publicProfile struct {
	User       *models.User `json:"user"`
	TotalPosts int64        `json:"total_posts"`
}

// GetPublicProfile handles GET /api/users/:username
func (s *Server) GetPublicProfile(c *fiber.Ctx) error {
	ctx := c.Context()
	username := strings.TrimSpace(c.Params("username"))

	key := cache.UserProfileKey(username)
	var cached publicProfile
	if cache.GetJSON(ctx, key, &cached) {
		return c.JSON(cached)
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return respondRepoError(c, err, "User not found")
	}

	_, total, err := s.posts.List(ctx, repository.ListPostsOptions{
		AuthorID: &user.ID,
		Page:     1,
		PerPage:  1,
	})
	if err != nil {
		return respondRepoError(c, err, "User not found")
	}

	profile := publicProfile{User: user, TotalPosts: total}
	cache.SetJSON(ctx, key, profile, cache.UserProfileTTL)
	return c.JSON(profile)
}
