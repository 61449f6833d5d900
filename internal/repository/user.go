package repository

import (
	"context"
	"errors"
	"strings"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/observability"

	"gorm.io/gorm"
)

// ErrAdminUndeletable is returned when a delete targets an admin account.
var ErrAdminUndeletable = errors.New("admin accounts cannot be deleted")

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context, page, perPage int) ([]*models.User, int64, error)
	UpdateProfile(ctx context.Context, id uint, update models.ProfileUpdate) error
	Delete(ctx context.Context, id uint) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	defer observability.TrackQuery("create", "users")()
	err := r.db.WithContext(ctx).Create(user).Error
	if err != nil && isUniqueViolation(err) {
		return models.NewConflictError("Username already taken")
	}
	return err
}

// isUniqueViolation matches the duplicate-key error text of both supported
// dialects. SQLite reports "UNIQUE constraint failed", PostgreSQL
// "duplicate key value violates unique constraint".
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	defer observability.TrackQuery("get", "users")()
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	defer observability.TrackQuery("get_by_username", "users")()
	var user models.User
	err := r.db.WithContext(ctx).
		Where("username = ?", username).
		Take(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, page, perPage int) ([]*models.User, int64, error) {
	defer observability.TrackQuery("list", "users")()

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []*models.User
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(perPage).
		Offset((page - 1) * perPage).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// UpdateProfile applies only the fields present in the update; absent fields
// keep their stored values.
func (r *userRepository) UpdateProfile(ctx context.Context, id uint, update models.ProfileUpdate) error {
	defer observability.TrackQuery("update_profile", "users")()
	if update.IsEmpty() {
		return nil
	}

	fields := map[string]interface{}{}
	if update.Birthday != nil {
		fields["birthday"] = *update.Birthday
	}
	if update.Bio != nil {
		fields["bio"] = *update.Bio
	}
	if update.AvatarURL != nil {
		fields["avatar_url"] = *update.AvatarURL
	}

	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the user together with their posts and the comment closure
// touching them: comments the user wrote, comments on the user's posts and
// all replies below either. Admin accounts are refused outright. Everything
// runs in one transaction.
func (r *userRepository) Delete(ctx context.Context, id uint) error {
	defer observability.TrackQuery("delete", "users")()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, id).Error; err != nil {
			return err
		}
		if user.IsAdmin {
			return ErrAdminUndeletable
		}

		var postIDs []uint
		if err := tx.Model(&models.Post{}).
			Where("author_id = ?", id).
			Pluck("id", &postIDs).Error; err != nil {
			return err
		}

		var commentIDs []uint
		query := tx.Model(&models.Comment{}).Where("author_id = ?", id)
		if len(postIDs) > 0 {
			query = tx.Model(&models.Comment{}).
				Where("author_id = ? OR post_id IN ?", id, postIDs)
		}
		if err := query.Pluck("id", &commentIDs).Error; err != nil {
			return err
		}

		if len(commentIDs) > 0 {
			doomed, err := collectReplyClosure(tx, commentIDs)
			if err != nil {
				return err
			}
			if err := tx.Where("id IN ?", doomed).Delete(&models.Comment{}).Error; err != nil {
				return err
			}
		}

		if len(postIDs) > 0 {
			if err := tx.Where("id IN ?", postIDs).Delete(&models.Post{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Delete(&models.User{}, id).Error; err != nil {
			return err
		}

		cache.InvalidateProfile(ctx, user.Username)
		return nil
	})
	if err != nil {
		return err
	}
	cache.Invalidate(ctx, cache.SiteStatsKey)
	return nil
}
