package repository

import (
	"context"

	"inkwell/internal/models"
	"inkwell/internal/observability"

	"gorm.io/gorm"
)

// CategoryRepository defines the interface for category data operations.
// Categories are seeded, not user-managed, so there is no delete.
type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id uint) (*models.Category, error)
	GetByName(ctx context.Context, name string) (*models.Category, error)
	List(ctx context.Context) ([]*models.Category, error)
	EnsureExists(ctx context.Context, name, description string) error
}

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *models.Category) error {
	defer observability.TrackQuery("create", "categories")()
	err := r.db.WithContext(ctx).Create(category).Error
	if err != nil && isUniqueViolation(err) {
		return models.NewConflictError("Category already exists")
	}
	return err
}

func (r *categoryRepository) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	defer observability.TrackQuery("get", "categories")()
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) GetByName(ctx context.Context, name string) (*models.Category, error) {
	defer observability.TrackQuery("get_by_name", "categories")()
	var category models.Category
	err := r.db.WithContext(ctx).
		Where("name = ?", name).
		Take(&category).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// List returns all categories alphabetically.
func (r *categoryRepository) List(ctx context.Context) ([]*models.Category, error) {
	defer observability.TrackQuery("list", "categories")()
	var categories []*models.Category
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&categories).Error
	return categories, err
}

// EnsureExists inserts the category only when the name is not taken, so
// seeding stays idempotent.
func (r *categoryRepository) EnsureExists(ctx context.Context, name, description string) error {
	defer observability.TrackQuery("ensure", "categories")()
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Category{}).
		Where("name = ?", name).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Create(&models.Category{Name: name, Description: description}).Error
}
