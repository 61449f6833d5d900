// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"context"
	"errors"
	"fmt"

	"inkwell/internal/models"
	"inkwell/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultCategories are created on first start. Names are stable; posts
// reference them by ID.
var DefaultCategories = []struct {
	Name        string
	Description string
}{
	{"Technology", "Programming, tools and everything technical"},
	{"Life", "Daily life, thoughts and experiences"},
	{"Study", "Notes, learning logs and reading summaries"},
	{"Essays", "Free-form writing and opinion pieces"},
}

// EnsureBaseData creates the admin account and the default categories if
// they are missing. It is idempotent and runs on every startup.
func EnsureBaseData(ctx context.Context, db *gorm.DB, adminUsername, adminPassword string) error {
	users := repository.NewUserRepository(db)
	categories := repository.NewCategoryRepository(db)

	if _, err := users.GetByUsername(ctx, adminUsername); err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("checking admin account: %w", err)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hashing admin password: %w", err)
		}
		admin := &models.User{
			Username:     adminUsername,
			PasswordHash: string(hash),
			IsAdmin:      true,
		}
		if err := users.Create(ctx, admin); err != nil {
			return fmt.Errorf("creating admin account: %w", err)
		}
	}

	for _, c := range DefaultCategories {
		if err := categories.EnsureExists(ctx, c.Name, c.Description); err != nil {
			return fmt.Errorf("ensuring category %q: %w", c.Name, err)
		}
	}
	return nil
}
