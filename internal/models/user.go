// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents a registered account. The password is stored only as a
// bcrypt hash. Admin privilege is an explicit role column; the seed step
// guarantees at least one admin row exists, and admins can never be deleted.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	IsAdmin      bool      `gorm:"not null;default:false" json:"is_admin"`
	Birthday     *string   `json:"birthday"`
	Bio          string    `json:"bio"`
	AvatarURL    string    `json:"avatar_url"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ProfileUpdate carries the optional profile fields for a partial update.
// Nil fields are left untouched.
type ProfileUpdate struct {
	Birthday  *string
	Bio       *string
	AvatarURL *string
}

// IsEmpty reports whether the update would touch no fields at all.
func (p ProfileUpdate) IsEmpty() bool {
	return p.Birthday == nil && p.Bio == nil && p.AvatarURL == nil
}
