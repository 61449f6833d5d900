package models

import "time"

// Category is a fixed post classification. Categories are created by the
// seed step only; no API operation creates or deletes them.
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;not null" json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}
