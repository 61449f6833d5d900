// Package validation holds input validation for account credentials.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,32}$`)

// Route segments a username must never shadow.
var reservedUsernames = map[string]struct{}{
	"admin":      {},
	"api":        {},
	"auth":       {},
	"posts":      {},
	"comments":   {},
	"categories": {},
	"search":     {},
	"profile":    {},
	"users":      {},
	"stats":      {},
	"static":     {},
	"metrics":    {},
	"health":     {},
	"login":      {},
	"register":   {},
}

// ValidateUsername validates username format and reserved names. The seeded
// admin account is created before this check applies, so "admin" stays
// reserved for it alone.
func ValidateUsername(username string) error {
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username must be 3-32 characters and contain only letters, numbers, hyphens, and underscores")
	}

	if strings.HasPrefix(username, "-") || strings.HasSuffix(username, "-") ||
		strings.HasPrefix(username, "_") || strings.HasSuffix(username, "_") {
		return fmt.Errorf("username cannot start or end with a hyphen or underscore")
	}

	if _, exists := reservedUsernames[strings.ToLower(username)]; exists {
		return fmt.Errorf("username is reserved")
	}

	return nil
}

// ValidatePassword enforces the minimum password length. Composition rules
// are deliberately not enforced; length is the only requirement.
func ValidatePassword(password string) error {
	if len(password) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}
	if len(password) > 128 {
		return fmt.Errorf("password must be at most 128 characters")
	}
	return nil
}
