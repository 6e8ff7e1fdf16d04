package model

import (
	"fmt"
	"time"
)

// Roles understood by the role middleware.
const (
	RoleCustomer = "CUSTOMER"
	RoleAdmin    = "ADMIN"
)

// Theme is the per-user display preference.  It is part of the explicit
// session state and only changes through the theme toggle endpoint.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme converts a raw string into a Theme.
func ParseTheme(s string) (Theme, error) {
	switch t := Theme(s); t {
	case ThemeLight, ThemeDark:
		return t, nil
	}
	return "", fmt.Errorf("unknown theme %q", s)
}

// User represents an account known to the storefront.  Users are kept by
// the repository layer; handlers expose separate response types.
//
// Fields:
//
//	ID           – numeric identifier, used as the JWT subject.
//	Name         – display name.
//	Email        – unique, lower-cased address.
//	PasswordHash – bcrypt hash.
//	Role         – CUSTOMER or ADMIN.
//	Theme        – light or dark.
//	CreatedAt    – registration time.
type User struct {
	ID           uint64
	Name         string
	Email        string
	PasswordHash string
	Role         string
	Theme        Theme
	CreatedAt    time.Time
}

// RefreshToken models a stored refresh token.  Only the SHA-256 hash of
// the raw token is kept.
type RefreshToken struct {
	UserID    uint64
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
}
