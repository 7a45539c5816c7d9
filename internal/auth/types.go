package auth

import (
	"errors"
	"regexp"
	"time"
)

// usernamePattern defines the valid username format:
// alphanumeric plus dots, hyphens, underscores, 1-50 characters.
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,50}$`)

// IsValidUsername checks if a username meets format requirements.
func IsValidUsername(username string) bool {
	return usernamePattern.MatchString(username)
}

// Role represents an authorisation tier.
type Role string

const (
	// RoleGM is the game master: full read/write over every scene and
	// layer, user registration, scene activation.
	RoleGM Role = "gm"

	// RolePlayer sees only the active scene and only player-type layers
	// in full detail.
	RolePlayer Role = "player"
)

// IsValidRole returns true if the role is one of the two known roles.
func IsValidRole(r Role) bool {
	return r == RoleGM || r == RolePlayer
}

// User represents an account, either GM or player.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // never serialised
	Role         Role      `json:"role"`
	RegisteredBy *int64    `json:"registered_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Principal is the authenticated identity attached to a request or
// realtime connection after token validation.
type Principal struct {
	UserID int64
	Role   Role
}

// IsGM reports whether the principal holds the game master role.
func (p Principal) IsGM() bool {
	return p.Role == RoleGM
}

// Sentinel errors for auth operations.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameExists     = errors.New("username already exists")
	ErrInvalidUsername    = errors.New("invalid username")
	ErrInvalidRole        = errors.New("invalid role")
	ErrTokenInvalid       = errors.New("invalid token")
)
