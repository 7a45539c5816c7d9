package auth

import (
	"context"
	"fmt"
)

// Service ties together password hashing, token issuance, and the user
// repository. It is the single entry point the API layer uses for
// registration and login.
type Service struct {
	users    UserRepository
	secret   string
	ttlHours int
}

// NewService creates an auth service. ttlHours is the session token
// lifetime; zero or negative falls back to 24 hours.
func NewService(users UserRepository, secret string, ttlHours int) *Service {
	if ttlHours <= 0 {
		ttlHours = defaultTokenTTLHours
	}
	return &Service{users: users, secret: secret, ttlHours: ttlHours}
}

// Register creates a new account. Role defaults to player when empty.
// Fails with ErrUsernameExists if the name is taken, ErrInvalidUsername or
// ErrInvalidRole on malformed input.
func (s *Service) Register(ctx context.Context, username, password string, role Role, registeredBy *int64) (*User, error) {
	if !IsValidUsername(username) {
		return nil, ErrInvalidUsername
	}
	if role == "" {
		role = RolePlayer
	}
	if !IsValidRole(role) {
		return nil, ErrInvalidRole
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		RegisteredBy: registeredBy,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate verifies a username/password pair and issues a session
// token. Any mismatch, including an unknown username, fails with
// ErrInvalidCredentials so callers cannot probe for account existence.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, string, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}

	ok, err := VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return nil, "", ErrInvalidCredentials
	}

	token, err := IssueToken(user, s.secret, s.ttlHours)
	if err != nil {
		return nil, "", fmt.Errorf("issuing token: %w", err)
	}
	return user, token, nil
}

// Validate checks a session token and returns the principal it carries.
func (s *Service) Validate(token string) (Principal, error) {
	return ValidateToken(token, s.secret)
}

// GetUser fetches an account by id.
func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	return s.users.GetByID(ctx, id)
}
