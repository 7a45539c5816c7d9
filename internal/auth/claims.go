package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// defaultTokenTTLHours is used when the configured TTL is missing or invalid.
const defaultTokenTTLHours = 24

// SessionClaims extends JWT registered claims with the user's role.
type SessionClaims struct {
	jwt.RegisteredClaims
	Role Role `json:"role"`
}

// IssueToken creates a signed session token for a user. The token embeds
// the user id (subject), role, issued-at, and expiry.
func IssueToken(user *User, secret string, ttlHours int) (string, error) {
	if ttlHours <= 0 {
		ttlHours = defaultTokenTTLHours
	}

	now := time.Now()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(ttlHours) * time.Hour)),
			ID:        uuid.NewString(),
		},
		Role: user.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses a session token and returns the authenticated
// principal. Malformed, expired, and tampered tokens all fail with
// ErrTokenInvalid.
func ValidateToken(tokenString, secret string) (Principal, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return Principal{}, ErrTokenInvalid
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: bad subject", ErrTokenInvalid)
	}

	if !IsValidRole(claims.Role) {
		return Principal{}, fmt.Errorf("%w: bad role", ErrTokenInvalid)
	}

	return Principal{UserID: userID, Role: claims.Role}, nil
}
