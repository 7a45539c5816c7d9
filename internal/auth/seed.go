package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
)

// seedPasswordBytes is the number of random bytes for a generated GM password.
const seedPasswordBytes = 16

// SeedGM creates the initial game master account on first boot if no users
// exist. When password is empty a random one is generated and logged once;
// it must be changed immediately. Returns the password used, or "" if
// seeding was skipped.
func SeedGM(ctx context.Context, users UserRepository, username, password string, logger *slog.Logger) (string, error) {
	count, err := users.Count(ctx)
	if err != nil {
		return "", fmt.Errorf("checking user count: %w", err)
	}
	if count > 0 {
		logger.Info("users exist, skipping GM seed")
		return "", nil
	}

	generated := password == ""
	if generated {
		b := make([]byte, seedPasswordBytes)
		if _, err := rand.Read(b); err != nil {
			return "", fmt.Errorf("generating seed password: %w", err)
		}
		password = hex.EncodeToString(b)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("hashing seed password: %w", err)
	}

	gm := &User{
		Username:     username,
		PasswordHash: hash,
		Role:         RoleGM,
	}
	if err := users.Create(ctx, gm); err != nil {
		return "", fmt.Errorf("creating seed GM: %w", err)
	}

	if generated {
		logger.Warn("seed GM account created",
			"username", username,
			"password", password,
			"action_required", "change this password immediately",
		)
	} else {
		logger.Info("seed GM account created", "username", username)
	}

	return password, nil
}
