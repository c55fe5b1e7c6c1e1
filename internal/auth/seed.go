package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
)

// seedPasswordBytes is the number of random bytes for a seeded admin password.
const seedPasswordBytes = 16

// SeedAdminPasswords gives every admin without a password hash a freshly
// generated password. The password is logged once and must be replaced with
// a password_hash in config before the next restart.
// Returns the generated passwords keyed by username.
func SeedAdminPasswords(users []*User, logger *slog.Logger) (map[string]string, error) {
	generated := make(map[string]string)
	for _, u := range users {
		if u.PasswordHash != "" {
			continue
		}
		if !u.IsAdmin() {
			logger.Info("user has no password hash, API login disabled", "username", u.Username)
			continue
		}

		passwordBytes := make([]byte, seedPasswordBytes)
		if _, err := rand.Read(passwordBytes); err != nil {
			return nil, fmt.Errorf("generating seed password: %w", err)
		}
		password := hex.EncodeToString(passwordBytes)

		hash, err := HashPassword(password)
		if err != nil {
			return nil, fmt.Errorf("hashing seed password: %w", err)
		}
		u.PasswordHash = hash
		generated[u.Username] = password

		logger.Warn("seed admin password generated",
			"username", u.Username,
			"password", password,
			"action_required", "set users[].password_hash in config",
		)
	}
	return generated, nil
}
