package security

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordLength is the longest secret bcrypt will hash without truncation.
const MaxPasswordLength = 72

// ErrMismatch is returned when a password does not verify against the stored value.
var ErrMismatch = errors.New("password mismatch")

// PasswordHasher hashes and verifies user passwords.
type PasswordHasher struct {
	cost        int
	allowLegacy bool
}

// NewPasswordHasher creates a hasher. A cost outside bcrypt's range falls back to bcrypt.DefaultCost.
// With allowLegacy set, stored values that are not bcrypt hashes are compared as plaintext.
func NewPasswordHasher(cost int, allowLegacy bool) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost, allowLegacy: allowLegacy}
}

// Hash returns the bcrypt hash of password.
func (h *PasswordHasher) Hash(password string) (string, error) {
	if len(password) > MaxPasswordLength {
		return "", fmt.Errorf("password longer than %d bytes", MaxPasswordLength)
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(b), nil
}

// Verify checks password against stored. needsRehash reports a successful match
// against a legacy plaintext value that should be replaced by a hash.
func (h *PasswordHasher) Verify(stored, password string) (needsRehash bool, err error) {
	if IsHash(stored) {
		if err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)); err != nil {
			return false, ErrMismatch
		}
		return false, nil
	}

	if !h.allowLegacy || stored == "" {
		return false, ErrMismatch
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(password)) != 1 {
		return false, ErrMismatch
	}
	return true, nil
}

// IsHash reports whether s looks like a bcrypt hash.
func IsHash(s string) bool {
	if len(s) != 60 {
		return false
	}
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}
