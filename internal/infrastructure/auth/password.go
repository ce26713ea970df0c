package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt ignores input past this many bytes, so longer passwords are rejected.
const MaxPasswordBytes = 72

type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash returns a bcrypt record carrying its own random salt.
func (h *BcryptHasher) Hash(password string) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", fmt.Errorf("password exceeds %d bytes", MaxPasswordBytes)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Verify never errors: malformed records simply do not match.
func (h *BcryptHasher) Verify(password, record string) bool {
	if record == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(record), []byte(password)) == nil
}
