package services

import (
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// PasswordLength is the length of generated plaintext passwords.
const PasswordLength = 10

// PasswordHasher hashes and verifies plaintext passwords.
type PasswordHasher interface {
	// Hash returns the digest of plain. An empty plain yields an empty digest.
	Hash(plain string) (string, error)
	// Verify reports whether plain matches digest. A malformed digest never matches.
	Verify(plain, digest string) bool
}

// BcryptHasher is a bcrypt implementation of PasswordHasher.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a BcryptHasher. Out of range costs fall back to bcrypt.DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(plain string) (string, error) {
	if plain == "" {
		return "", nil
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

func (h *BcryptHasher) Verify(plain, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}

// GeneratePassword returns a random plaintext password of PasswordLength
// characters drawn from lowercase hex digits and '-'.
func GeneratePassword() string {
	return uuid.NewString()[:PasswordLength]
}
