package services

import (
	"context"
	"fmt"

	"gym/internal/models"
)

// UsernameChecker reports whether a username is already held by any user.
type UsernameChecker interface {
	UsernameExists(ctx context.Context, username string) (bool, error)
}

// CredentialIssuer assigns usernames and initial passwords to new users.
type CredentialIssuer struct {
	hasher      PasswordHasher
	newPassword func() string
}

// NewCredentialIssuer creates a CredentialIssuer that hashes with hasher and
// draws plaintext passwords from GeneratePassword.
func NewCredentialIssuer(hasher PasswordHasher) *CredentialIssuer {
	return &CredentialIssuer{
		hasher:      hasher,
		newPassword: GeneratePassword,
	}
}

// UniqueUsername returns the first of base, base1, base2, ... that users does
// not hold. Each candidate is checked exactly once, in order.
func (i *CredentialIssuer) UniqueUsername(ctx context.Context, users UsernameChecker, base string) (string, error) {
	for attempt := 0; ; attempt++ {
		candidate := usernameCandidate(base, attempt)
		exists, err := users.UsernameExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check username %s: %w", candidate, err)
		}
		if !exists {
			return candidate, nil
		}
	}
}

// Issue sets the username, password digest and active flag of a user that is
// not yet persisted, and returns the plaintext password. The plaintext is not
// stored anywhere.
func (i *CredentialIssuer) Issue(ctx context.Context, users UsernameChecker, user *models.User) (string, error) {
	base, err := GenerateBaseUsername(user.FirstName, user.LastName)
	if err != nil {
		return "", err
	}

	username, err := i.UniqueUsername(ctx, users, base)
	if err != nil {
		return "", err
	}

	plain := i.newPassword()
	digest, err := i.hasher.Hash(plain)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	user.Username = username
	user.Password = digest
	user.IsActive = true
	return plain, nil
}
