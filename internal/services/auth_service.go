package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gym/internal/models"
	"gym/internal/repositories"
	"gym/pkg/logger"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
)

// AuthService handles authentication, login sessions and password changes.
type AuthService struct {
	repo       repositories.Repository
	hasher     PasswordHasher
	log        logger.Logger
	jwtSecret  []byte
	sessionTTL time.Duration // how long a login session stays valid
	now        func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(repo repositories.Repository, hasher PasswordHasher, jwtSecret string, sessionTTL time.Duration, log logger.Logger) *AuthService {
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &AuthService{
		repo:       repo,
		hasher:     hasher,
		log:        log,
		jwtSecret:  []byte(jwtSecret),
		sessionTTL: sessionTTL,
		now:        time.Now,
	}
}

// Authenticate reports whether the credentials belong to an active user.
// Unknown and deactivated users yield false, never an error; only storage
// failures are returned.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (bool, error) {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if errors.Is(err, repositories.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to authenticate %s: %w", username, err)
	}
	if !user.IsActive {
		return false, nil
	}
	return s.hasher.Verify(password, user.Password), nil
}

// ChangePassword replaces the password digest of the user and revokes every
// session of that user. A second call with the same pair fails because the
// old password no longer matches.
func (s *AuthService) ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error {
	log := logger.FromContext(ctx, s.log)
	if newPassword == "" {
		return invalid(ErrRequiredFields, "new password is required")
	}

	err := s.repo.Transaction(ctx, func(tx repositories.Repository) error {
		user, err := tx.GetUserByUsername(ctx, username)
		if errors.Is(err, repositories.ErrNotFound) {
			return notFound(ErrUserNotFound, "%s", username)
		}
		if err != nil {
			return err
		}
		if !s.hasher.Verify(oldPassword, user.Password) {
			return invalid(ErrIncorrectPassword, "old password does not match")
		}

		digest, err := s.hasher.Hash(newPassword)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		user.Password = digest
		if err := tx.UpdateUser(ctx, user); err != nil {
			return err
		}
		return tx.DeleteUserSessions(ctx, user.ID)
	})
	if err != nil {
		log.BusinessError("password change rejected", err, "username", username)
		return err
	}

	log.Info("password changed", "username", username)
	return nil
}

// Login authenticates the user, opens a session and returns a signed token
// referencing it.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	log := logger.FromContext(ctx, s.log)

	ok, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return "", err
	}
	if !ok {
		log.Warn("login failed", "username", username)
		return "", fmt.Errorf("%w: invalid credentials", ErrAuthentication)
	}

	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return "", fmt.Errorf("failed to load user %s: %w", username, err)
	}

	now := s.now()
	session := &models.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Username:  user.Username,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return "", err
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid":      session.ID,
		"username": user.Username,
		"exp":      session.ExpiresAt.Unix(),
		"iat":      now.Unix(),
	})
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	log.Info("user logged in", "username", user.Username)
	return tokenString, nil
}

// Logout ends the session referenced by the token.
func (s *AuthService) Logout(ctx context.Context, tokenString string) error {
	session, err := s.ValidateToken(ctx, tokenString)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteSession(ctx, session.ID); err != nil {
		return err
	}
	logger.FromContext(ctx, s.log).Info("user logged out", "username", session.Username)
	return nil
}

// ValidateToken verifies the token signature and expiry and returns the
// session it references. A token whose session was revoked is rejected.
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (*models.Session, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		logger.FromContext(ctx, s.log).Debug("token validation failed", "err", err)
		return nil, fmt.Errorf("%w: invalid token: %v", ErrAuthentication, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token", ErrAuthentication)
	}
	sid, _ := claims["sid"].(string)
	if sid == "" {
		return nil, fmt.Errorf("%w: token has no session", ErrAuthentication)
	}

	session, err := s.repo.GetSession(ctx, sid)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("%w: session has ended", ErrAuthentication)
	}
	if err != nil {
		return nil, err
	}
	if session.Expired(s.now()) {
		if err := s.repo.DeleteSession(ctx, session.ID); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: session has expired", ErrAuthentication)
	}
	return session, nil
}
