package services_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"gym/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_Authenticate(t *testing.T) {
	f := newFixture(t)
	creds := f.registerTrainee(t, "Anna", "Lee")

	ok, err := f.auth.Authenticate(f.ctx, "ghost.user", creds.Password)
	assert.NoError(t, err)
	assert.False(t, ok, "unknown user")

	ok, err = f.auth.Authenticate(f.ctx, creds.Username, "wrong-password")
	assert.NoError(t, err)
	assert.False(t, ok, "wrong password")

	ok, err = f.auth.Authenticate(f.ctx, creds.Username, creds.Password)
	assert.NoError(t, err)
	assert.True(t, ok, "active user with correct password")

	require.NoError(t, f.trainees.SetActive(f.ctx, creds.Username, false))
	ok, err = f.auth.Authenticate(f.ctx, creds.Username, creds.Password)
	assert.NoError(t, err)
	assert.False(t, ok, "deactivated user")
}

func TestAuthService_ChangePasswordTwice(t *testing.T) {
	f := newFixture(t)
	creds := f.registerTrainer(t, "Bob", "Stone", "Cardio")

	err := f.auth.ChangePassword(f.ctx, creds.Username, creds.Password, "new-password-1")
	require.NoError(t, err)

	err = f.auth.ChangePassword(f.ctx, creds.Username, creds.Password, "new-password-1")
	assert.True(t, errors.Is(err, services.ErrValidation))
	assert.True(t, errors.Is(err, services.ErrIncorrectPassword))

	ok, err := f.auth.Authenticate(f.ctx, creds.Username, "new-password-1")
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.auth.Authenticate(f.ctx, creds.Username, creds.Password)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestAuthService_ChangePasswordErrors(t *testing.T) {
	f := newFixture(t)
	creds := f.registerTrainee(t, "Cara", "Dune")

	err := f.auth.ChangePassword(f.ctx, "nobody", "x", "new-password")
	assert.True(t, errors.Is(err, services.ErrNotFound))
	assert.True(t, errors.Is(err, services.ErrUserNotFound))

	err = f.auth.ChangePassword(f.ctx, creds.Username, creds.Password, "")
	assert.True(t, errors.Is(err, services.ErrValidation))
}

func TestAuthService_LoginAndValidateToken(t *testing.T) {
	f := newFixture(t)
	creds := f.registerTrainee(t, "Dan", "Ford")

	token, err := f.auth.Login(f.ctx, creds.Username, creds.Password)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	parsed, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte("test_jwt_secret"), nil
	})
	require.NoError(t, err)
	claims, ok := parsed.Claims.(jwt.MapClaims)
	assert.True(t, ok)
	assert.Equal(t, creds.Username, claims["username"])
	assert.NotEmpty(t, claims["sid"])

	session, err := f.auth.ValidateToken(f.ctx, token)
	require.NoError(t, err)
	assert.Equal(t, creds.Username, session.Username)
	assert.Equal(t, claims["sid"], session.ID)

	_, err = f.auth.Login(f.ctx, creds.Username, "wrong")
	assert.True(t, errors.Is(err, services.ErrAuthentication))

	_, err = f.auth.ValidateToken(f.ctx, "invalid.token.string")
	assert.True(t, errors.Is(err, services.ErrAuthentication))
}

func TestAuthService_RejectsForeignAndExpiredTokens(t *testing.T) {
	f := newFixture(t)

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": "whatever",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	foreignString, _ := foreign.SignedString([]byte("another_secret"))
	_, err := f.auth.ValidateToken(f.ctx, foreignString)
	assert.True(t, errors.Is(err, services.ErrAuthentication))

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": "whatever",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	expiredString, _ := expired.SignedString([]byte("test_jwt_secret"))
	_, err = f.auth.ValidateToken(f.ctx, expiredString)
	assert.True(t, errors.Is(err, services.ErrAuthentication))

	orphan := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": "no-such-session",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	orphanString, _ := orphan.SignedString([]byte("test_jwt_secret"))
	_, err = f.auth.ValidateToken(f.ctx, orphanString)
	assert.True(t, errors.Is(err, services.ErrAuthentication))
}

func TestAuthService_LogoutAndPasswordChangeRevokeSessions(t *testing.T) {
	f := newFixture(t)
	creds := f.registerTrainer(t, "Eve", "Gray", "Zumba")

	first, err := f.auth.Login(f.ctx, creds.Username, creds.Password)
	require.NoError(t, err)
	second, err := f.auth.Login(f.ctx, creds.Username, creds.Password)
	require.NoError(t, err)

	require.NoError(t, f.auth.Logout(f.ctx, first))
	_, err = f.auth.ValidateToken(f.ctx, first)
	assert.True(t, errors.Is(err, services.ErrAuthentication))
	_, err = f.auth.ValidateToken(f.ctx, second)
	assert.NoError(t, err)

	require.NoError(t, f.auth.ChangePassword(f.ctx, creds.Username, creds.Password, "brand-new-pass"))
	_, err = f.auth.ValidateToken(f.ctx, second)
	assert.True(t, errors.Is(err, services.ErrAuthentication))
}
