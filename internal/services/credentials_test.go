package services_test

import (
	"context"
	"errors"
	"testing"

	"gym/internal/models"
	"gym/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestCredentialIssuer_ResolvesCollisions(t *testing.T) {
	hasher := services.NewBcryptHasher(bcrypt.MinCost)
	issuer := services.NewCredentialIssuer(hasher)
	checker := new(MockUsernameChecker)

	for _, taken := range []string{"a.b", "a.b1", "a.b2"} {
		checker.On("UsernameExists", mock.Anything, taken).Return(true, nil).Once()
	}
	checker.On("UsernameExists", mock.Anything, "a.b3").Return(false, nil).Once()

	user := &models.User{FirstName: "A", LastName: "B", IsActive: false}
	plain, err := issuer.Issue(context.Background(), checker, user)
	require.NoError(t, err)

	assert.Equal(t, "a.b3", user.Username)
	assert.Len(t, plain, services.PasswordLength)
	assert.NotEqual(t, plain, user.Password)
	assert.True(t, hasher.Verify(plain, user.Password))
	assert.True(t, user.IsActive)
	checker.AssertNumberOfCalls(t, "UsernameExists", 4)
	checker.AssertExpectations(t)
}

func TestCredentialIssuer_BlankNameIsRejected(t *testing.T) {
	issuer := services.NewCredentialIssuer(services.NewBcryptHasher(bcrypt.MinCost))
	checker := new(MockUsernameChecker)

	user := &models.User{FirstName: " ", LastName: ""}
	_, err := issuer.Issue(context.Background(), checker, user)

	assert.True(t, errors.Is(err, services.ErrInvalidName))
	assert.Empty(t, user.Username)
	checker.AssertNotCalled(t, "UsernameExists", mock.Anything, mock.Anything)
}

func TestCredentialIssuer_PropagatesLookupFailure(t *testing.T) {
	issuer := services.NewCredentialIssuer(services.NewBcryptHasher(bcrypt.MinCost))
	checker := new(MockUsernameChecker)
	checker.On("UsernameExists", mock.Anything, "jane.doe").Return(false, errors.New("connection reset")).Once()

	_, err := issuer.Issue(context.Background(), checker, &models.User{FirstName: "Jane", LastName: "Doe"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	checker.AssertExpectations(t)
}

func TestRegistration_SharesUsernameNamespace(t *testing.T) {
	f := newFixture(t)

	trainee := f.registerTrainee(t, "John", "Smith")
	trainer := f.registerTrainer(t, "John", "Smith", "Yoga")
	again := f.registerTrainee(t, "john", " smith")

	assert.Equal(t, "john.smith", trainee.Username)
	assert.Equal(t, "john.smith1", trainer.Username)
	assert.Equal(t, "john.smith2", again.Username)
}
