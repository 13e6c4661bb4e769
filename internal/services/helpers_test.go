package services_test

import (
	"context"
	"testing"
	"time"

	"gym/internal/repositories"
	"gym/internal/services"
	"gym/pkg/logger"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// MockEventPublisher is a mock implementation of services.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, routingKey string, payload interface{}) error {
	args := m.Called(ctx, routingKey, payload)
	return args.Error(0)
}

// MockUsernameChecker is a mock implementation of services.UsernameChecker
type MockUsernameChecker struct {
	mock.Mock
}

func (m *MockUsernameChecker) UsernameExists(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

type fixture struct {
	ctx       context.Context
	repo      *repositories.MemoryRepository
	hasher    *services.BcryptHasher
	events    *MockEventPublisher
	auth      *services.AuthService
	trainees  *services.TraineeService
	trainers  *services.TrainerService
	trainings *services.TrainingService
	types     map[string]uint
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctx := context.Background()
	log := logger.Discard()
	repo := repositories.NewMemoryRepository()
	hasher := services.NewBcryptHasher(bcrypt.MinCost)
	issuer := services.NewCredentialIssuer(hasher)

	events := new(MockEventPublisher)
	events.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	typeService := services.NewTrainingTypeService(repo, log)
	require.NoError(t, typeService.SeedDefaults(ctx, services.DefaultTrainingTypes))
	trainingTypes, err := typeService.ListTrainingTypes(ctx)
	require.NoError(t, err)

	types := make(map[string]uint, len(trainingTypes))
	for _, tt := range trainingTypes {
		types[tt.Name] = tt.ID
	}

	return &fixture{
		ctx:       ctx,
		repo:      repo,
		hasher:    hasher,
		events:    events,
		auth:      services.NewAuthService(repo, hasher, "test_jwt_secret", time.Hour, log),
		trainees:  services.NewTraineeService(repo, issuer, events, log),
		trainers:  services.NewTrainerService(repo, issuer, events, log),
		trainings: services.NewTrainingService(repo, events, log),
		types:     types,
	}
}

func (f *fixture) registerTrainee(t *testing.T, firstName, lastName string) *services.Credentials {
	t.Helper()
	creds, err := f.trainees.RegisterTrainee(f.ctx, services.RegisterTraineeInput{FirstName: firstName, LastName: lastName})
	require.NoError(t, err)
	return creds
}

func (f *fixture) registerTrainer(t *testing.T, firstName, lastName, specialization string) *services.Credentials {
	t.Helper()
	id, ok := f.types[specialization]
	require.True(t, ok, "unknown training type %s", specialization)
	creds, err := f.trainers.RegisterTrainer(f.ctx, services.RegisterTrainerInput{FirstName: firstName, LastName: lastName, SpecializationID: id})
	require.NoError(t, err)
	return creds
}

func date(value string) *time.Time {
	d, err := time.Parse(time.DateOnly, value)
	if err != nil {
		panic(err)
	}
	return &d
}
