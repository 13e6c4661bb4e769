package services_test

import (
	"context"
	"testing"

	"gym/internal/config"
	"gym/internal/database"
	"gym/internal/models"
	"gym/internal/repositories"
	"gym/internal/services"
	"gym/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// staleRepository reports one taken username as free, the way a concurrent
// registration that commits between the check and the insert looks.
type staleRepository struct {
	repositories.Repository
	hidden string
}

func (r staleRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	if username == r.hidden {
		return false, nil
	}
	return r.Repository.UsernameExists(ctx, username)
}

func (r staleRepository) Transaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.Repository.Transaction(ctx, func(tx repositories.Repository) error {
		return fn(staleRepository{Repository: tx, hidden: r.hidden})
	})
}

func TestRegistrationLosesUsernameRace(t *testing.T) {
	ctx := context.Background()
	log := logger.Discard()

	db, err := database.Open(config.DBConfig{Driver: "sqlite", DSN: database.MemoryDSN(t.Name())})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	repo := repositories.NewGORMRepository(db)
	issuer := services.NewCredentialIssuer(services.NewBcryptHasher(bcrypt.MinCost))
	typeService := services.NewTrainingTypeService(repo, log)
	require.NoError(t, typeService.SeedDefaults(ctx, services.DefaultTrainingTypes))
	trainingTypes, err := typeService.ListTrainingTypes(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, trainingTypes)

	creds, err := services.NewTraineeService(repo, issuer, nil, log).RegisterTrainee(ctx, services.RegisterTraineeInput{FirstName: "Anna", LastName: "Bell"})
	require.NoError(t, err)
	require.Equal(t, "Anna.Bell", creds.Username)

	stale := staleRepository{Repository: repo, hidden: "Anna.Bell"}
	count := func(model any) int64 {
		var n int64
		require.NoError(t, db.Model(model).Count(&n).Error)
		return n
	}
	assertNoOrphans := func(t *testing.T) {
		assert.Equal(t, int64(1), count(&models.User{}))
		assert.Equal(t, int64(1), count(&models.Trainee{}))
		assert.Equal(t, int64(0), count(&models.Trainer{}))
	}

	t.Run("Trainee", func(t *testing.T) {
		_, err := services.NewTraineeService(stale, issuer, nil, log).RegisterTrainee(ctx, services.RegisterTraineeInput{FirstName: "Anna", LastName: "Bell"})
		assert.ErrorIs(t, err, services.ErrUsernameTaken)
		assert.ErrorIs(t, err, services.ErrValidation)
		assertNoOrphans(t)
	})

	t.Run("Trainer", func(t *testing.T) {
		_, err := services.NewTrainerService(stale, issuer, nil, log).RegisterTrainer(ctx, services.RegisterTrainerInput{
			FirstName:        "Anna",
			LastName:         "Bell",
			SpecializationID: trainingTypes[0].ID,
		})
		assert.ErrorIs(t, err, services.ErrUsernameTaken)
		assert.ErrorIs(t, err, services.ErrValidation)
		assertNoOrphans(t)
	})

	// The repository still works after the rejected inserts.
	creds, err = services.NewTraineeService(repo, issuer, nil, log).RegisterTrainee(ctx, services.RegisterTraineeInput{FirstName: "Anna", LastName: "Bell"})
	require.NoError(t, err)
	assert.Equal(t, "Anna.Bell1", creds.Username)
}
