package services_test

import (
	"errors"
	"testing"

	"gym/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestTrainerService_RegisterTrainer(t *testing.T) {
	f := newFixture(t)

	creds, err := f.trainers.RegisterTrainer(f.ctx, services.RegisterTrainerInput{
		FirstName: "Greg", LastName: "House", SpecializationID: f.types["Stretching"],
	})
	require.NoError(t, err)
	assert.Equal(t, "greg.house", creds.Username)

	profile, err := f.trainers.GetProfile(f.ctx, creds.Username)
	require.NoError(t, err)
	assert.Equal(t, "Stretching", profile.Specialization.Name)
	assert.True(t, profile.User.IsActive)
	assert.Empty(t, profile.Trainees)

	f.events.AssertCalled(t, "Publish", mock.Anything, services.EventTrainerRegistered, mock.Anything)
}

func TestTrainerService_RegisterTrainerValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.trainers.RegisterTrainer(f.ctx, services.RegisterTrainerInput{FirstName: "No", LastName: "Type"})
	assert.True(t, errors.Is(err, services.ErrRequiredFields))

	_, err = f.trainers.RegisterTrainer(f.ctx, services.RegisterTrainerInput{FirstName: "Bad", LastName: "Type", SpecializationID: 9999})
	assert.True(t, errors.Is(err, services.ErrValidation))
	assert.True(t, errors.Is(err, services.ErrTrainingTypeNotFound))

	exists, err := f.repo.UsernameExists(f.ctx, "bad.type")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestTrainerService_UpdateProfileIgnoresSpecialization(t *testing.T) {
	f := newFixture(t)
	creds := f.registerTrainer(t, "Ivy", "Green", "Yoga")
	resistance := f.types["Resistance"]

	profile, err := f.trainers.UpdateProfile(f.ctx, creds.Username, services.UpdateTrainerInput{
		FirstName:        "Ivy",
		LastName:         "Black",
		SpecializationID: &resistance,
		IsActive:         true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Black", profile.User.LastName)
	assert.Equal(t, "Yoga", profile.Specialization.Name)
	assert.Equal(t, f.types["Yoga"], profile.SpecializationID)

	_, err = f.trainers.UpdateProfile(f.ctx, "nobody", services.UpdateTrainerInput{FirstName: "A", LastName: "B"})
	assert.True(t, errors.Is(err, services.ErrTrainerNotFound))
}

func TestTrainerService_FindUnassignedActive(t *testing.T) {
	f := newFixture(t)
	trainee := f.registerTrainee(t, "Kim", "Possible")
	assigned := f.registerTrainer(t, "Ann", "Assigned", "Yoga")
	free := f.registerTrainer(t, "Bea", "Free", "Yoga")
	inactive := f.registerTrainer(t, "Cal", "Inactive", "Yoga")

	_, err := f.trainees.ReplaceTrainers(f.ctx, trainee.Username, []string{assigned.Username})
	require.NoError(t, err)
	require.NoError(t, f.trainers.SetActive(f.ctx, inactive.Username, false))

	trainers, err := f.trainers.FindUnassignedActive(f.ctx, trainee.Username)
	require.NoError(t, err)
	assert.Equal(t, []string{free.Username}, trainerUsernames(trainers))

	_, err = f.trainers.FindUnassignedActive(f.ctx, "nobody")
	assert.True(t, errors.Is(err, services.ErrTraineeNotFound))
}

func TestTrainerService_ListTrainingsOnlyFiltersDates(t *testing.T) {
	f := newFixture(t)
	trainer := f.registerTrainer(t, "Lou", "Reed", "Cardio")
	a := f.registerTrainee(t, "Amy", "Adams")
	b := f.registerTrainee(t, "Ben", "Burns")
	for _, trainee := range []string{a.Username, b.Username} {
		_, err := f.trainees.ReplaceTrainers(f.ctx, trainee, []string{trainer.Username})
		require.NoError(t, err)
	}
	for i, trainee := range []string{a.Username, b.Username} {
		_, err := f.trainings.CreateTraining(f.ctx, services.CreateTrainingInput{
			TraineeUsername: trainee, TrainerUsername: trainer.Username, Name: "Spin",
			Date: date([]string{"2024-01-10", "2024-02-10"}[i]), Duration: 40,
		})
		require.NoError(t, err)
	}

	all, err := f.trainers.ListTrainings(f.ctx, trainer.Username, nil, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Amy Adams", all[0].Trainee.User.FullName())

	feb, err := f.trainers.ListTrainings(f.ctx, trainer.Username, date("2024-02-01"), nil)
	require.NoError(t, err)
	require.Len(t, feb, 1)
	assert.Equal(t, b.Username, feb[0].Trainee.User.Username)

	_, err = f.trainers.ListTrainings(f.ctx, "nobody", nil, nil)
	assert.True(t, errors.Is(err, services.ErrTrainerNotFound))
}
