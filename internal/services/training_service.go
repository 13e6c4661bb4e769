package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gym/internal/models"
	"gym/internal/repositories"
	"gym/pkg/logger"
)

// CreateTrainingInput holds the data of a new training.
type CreateTrainingInput struct {
	TraineeUsername string
	TrainerUsername string
	Name            string
	Date            *time.Time
	Duration        int // minutes
}

// TrainingService handles business logic related to trainings.
type TrainingService struct {
	repo   repositories.Repository
	events EventPublisher
	log    logger.Logger
}

// NewTrainingService creates a new TrainingService. events may be nil.
func NewTrainingService(repo repositories.Repository, events EventPublisher, log logger.Logger) *TrainingService {
	return &TrainingService{
		repo:   repo,
		events: events,
		log:    log,
	}
}

// CreateTraining records a training between a trainee and one of its
// trainers. The checks run in order and each fails with its own reason:
// required fields, trainee lookup, trainer lookup, association. The training
// type is copied from the trainer's specialization.
func (s *TrainingService) CreateTraining(ctx context.Context, in CreateTrainingInput) (*models.Training, error) {
	log := logger.FromContext(ctx, s.log)

	name := strings.TrimSpace(in.Name)
	if in.TraineeUsername == "" || in.TrainerUsername == "" || name == "" || in.Date == nil || in.Duration <= 0 {
		return nil, invalid(ErrRequiredFields, "trainee, trainer, name, date and a positive duration are required")
	}

	var training *models.Training
	err := s.repo.Transaction(ctx, func(tx repositories.Repository) error {
		trainee, err := tx.GetTraineeWithTrainers(ctx, in.TraineeUsername)
		if errors.Is(err, repositories.ErrNotFound) {
			return invalid(ErrTraineeNotFound, "%s", in.TraineeUsername)
		}
		if err != nil {
			return err
		}

		trainer, err := tx.GetTrainerByUsername(ctx, in.TrainerUsername)
		if errors.Is(err, repositories.ErrNotFound) {
			return invalid(ErrTrainerNotFound, "%s", in.TrainerUsername)
		}
		if err != nil {
			return err
		}

		if !trainee.HasTrainer(trainer.ID) {
			return invalid(ErrTrainerNotAssociated, "%s is not a trainer of %s", in.TrainerUsername, in.TraineeUsername)
		}

		training = &models.Training{
			TraineeID:      trainee.ID,
			TrainerID:      trainer.ID,
			TrainingTypeID: trainer.SpecializationID,
			Name:           name,
			Date:           models.DateOnly(*in.Date),
			Duration:       in.Duration,
		}
		if err := tx.CreateTraining(ctx, training); err != nil {
			return err
		}
		training.Trainee = trainee.Trainee
		training.Trainer = *trainer
		training.TrainingType = trainer.Specialization
		return nil
	})
	if err != nil {
		log.BusinessError("training rejected", err, "trainee", in.TraineeUsername, "trainer", in.TrainerUsername)
		return nil, err
	}

	log.Info("training created", "trainee", in.TraineeUsername, "trainer", in.TrainerUsername, "type", training.TrainingType.Name)
	publishEvent(ctx, log, s.events, EventTrainingCreated, map[string]interface{}{
		"traineeUsername":  in.TraineeUsername,
		"trainerUsername":  in.TrainerUsername,
		"trainingName":     training.Name,
		"trainingDate":     training.Date.Format(time.DateOnly),
		"trainingDuration": training.Duration,
		"trainingType":     training.TrainingType.Name,
	})
	return training, nil
}
