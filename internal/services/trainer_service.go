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

// RegisterTrainerInput holds the data of a new trainer.
type RegisterTrainerInput struct {
	FirstName        string
	LastName         string
	SpecializationID uint
}

// UpdateTrainerInput holds the editable fields of a trainer profile.
// SpecializationID is accepted but never applied.
type UpdateTrainerInput struct {
	FirstName        string
	LastName         string
	SpecializationID *uint
	IsActive         bool
}

// TrainerService handles business logic related to trainers.
type TrainerService struct {
	repo   repositories.Repository
	issuer *CredentialIssuer
	events EventPublisher
	log    logger.Logger
}

// NewTrainerService creates a new TrainerService. events may be nil.
func NewTrainerService(repo repositories.Repository, issuer *CredentialIssuer, events EventPublisher, log logger.Logger) *TrainerService {
	return &TrainerService{
		repo:   repo,
		issuer: issuer,
		events: events,
		log:    log,
	}
}

// RegisterTrainer creates a trainer with generated credentials. The
// specialization must reference an existing training type.
func (s *TrainerService) RegisterTrainer(ctx context.Context, in RegisterTrainerInput) (*Credentials, error) {
	log := logger.FromContext(ctx, s.log)

	if in.SpecializationID == 0 {
		return nil, invalid(ErrRequiredFields, "specialization is required")
	}

	trainer := &models.Trainer{
		User: models.User{
			FirstName: strings.TrimSpace(in.FirstName),
			LastName:  strings.TrimSpace(in.LastName),
		},
		SpecializationID: in.SpecializationID,
	}

	var password string
	err := s.repo.Transaction(ctx, func(tx repositories.Repository) error {
		specialization, err := tx.GetTrainingTypeByID(ctx, in.SpecializationID)
		if errors.Is(err, repositories.ErrNotFound) {
			return invalid(ErrTrainingTypeNotFound, "id %d", in.SpecializationID)
		}
		if err != nil {
			return err
		}
		trainer.Specialization = *specialization

		if password, err = s.issuer.Issue(ctx, tx, &trainer.User); err != nil {
			return err
		}
		return usernameTaken(tx.CreateTrainer(ctx, trainer), trainer.User.Username)
	})
	if err != nil {
		log.BusinessError("trainer registration rejected", err)
		return nil, err
	}

	log.Info("trainer registered", "username", trainer.User.Username, "specialization", trainer.Specialization.Name)
	publishEvent(ctx, log, s.events, EventTrainerRegistered, map[string]interface{}{
		"username":       trainer.User.Username,
		"firstName":      trainer.User.FirstName,
		"lastName":       trainer.User.LastName,
		"specialization": trainer.Specialization.Name,
	})
	return &Credentials{Username: trainer.User.Username, Password: password}, nil
}

// GetProfile returns the trainer together with its trainees.
func (s *TrainerService) GetProfile(ctx context.Context, username string) (*models.TrainerWithTrainees, error) {
	trainer, err := s.repo.GetTrainerWithTrainees(ctx, username)
	if err != nil {
		return nil, trainerLookup(err, username)
	}
	return trainer, nil
}

// UpdateProfile changes the names and active flag of the trainer. The
// specialization never changes after registration.
func (s *TrainerService) UpdateProfile(ctx context.Context, username string, in UpdateTrainerInput) (*models.TrainerWithTrainees, error) {
	log := logger.FromContext(ctx, s.log)

	firstName, lastName := strings.TrimSpace(in.FirstName), strings.TrimSpace(in.LastName)
	if firstName == "" || lastName == "" {
		return nil, invalid(ErrRequiredFields, "first name and last name are required")
	}

	err := s.repo.Transaction(ctx, func(tx repositories.Repository) error {
		trainer, err := tx.GetTrainerByUsername(ctx, username)
		if err != nil {
			return trainerLookup(err, username)
		}
		if in.SpecializationID != nil && *in.SpecializationID != trainer.SpecializationID {
			log.Warn("ignoring specialization change", "username", username, "requested", *in.SpecializationID)
		}

		trainer.User.FirstName = firstName
		trainer.User.LastName = lastName
		trainer.User.IsActive = in.IsActive
		return tx.UpdateUser(ctx, &trainer.User)
	})
	if err != nil {
		return nil, err
	}

	log.Info("trainer profile updated", "username", username)
	return s.GetProfile(ctx, username)
}

// SetActive activates or deactivates the trainer.
func (s *TrainerService) SetActive(ctx context.Context, username string, active bool) error {
	err := s.repo.Transaction(ctx, func(tx repositories.Repository) error {
		trainer, err := tx.GetTrainerByUsername(ctx, username)
		if err != nil {
			return trainerLookup(err, username)
		}
		trainer.User.IsActive = active
		return tx.UpdateUser(ctx, &trainer.User)
	})
	if err != nil {
		return err
	}

	logger.FromContext(ctx, s.log).Info("trainer status changed", "username", username, "active", active)
	return nil
}

// ListTrainings returns the trainings conducted by the trainer within the
// inclusive date range. Nil bounds are open.
func (s *TrainerService) ListTrainings(ctx context.Context, username string, from, to *time.Time) ([]models.Training, error) {
	if _, err := s.repo.GetTrainerByUsername(ctx, username); err != nil {
		return nil, trainerLookup(err, username)
	}
	return s.repo.ListTrainerTrainings(ctx, username, normalizeFilter(models.TrainingFilter{From: from, To: to}))
}

// FindUnassignedActive returns the active trainers that are not associated
// with the trainee.
func (s *TrainerService) FindUnassignedActive(ctx context.Context, traineeUsername string) ([]models.Trainer, error) {
	trainee, err := s.repo.GetTraineeByUsername(ctx, traineeUsername)
	if err != nil {
		return nil, traineeLookup(err, traineeUsername)
	}
	return s.repo.ListUnassignedActiveTrainers(ctx, trainee.ID)
}

func trainerLookup(err error, username string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return notFound(ErrTrainerNotFound, "%s", username)
	}
	return err
}
