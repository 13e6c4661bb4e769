package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gym/internal/models"
	"gym/internal/repositories"
	"gym/pkg/logger"
)

// Credentials are the username and the one-time plaintext password issued at registration.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterTraineeInput holds the data of a new trainee.
type RegisterTraineeInput struct {
	FirstName   string
	LastName    string
	DateOfBirth *time.Time
	Address     string
}

// UpdateTraineeInput holds the editable fields of a trainee profile.
type UpdateTraineeInput struct {
	FirstName   string
	LastName    string
	DateOfBirth *time.Time
	Address     string
	IsActive    bool
}

// TraineeService handles business logic related to trainees and their trainers.
type TraineeService struct {
	repo   repositories.Repository
	issuer *CredentialIssuer
	events EventPublisher
	log    logger.Logger
	now    func() time.Time
}

// NewTraineeService creates a new TraineeService. events may be nil.
func NewTraineeService(repo repositories.Repository, issuer *CredentialIssuer, events EventPublisher, log logger.Logger) *TraineeService {
	return &TraineeService{
		repo:   repo,
		issuer: issuer,
		events: events,
		log:    log,
		now:    time.Now,
	}
}

// RegisterTrainee creates a trainee with generated credentials.
func (s *TraineeService) RegisterTrainee(ctx context.Context, in RegisterTraineeInput) (*Credentials, error) {
	log := logger.FromContext(ctx, s.log)

	if err := s.checkDateOfBirth(in.DateOfBirth); err != nil {
		return nil, err
	}

	trainee := &models.Trainee{
		User: models.User{
			FirstName: strings.TrimSpace(in.FirstName),
			LastName:  strings.TrimSpace(in.LastName),
		},
		DateOfBirth: dateOnlyPtr(in.DateOfBirth),
		Address:     strings.TrimSpace(in.Address),
	}

	var password string
	err := s.repo.Transaction(ctx, func(tx repositories.Repository) error {
		var err error
		if password, err = s.issuer.Issue(ctx, tx, &trainee.User); err != nil {
			return err
		}
		return usernameTaken(tx.CreateTrainee(ctx, trainee), trainee.User.Username)
	})
	if err != nil {
		log.BusinessError("trainee registration rejected", err)
		return nil, err
	}

	log.Info("trainee registered", "username", trainee.User.Username)
	publishEvent(ctx, log, s.events, EventTraineeRegistered, map[string]interface{}{
		"username":  trainee.User.Username,
		"firstName": trainee.User.FirstName,
		"lastName":  trainee.User.LastName,
	})
	return &Credentials{Username: trainee.User.Username, Password: password}, nil
}

// GetProfile returns the trainee together with its trainers.
func (s *TraineeService) GetProfile(ctx context.Context, username string) (*models.TraineeWithTrainers, error) {
	trainee, err := s.repo.GetTraineeWithTrainers(ctx, username)
	if err != nil {
		return nil, traineeLookup(err, username)
	}
	return trainee, nil
}

// UpdateProfile changes the names, personal data and active flag of the trainee.
func (s *TraineeService) UpdateProfile(ctx context.Context, username string, in UpdateTraineeInput) (*models.TraineeWithTrainers, error) {
	firstName, lastName := strings.TrimSpace(in.FirstName), strings.TrimSpace(in.LastName)
	if firstName == "" || lastName == "" {
		return nil, invalid(ErrRequiredFields, "first name and last name are required")
	}
	if err := s.checkDateOfBirth(in.DateOfBirth); err != nil {
		return nil, err
	}

	err := s.repo.Transaction(ctx, func(tx repositories.Repository) error {
		trainee, err := tx.GetTraineeByUsername(ctx, username)
		if err != nil {
			return traineeLookup(err, username)
		}

		trainee.User.FirstName = firstName
		trainee.User.LastName = lastName
		trainee.User.IsActive = in.IsActive
		trainee.DateOfBirth = dateOnlyPtr(in.DateOfBirth)
		trainee.Address = strings.TrimSpace(in.Address)

		if err := tx.UpdateUser(ctx, &trainee.User); err != nil {
			return err
		}
		return tx.UpdateTrainee(ctx, trainee)
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx, s.log).Info("trainee profile updated", "username", username)
	return s.GetProfile(ctx, username)
}

// Delete removes the trainee, its trainings and its trainer associations.
// Trainers and training types are not touched.
func (s *TraineeService) Delete(ctx context.Context, username string) error {
	log := logger.FromContext(ctx, s.log)

	err := s.repo.Transaction(ctx, func(tx repositories.Repository) error {
		trainee, err := tx.GetTraineeByUsername(ctx, username)
		if err != nil {
			return traineeLookup(err, username)
		}
		return tx.DeleteTrainee(ctx, trainee)
	})
	if err != nil {
		return err
	}

	log.Info("trainee deleted", "username", username)
	publishEvent(ctx, log, s.events, EventTraineeDeleted, map[string]interface{}{
		"username": username,
	})
	return nil
}

// SetActive activates or deactivates the trainee.
func (s *TraineeService) SetActive(ctx context.Context, username string, active bool) error {
	err := s.repo.Transaction(ctx, func(tx repositories.Repository) error {
		trainee, err := tx.GetTraineeByUsername(ctx, username)
		if err != nil {
			return traineeLookup(err, username)
		}
		trainee.User.IsActive = active
		return tx.UpdateUser(ctx, &trainee.User)
	})
	if err != nil {
		return err
	}

	logger.FromContext(ctx, s.log).Info("trainee status changed", "username", username, "active", active)
	return nil
}

// ReplaceTrainers makes trainerUsernames the complete trainer set of the
// trainee. Usernames that do not resolve to a trainer are skipped. Calling it
// again with the same set yields the same association.
func (s *TraineeService) ReplaceTrainers(ctx context.Context, username string, trainerUsernames []string) (*models.TraineeWithTrainers, error) {
	log := logger.FromContext(ctx, s.log)

	err := s.repo.Transaction(ctx, func(tx repositories.Repository) error {
		trainee, err := tx.GetTraineeByUsername(ctx, username)
		if err != nil {
			return traineeLookup(err, username)
		}

		resolved := make(map[uint]string, len(trainerUsernames))
		for _, trainerUsername := range trainerUsernames {
			trainer, err := tx.GetTrainerByUsername(ctx, trainerUsername)
			if errors.Is(err, repositories.ErrNotFound) {
				log.Debug("skipping unknown trainer", "trainer", trainerUsername)
				continue
			}
			if err != nil {
				return err
			}
			resolved[trainer.ID] = trainerUsername
		}

		if err := tx.ClearTrainers(ctx, trainee.ID); err != nil {
			return err
		}
		for trainerID := range resolved {
			if err := tx.LinkTrainer(ctx, trainee.ID, trainerID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	profile, err := s.GetProfile(ctx, username)
	if err != nil {
		return nil, err
	}
	log.Info("trainee trainers replaced", "username", username, "requested", len(trainerUsernames), "linked", len(profile.Trainers))
	return profile, nil
}

// ListTrainings returns the trainings of the trainee that match filter. The
// counterparty name filter applies to the trainer.
func (s *TraineeService) ListTrainings(ctx context.Context, username string, filter models.TrainingFilter) ([]models.Training, error) {
	if _, err := s.repo.GetTraineeByUsername(ctx, username); err != nil {
		return nil, traineeLookup(err, username)
	}
	return s.repo.ListTraineeTrainings(ctx, username, normalizeFilter(filter))
}

func (s *TraineeService) checkDateOfBirth(dob *time.Time) error {
	if dob != nil && models.DateOnly(*dob).After(models.DateOnly(s.now())) {
		return invalid(ErrInvalidDate, "date of birth is in the future")
	}
	return nil
}

func traineeLookup(err error, username string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return notFound(ErrTraineeNotFound, "%s", username)
	}
	return err
}

func usernameTaken(err error, username string) error {
	if errors.Is(err, repositories.ErrDuplicateUsername) {
		return invalid(ErrUsernameTaken, "%s", username)
	}
	if err != nil {
		return fmt.Errorf("failed to create user %s: %w", username, err)
	}
	return nil
}

func dateOnlyPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := models.DateOnly(*t)
	return &d
}

func normalizeFilter(filter models.TrainingFilter) models.TrainingFilter {
	filter.From = dateOnlyPtr(filter.From)
	filter.To = dateOnlyPtr(filter.To)
	return filter
}
