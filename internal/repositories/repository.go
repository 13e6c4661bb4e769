package repositories

import (
	"context"
	"errors"

	"gym/internal/models"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateUsername is returned when a user is created with a username that already exists.
	ErrDuplicateUsername = errors.New("username already exists")
)

// Repository defines data access for the gym domain. Every method participates
// in the transaction of the Repository it is called on.
type Repository interface {
	// Transaction runs fn against a transactional Repository. A non-nil error
	// from fn rolls back every change made through it.
	Transaction(ctx context.Context, fn func(Repository) error) error

	// Users
	UsernameExists(ctx context.Context, username string) (bool, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error

	// Trainees
	CreateTrainee(ctx context.Context, trainee *models.Trainee) error
	GetTraineeByUsername(ctx context.Context, username string) (*models.Trainee, error)
	GetTraineeWithTrainers(ctx context.Context, username string) (*models.TraineeWithTrainers, error)
	UpdateTrainee(ctx context.Context, trainee *models.Trainee) error
	DeleteTrainee(ctx context.Context, trainee *models.Trainee) error

	// Trainers
	CreateTrainer(ctx context.Context, trainer *models.Trainer) error
	GetTrainerByUsername(ctx context.Context, username string) (*models.Trainer, error)
	GetTrainerWithTrainees(ctx context.Context, username string) (*models.TrainerWithTrainees, error)
	ListUnassignedActiveTrainers(ctx context.Context, traineeID uint) ([]models.Trainer, error)

	// Trainee/trainer association. Each call updates both sides of a pair.
	LinkTrainer(ctx context.Context, traineeID, trainerID uint) error
	UnlinkTrainer(ctx context.Context, traineeID, trainerID uint) error
	ClearTrainers(ctx context.Context, traineeID uint) error

	// Trainings
	CreateTraining(ctx context.Context, training *models.Training) error
	ListTraineeTrainings(ctx context.Context, username string, filter models.TrainingFilter) ([]models.Training, error)
	ListTrainerTrainings(ctx context.Context, username string, filter models.TrainingFilter) ([]models.Training, error)

	// Training types
	CreateTrainingType(ctx context.Context, trainingType *models.TrainingType) error
	GetTrainingTypeByID(ctx context.Context, id uint) (*models.TrainingType, error)
	ListTrainingTypes(ctx context.Context) ([]models.TrainingType, error)

	// Sessions
	CreateSession(ctx context.Context, session *models.Session) error
	GetSession(ctx context.Context, id string) (*models.Session, error)
	DeleteSession(ctx context.Context, id string) error
	DeleteUserSessions(ctx context.Context, userID uint) error
}
