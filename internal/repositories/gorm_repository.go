package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gym/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// likeEscaper makes a substring filter match literally under LIKE ... ESCAPE '\'.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// GORMRepository is a GORM implementation of Repository.
type GORMRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new instance of GORMRepository.
func NewGORMRepository(db *gorm.DB) *GORMRepository {
	return &GORMRepository{
		db: db,
	}
}

// Transaction runs fn inside a database transaction.
func (r *GORMRepository) Transaction(ctx context.Context, fn func(Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GORMRepository{db: tx})
	})
}

// UsernameExists reports whether any user, trainee or trainer, holds the username.
func (r *GORMRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check username %s: %w", username, err)
	}
	return count > 0, nil
}

// GetUserByUsername retrieves a user by their username.
func (r *GORMRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "username = ?", username).Error; err != nil {
		return nil, notFound(err, "failed to get user by username %s", username)
	}
	return &user, nil
}

// UpdateUser persists the mutable user fields. The username is never rewritten.
func (r *GORMRepository) UpdateUser(ctx context.Context, user *models.User) error {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"first_name": user.FirstName,
			"last_name":  user.LastName,
			"password":   user.Password,
			"is_active":  user.IsActive,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update user %s: %w", user.Username, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %s: %w", user.Username, ErrNotFound)
	}
	return nil
}

// CreateTrainee inserts the user row, then the trainee row referencing it.
// A taken username fails with ErrDuplicateUsername and inserts nothing.
func (r *GORMRepository) CreateTrainee(ctx context.Context, trainee *models.Trainee) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := createUser(tx, &trainee.User); err != nil {
			return err
		}
		trainee.UserID = trainee.User.ID
		if err := tx.Omit(clause.Associations).Create(trainee).Error; err != nil {
			return fmt.Errorf("failed to create trainee %s: %w", trainee.User.Username, err)
		}
		return nil
	})
}

// GetTraineeByUsername retrieves a trainee without its trainers.
func (r *GORMRepository) GetTraineeByUsername(ctx context.Context, username string) (*models.Trainee, error) {
	var trainee models.Trainee
	err := r.db.WithContext(ctx).
		Joins("JOIN users ON users.id = trainees.user_id").
		Where("users.username = ?", username).
		Preload("User").
		First(&trainee).Error
	if err != nil {
		return nil, notFound(err, "failed to get trainee %s", username)
	}
	return &trainee, nil
}

// GetTraineeWithTrainers retrieves a trainee and every trainer associated with it.
func (r *GORMRepository) GetTraineeWithTrainers(ctx context.Context, username string) (*models.TraineeWithTrainers, error) {
	trainee, err := r.GetTraineeByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	var trainers []models.Trainer
	err = r.db.WithContext(ctx).
		Joins("JOIN trainee_trainers ON trainee_trainers.trainer_id = trainers.id").
		Where("trainee_trainers.trainee_id = ?", trainee.ID).
		Preload("User").
		Preload("Specialization").
		Order("trainers.id").
		Find(&trainers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load trainers of trainee %s: %w", username, err)
	}

	return &models.TraineeWithTrainers{Trainee: *trainee, Trainers: trainers}, nil
}

// UpdateTrainee persists the trainee-owned fields.
func (r *GORMRepository) UpdateTrainee(ctx context.Context, trainee *models.Trainee) error {
	res := r.db.WithContext(ctx).
		Model(&models.Trainee{}).
		Where("id = ?", trainee.ID).
		Updates(map[string]interface{}{
			"date_of_birth": trainee.DateOfBirth,
			"address":       trainee.Address,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update trainee %s: %w", trainee.User.Username, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("trainee %s: %w", trainee.User.Username, ErrNotFound)
	}
	return nil
}

// DeleteTrainee removes the trainee, its trainings, its association rows,
// its sessions and its user row. Trainers and training types are untouched.
func (r *GORMRepository) DeleteTrainee(ctx context.Context, trainee *models.Trainee) error {
	db := r.db.WithContext(ctx)
	steps := []struct {
		what  string
		model interface{}
		query string
		arg   uint
	}{
		{"trainings", &models.Training{}, "trainee_id = ?", trainee.ID},
		{"trainer links", &models.TraineeTrainer{}, "trainee_id = ?", trainee.ID},
		{"sessions", &models.Session{}, "user_id = ?", trainee.UserID},
		{"trainee", &models.Trainee{}, "id = ?", trainee.ID},
		{"user", &models.User{}, "id = ?", trainee.UserID},
	}
	for _, step := range steps {
		if err := db.Where(step.query, step.arg).Delete(step.model).Error; err != nil {
			return fmt.Errorf("failed to delete %s of trainee %s: %w", step.what, trainee.User.Username, err)
		}
	}
	return nil
}

// CreateTrainer inserts the user row, then the trainer row referencing it.
// The specialization must already exist.
func (r *GORMRepository) CreateTrainer(ctx context.Context, trainer *models.Trainer) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := createUser(tx, &trainer.User); err != nil {
			return err
		}
		trainer.UserID = trainer.User.ID
		if err := tx.Omit(clause.Associations).Create(trainer).Error; err != nil {
			return fmt.Errorf("failed to create trainer %s: %w", trainer.User.Username, err)
		}
		return nil
	})
}

func createUser(tx *gorm.DB, user *models.User) error {
	if err := tx.Create(user).Error; err != nil {
		return duplicate(err, "failed to create user %s", user.Username)
	}
	return nil
}

// GetTrainerByUsername retrieves a trainer and its specialization without its trainees.
func (r *GORMRepository) GetTrainerByUsername(ctx context.Context, username string) (*models.Trainer, error) {
	var trainer models.Trainer
	err := r.db.WithContext(ctx).
		Joins("JOIN users ON users.id = trainers.user_id").
		Where("users.username = ?", username).
		Preload("User").
		Preload("Specialization").
		First(&trainer).Error
	if err != nil {
		return nil, notFound(err, "failed to get trainer %s", username)
	}
	return &trainer, nil
}

// GetTrainerWithTrainees retrieves a trainer and every trainee associated with it.
func (r *GORMRepository) GetTrainerWithTrainees(ctx context.Context, username string) (*models.TrainerWithTrainees, error) {
	trainer, err := r.GetTrainerByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	var trainees []models.Trainee
	err = r.db.WithContext(ctx).
		Joins("JOIN trainee_trainers ON trainee_trainers.trainee_id = trainees.id").
		Where("trainee_trainers.trainer_id = ?", trainer.ID).
		Preload("User").
		Order("trainees.id").
		Find(&trainees).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load trainees of trainer %s: %w", username, err)
	}

	return &models.TrainerWithTrainees{Trainer: *trainer, Trainees: trainees}, nil
}

// ListUnassignedActiveTrainers returns active trainers not associated with the trainee.
func (r *GORMRepository) ListUnassignedActiveTrainers(ctx context.Context, traineeID uint) ([]models.Trainer, error) {
	db := r.db.WithContext(ctx)
	assigned := db.Model(&models.TraineeTrainer{}).Select("trainer_id").Where("trainee_id = ?", traineeID)

	var trainers []models.Trainer
	err := db.
		Joins("JOIN users ON users.id = trainers.user_id").
		Where("users.is_active = ?", true).
		Where("trainers.id NOT IN (?)", assigned).
		Preload("User").
		Preload("Specialization").
		Order("users.username").
		Find(&trainers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list unassigned trainers: %w", err)
	}
	return trainers, nil
}

// LinkTrainer associates a trainer with a trainee. Linking an existing pair is a no-op.
func (r *GORMRepository) LinkTrainer(ctx context.Context, traineeID, trainerID uint) error {
	link := models.TraineeTrainer{TraineeID: traineeID, TrainerID: trainerID}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error; err != nil {
		return fmt.Errorf("failed to link trainer %d to trainee %d: %w", trainerID, traineeID, err)
	}
	return nil
}

// UnlinkTrainer removes the association between a trainer and a trainee.
func (r *GORMRepository) UnlinkTrainer(ctx context.Context, traineeID, trainerID uint) error {
	err := r.db.WithContext(ctx).
		Where("trainee_id = ? AND trainer_id = ?", traineeID, trainerID).
		Delete(&models.TraineeTrainer{}).Error
	if err != nil {
		return fmt.Errorf("failed to unlink trainer %d from trainee %d: %w", trainerID, traineeID, err)
	}
	return nil
}

// ClearTrainers removes every association of the trainee.
func (r *GORMRepository) ClearTrainers(ctx context.Context, traineeID uint) error {
	if err := r.db.WithContext(ctx).Where("trainee_id = ?", traineeID).Delete(&models.TraineeTrainer{}).Error; err != nil {
		return fmt.Errorf("failed to clear trainers of trainee %d: %w", traineeID, err)
	}
	return nil
}

// CreateTraining inserts a training. Referenced rows must already exist.
func (r *GORMRepository) CreateTraining(ctx context.Context, training *models.Training) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(training).Error; err != nil {
		return fmt.Errorf("failed to create training: %w", err)
	}
	return nil
}

// ListTraineeTrainings lists trainings of the trainee; the counterparty is the trainer.
func (r *GORMRepository) ListTraineeTrainings(ctx context.Context, username string, filter models.TrainingFilter) ([]models.Training, error) {
	return r.listTrainings(ctx, "trainee_users", "trainer_users", username, filter)
}

// ListTrainerTrainings lists trainings of the trainer; the counterparty is the trainee.
func (r *GORMRepository) ListTrainerTrainings(ctx context.Context, username string, filter models.TrainingFilter) ([]models.Training, error) {
	return r.listTrainings(ctx, "trainer_users", "trainee_users", username, filter)
}

func (r *GORMRepository) listTrainings(ctx context.Context, root, counterparty, username string, filter models.TrainingFilter) ([]models.Training, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Training{}).
		Select("trainings.*").
		Joins("JOIN trainees ON trainees.id = trainings.trainee_id").
		Joins("JOIN users trainee_users ON trainee_users.id = trainees.user_id").
		Joins("JOIN trainers ON trainers.id = trainings.trainer_id").
		Joins("JOIN users trainer_users ON trainer_users.id = trainers.user_id").
		Joins("JOIN training_types ON training_types.id = trainings.training_type_id").
		Where(root+".username = ?", username)

	if filter.From != nil {
		query = query.Where("trainings.date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("trainings.date <= ?", *filter.To)
	}
	if filter.CounterpartyName != "" {
		query = query.Where("("+counterparty+".first_name || ' ' || "+counterparty+".last_name) LIKE ? ESCAPE '\\'", "%"+likeEscaper.Replace(filter.CounterpartyName)+"%")
	}
	if filter.TrainingTypeName != "" {
		query = query.Where("training_types.name = ?", filter.TrainingTypeName)
	}

	var trainings []models.Training
	err := query.
		Preload("Trainee.User").
		Preload("Trainer.User").
		Preload("Trainer.Specialization").
		Preload("TrainingType").
		Order("trainings.date, trainings.id").
		Find(&trainings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list trainings for %s: %w", username, err)
	}
	return trainings, nil
}

// CreateTrainingType inserts a training type.
func (r *GORMRepository) CreateTrainingType(ctx context.Context, trainingType *models.TrainingType) error {
	if err := r.db.WithContext(ctx).Create(trainingType).Error; err != nil {
		return fmt.Errorf("failed to create training type %s: %w", trainingType.Name, err)
	}
	return nil
}

// GetTrainingTypeByID retrieves a training type by its ID.
func (r *GORMRepository) GetTrainingTypeByID(ctx context.Context, id uint) (*models.TrainingType, error) {
	var trainingType models.TrainingType
	if err := r.db.WithContext(ctx).First(&trainingType, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "failed to get training type %d", id)
	}
	return &trainingType, nil
}

// ListTrainingTypes returns all training types ordered by ID.
func (r *GORMRepository) ListTrainingTypes(ctx context.Context) ([]models.TrainingType, error) {
	var types []models.TrainingType
	if err := r.db.WithContext(ctx).Order("id").Find(&types).Error; err != nil {
		return nil, fmt.Errorf("failed to list training types: %w", err)
	}
	return types, nil
}

// CreateSession stores a login session.
func (r *GORMRepository) CreateSession(ctx context.Context, session *models.Session) error {
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by its ID.
func (r *GORMRepository) GetSession(ctx context.Context, id string) (*models.Session, error) {
	var session models.Session
	if err := r.db.WithContext(ctx).First(&session, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "failed to get session %s", id)
	}
	return &session, nil
}

// DeleteSession removes a session. Removing a missing session is not an error.
func (r *GORMRepository) DeleteSession(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Delete(&models.Session{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	return nil
}

// DeleteUserSessions removes every session of the user.
func (r *GORMRepository) DeleteUserSessions(ctx context.Context, userID uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Session{}, "user_id = ?", userID).Error; err != nil {
		return fmt.Errorf("failed to delete sessions of user %d: %w", userID, err)
	}
	return nil
}

func notFound(err error, format string, args ...interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

func duplicate(err error, format string, args ...interface{}) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrDuplicateUsername)
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
