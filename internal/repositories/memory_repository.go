package repositories

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gym/internal/models"
)

// table holds rows of one entity type keyed by the ID that idOf extracts.
type table[T any] struct {
	rows map[uint]T
	idOf func(T) uint
}

func newTable[T any](idOf func(T) uint) table[T] {
	return table[T]{rows: make(map[uint]T), idOf: idOf}
}

func (t table[T]) put(row T) { t.rows[t.idOf(row)] = row }

func (t table[T]) get(id uint) (T, bool) {
	row, ok := t.rows[id]
	return row, ok
}

func (t table[T]) remove(id uint) { delete(t.rows, id) }

func (t table[T]) clone() table[T] {
	c := newTable(t.idOf)
	for id, row := range t.rows {
		c.rows[id] = row
	}
	return c
}

// ids returns the row IDs in ascending order.
func (t table[T]) ids() []uint {
	ids := make([]uint, 0, len(t.rows))
	for id := range t.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// find returns the row with the lowest ID that matches.
func (t table[T]) find(match func(T) bool) (T, bool) {
	for _, id := range t.ids() {
		if row := t.rows[id]; match(row) {
			return row, true
		}
	}
	var zero T
	return zero, false
}

type idSet map[uint]struct{}

func (s idSet) clone() idSet {
	c := make(idSet, len(s))
	for id := range s {
		c[id] = struct{}{}
	}
	return c
}

func (s idSet) sorted() []uint {
	ids := make([]uint, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// memoryState is an arena of rows keyed by ID plus the two association indexes.
type memoryState struct {
	users         table[models.User]
	trainees      table[models.Trainee]
	trainers      table[models.Trainer]
	trainings     table[models.Training]
	trainingTypes table[models.TrainingType]
	sessions      map[string]models.Session

	trainersOf map[uint]idSet // traineeID -> trainerIDs
	traineesOf map[uint]idSet // trainerID -> traineeIDs

	nextID uint
}

func newMemoryState() *memoryState {
	return &memoryState{
		users:         newTable(func(u models.User) uint { return u.ID }),
		trainees:      newTable(func(t models.Trainee) uint { return t.ID }),
		trainers:      newTable(func(t models.Trainer) uint { return t.ID }),
		trainings:     newTable(func(t models.Training) uint { return t.ID }),
		trainingTypes: newTable(func(t models.TrainingType) uint { return t.ID }),
		sessions:      make(map[string]models.Session),
		trainersOf:    make(map[uint]idSet),
		traineesOf:    make(map[uint]idSet),
	}
}

func (s *memoryState) clone() *memoryState {
	c := &memoryState{
		users:         s.users.clone(),
		trainees:      s.trainees.clone(),
		trainers:      s.trainers.clone(),
		trainings:     s.trainings.clone(),
		trainingTypes: s.trainingTypes.clone(),
		sessions:      make(map[string]models.Session, len(s.sessions)),
		trainersOf:    make(map[uint]idSet, len(s.trainersOf)),
		traineesOf:    make(map[uint]idSet, len(s.traineesOf)),
		nextID:        s.nextID,
	}
	for k, v := range s.sessions {
		c.sessions[k] = v
	}
	for k, set := range s.trainersOf {
		c.trainersOf[k] = set.clone()
	}
	for k, set := range s.traineesOf {
		c.traineesOf[k] = set.clone()
	}
	return c
}

func (s *memoryState) newID() uint {
	s.nextID++
	return s.nextID
}

// link and unlink are the only writers of trainersOf and traineesOf.
func (s *memoryState) link(traineeID, trainerID uint) {
	if s.trainersOf[traineeID] == nil {
		s.trainersOf[traineeID] = make(idSet)
	}
	if s.traineesOf[trainerID] == nil {
		s.traineesOf[trainerID] = make(idSet)
	}
	s.trainersOf[traineeID][trainerID] = struct{}{}
	s.traineesOf[trainerID][traineeID] = struct{}{}
}

func (s *memoryState) unlink(traineeID, trainerID uint) {
	delete(s.trainersOf[traineeID], trainerID)
	delete(s.traineesOf[trainerID], traineeID)
}

func (s *memoryState) userByUsername(username string) (models.User, bool) {
	return s.users.find(func(u models.User) bool { return u.Username == username })
}

func (s *memoryState) trainee(id uint) models.Trainee {
	trainee, _ := s.trainees.get(id)
	trainee.User, _ = s.users.get(trainee.UserID)
	return trainee
}

func (s *memoryState) trainer(id uint) models.Trainer {
	trainer, _ := s.trainers.get(id)
	trainer.User, _ = s.users.get(trainer.UserID)
	trainer.Specialization, _ = s.trainingTypes.get(trainer.SpecializationID)
	return trainer
}

func (s *memoryState) traineeByUsername(username string) (models.Trainee, bool) {
	user, ok := s.userByUsername(username)
	if !ok {
		return models.Trainee{}, false
	}
	trainee, ok := s.trainees.find(func(t models.Trainee) bool { return t.UserID == user.ID })
	if !ok {
		return models.Trainee{}, false
	}
	return s.trainee(trainee.ID), true
}

func (s *memoryState) trainerByUsername(username string) (models.Trainer, bool) {
	user, ok := s.userByUsername(username)
	if !ok {
		return models.Trainer{}, false
	}
	trainer, ok := s.trainers.find(func(t models.Trainer) bool { return t.UserID == user.ID })
	if !ok {
		return models.Trainer{}, false
	}
	return s.trainer(trainer.ID), true
}

func (s *memoryState) insertUser(user *models.User) error {
	if _, taken := s.userByUsername(user.Username); taken {
		return fmt.Errorf("user %s: %w", user.Username, ErrDuplicateUsername)
	}
	user.ID = s.newID()
	s.users.put(*user)
	return nil
}

// MemoryRepository is an in-memory implementation of Repository.
type MemoryRepository struct {
	mu    *sync.RWMutex
	state *memoryState
	inTx  bool
}

// NewMemoryRepository creates a new, empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		mu:    &sync.RWMutex{},
		state: newMemoryState(),
	}
}

func (r *MemoryRepository) read() func() {
	if r.inTx {
		return func() {}
	}
	r.mu.RLock()
	return r.mu.RUnlock
}

func (r *MemoryRepository) write() func() {
	if r.inTx {
		return func() {}
	}
	r.mu.Lock()
	return r.mu.Unlock
}

// Transaction runs fn against a copy of the data that replaces the original
// only when fn succeeds. Transactions are serialized. A nested transaction
// works on a copy of the enclosing one, like a savepoint.
func (r *MemoryRepository) Transaction(ctx context.Context, fn func(Repository) error) error {
	if !r.inTx {
		r.mu.Lock()
		defer r.mu.Unlock()
	}

	tx := &MemoryRepository{mu: r.mu, state: r.state.clone(), inTx: true}
	if err := fn(tx); err != nil {
		return err
	}
	r.state = tx.state
	return nil
}

// UsernameExists reports whether any user holds the username.
func (r *MemoryRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	defer r.read()()
	_, ok := r.state.userByUsername(username)
	return ok, nil
}

// GetUserByUsername returns a user by its username.
func (r *MemoryRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	defer r.read()()
	user, ok := r.state.userByUsername(username)
	if !ok {
		return nil, fmt.Errorf("user %s: %w", username, ErrNotFound)
	}
	return &user, nil
}

// UpdateUser modifies the mutable fields of an existing user.
func (r *MemoryRepository) UpdateUser(ctx context.Context, user *models.User) error {
	defer r.write()()
	current, ok := r.state.users.get(user.ID)
	if !ok {
		return fmt.Errorf("user %s: %w", user.Username, ErrNotFound)
	}
	current.FirstName = user.FirstName
	current.LastName = user.LastName
	current.Password = user.Password
	current.IsActive = user.IsActive
	r.state.users.put(current)
	return nil
}

// CreateTrainee adds a trainee and its user.
func (r *MemoryRepository) CreateTrainee(ctx context.Context, trainee *models.Trainee) error {
	defer r.write()()
	if err := r.state.insertUser(&trainee.User); err != nil {
		return err
	}
	trainee.UserID = trainee.User.ID
	trainee.ID = r.state.newID()
	stored := *trainee
	stored.User = models.User{}
	r.state.trainees.put(stored)
	return nil
}

// GetTraineeByUsername returns a trainee by its username.
func (r *MemoryRepository) GetTraineeByUsername(ctx context.Context, username string) (*models.Trainee, error) {
	defer r.read()()
	trainee, ok := r.state.traineeByUsername(username)
	if !ok {
		return nil, fmt.Errorf("trainee %s: %w", username, ErrNotFound)
	}
	return &trainee, nil
}

// GetTraineeWithTrainers returns a trainee and its associated trainers.
func (r *MemoryRepository) GetTraineeWithTrainers(ctx context.Context, username string) (*models.TraineeWithTrainers, error) {
	defer r.read()()
	trainee, ok := r.state.traineeByUsername(username)
	if !ok {
		return nil, fmt.Errorf("trainee %s: %w", username, ErrNotFound)
	}
	trainers := make([]models.Trainer, 0, len(r.state.trainersOf[trainee.ID]))
	for _, id := range r.state.trainersOf[trainee.ID].sorted() {
		trainers = append(trainers, r.state.trainer(id))
	}
	return &models.TraineeWithTrainers{Trainee: trainee, Trainers: trainers}, nil
}

// UpdateTrainee modifies the trainee-owned fields.
func (r *MemoryRepository) UpdateTrainee(ctx context.Context, trainee *models.Trainee) error {
	defer r.write()()
	current, ok := r.state.trainees.get(trainee.ID)
	if !ok {
		return fmt.Errorf("trainee %s: %w", trainee.User.Username, ErrNotFound)
	}
	current.DateOfBirth = trainee.DateOfBirth
	current.Address = trainee.Address
	r.state.trainees.put(current)
	return nil
}

// DeleteTrainee removes the trainee with its trainings, links, sessions and user.
func (r *MemoryRepository) DeleteTrainee(ctx context.Context, trainee *models.Trainee) error {
	defer r.write()()
	for id, training := range r.state.trainings.rows {
		if training.TraineeID == trainee.ID {
			r.state.trainings.remove(id)
		}
	}
	for trainerID := range r.state.trainersOf[trainee.ID] {
		r.state.unlink(trainee.ID, trainerID)
	}
	delete(r.state.trainersOf, trainee.ID)
	for id, session := range r.state.sessions {
		if session.UserID == trainee.UserID {
			delete(r.state.sessions, id)
		}
	}
	r.state.trainees.remove(trainee.ID)
	r.state.users.remove(trainee.UserID)
	return nil
}

// CreateTrainer adds a trainer and its user.
func (r *MemoryRepository) CreateTrainer(ctx context.Context, trainer *models.Trainer) error {
	defer r.write()()
	if _, ok := r.state.trainingTypes.get(trainer.SpecializationID); !ok {
		return fmt.Errorf("training type %d: %w", trainer.SpecializationID, ErrNotFound)
	}
	if err := r.state.insertUser(&trainer.User); err != nil {
		return err
	}
	trainer.UserID = trainer.User.ID
	trainer.ID = r.state.newID()
	stored := *trainer
	stored.User = models.User{}
	stored.Specialization = models.TrainingType{}
	r.state.trainers.put(stored)
	return nil
}

// GetTrainerByUsername returns a trainer by its username.
func (r *MemoryRepository) GetTrainerByUsername(ctx context.Context, username string) (*models.Trainer, error) {
	defer r.read()()
	trainer, ok := r.state.trainerByUsername(username)
	if !ok {
		return nil, fmt.Errorf("trainer %s: %w", username, ErrNotFound)
	}
	return &trainer, nil
}

// GetTrainerWithTrainees returns a trainer and its associated trainees.
func (r *MemoryRepository) GetTrainerWithTrainees(ctx context.Context, username string) (*models.TrainerWithTrainees, error) {
	defer r.read()()
	trainer, ok := r.state.trainerByUsername(username)
	if !ok {
		return nil, fmt.Errorf("trainer %s: %w", username, ErrNotFound)
	}
	trainees := make([]models.Trainee, 0, len(r.state.traineesOf[trainer.ID]))
	for _, id := range r.state.traineesOf[trainer.ID].sorted() {
		trainees = append(trainees, r.state.trainee(id))
	}
	return &models.TrainerWithTrainees{Trainer: trainer, Trainees: trainees}, nil
}

// ListUnassignedActiveTrainers returns active trainers not linked to the trainee.
func (r *MemoryRepository) ListUnassignedActiveTrainers(ctx context.Context, traineeID uint) ([]models.Trainer, error) {
	defer r.read()()
	assigned := r.state.trainersOf[traineeID]
	trainers := make([]models.Trainer, 0)
	for _, id := range r.state.trainers.ids() {
		if _, ok := assigned[id]; ok {
			continue
		}
		trainer := r.state.trainer(id)
		if trainer.User.IsActive {
			trainers = append(trainers, trainer)
		}
	}
	sort.Slice(trainers, func(i, j int) bool { return trainers[i].User.Username < trainers[j].User.Username })
	return trainers, nil
}

// LinkTrainer associates a trainer with a trainee on both sides.
func (r *MemoryRepository) LinkTrainer(ctx context.Context, traineeID, trainerID uint) error {
	defer r.write()()
	if _, ok := r.state.trainees.get(traineeID); !ok {
		return fmt.Errorf("trainee %d: %w", traineeID, ErrNotFound)
	}
	if _, ok := r.state.trainers.get(trainerID); !ok {
		return fmt.Errorf("trainer %d: %w", trainerID, ErrNotFound)
	}
	r.state.link(traineeID, trainerID)
	return nil
}

// UnlinkTrainer removes the association on both sides.
func (r *MemoryRepository) UnlinkTrainer(ctx context.Context, traineeID, trainerID uint) error {
	defer r.write()()
	r.state.unlink(traineeID, trainerID)
	return nil
}

// ClearTrainers removes every association of the trainee on both sides.
func (r *MemoryRepository) ClearTrainers(ctx context.Context, traineeID uint) error {
	defer r.write()()
	for trainerID := range r.state.trainersOf[traineeID] {
		r.state.unlink(traineeID, trainerID)
	}
	return nil
}

// CreateTraining adds a training.
func (r *MemoryRepository) CreateTraining(ctx context.Context, training *models.Training) error {
	defer r.write()()
	training.ID = r.state.newID()
	stored := *training
	stored.Trainee = models.Trainee{}
	stored.Trainer = models.Trainer{}
	stored.TrainingType = models.TrainingType{}
	r.state.trainings.put(stored)
	return nil
}

// ListTraineeTrainings lists trainings of the trainee filtered by filter.
func (r *MemoryRepository) ListTraineeTrainings(ctx context.Context, username string, filter models.TrainingFilter) ([]models.Training, error) {
	defer r.read()()
	return r.listTrainings(filter, func(t models.Training) (bool, models.User) {
		return t.Trainee.User.Username == username, t.Trainer.User
	}), nil
}

// ListTrainerTrainings lists trainings of the trainer filtered by filter.
func (r *MemoryRepository) ListTrainerTrainings(ctx context.Context, username string, filter models.TrainingFilter) ([]models.Training, error) {
	defer r.read()()
	return r.listTrainings(filter, func(t models.Training) (bool, models.User) {
		return t.Trainer.User.Username == username, t.Trainee.User
	}), nil
}

// listTrainings applies filter to every training whose root matches; side
// reports root membership and returns the counterparty user.
func (r *MemoryRepository) listTrainings(filter models.TrainingFilter, side func(models.Training) (bool, models.User)) []models.Training {
	trainings := make([]models.Training, 0)
	for _, stored := range r.state.trainings.rows {
		training := stored
		training.Trainee = r.state.trainee(stored.TraineeID)
		training.Trainer = r.state.trainer(stored.TrainerID)
		training.TrainingType, _ = r.state.trainingTypes.get(stored.TrainingTypeID)

		belongs, counterparty := side(training)
		if !belongs {
			continue
		}
		if filter.From != nil && training.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && training.Date.After(*filter.To) {
			continue
		}
		if filter.CounterpartyName != "" && !strings.Contains(counterparty.FullName(), filter.CounterpartyName) {
			continue
		}
		if filter.TrainingTypeName != "" && training.TrainingType.Name != filter.TrainingTypeName {
			continue
		}
		trainings = append(trainings, training)
	}
	sort.Slice(trainings, func(i, j int) bool {
		if !trainings[i].Date.Equal(trainings[j].Date) {
			return trainings[i].Date.Before(trainings[j].Date)
		}
		return trainings[i].ID < trainings[j].ID
	})
	return trainings
}

// CreateTrainingType adds a training type.
func (r *MemoryRepository) CreateTrainingType(ctx context.Context, trainingType *models.TrainingType) error {
	defer r.write()()
	if _, exists := r.state.trainingTypes.find(func(t models.TrainingType) bool { return t.Name == trainingType.Name }); exists {
		return fmt.Errorf("training type %s already exists", trainingType.Name)
	}
	if trainingType.ID == 0 {
		trainingType.ID = r.state.newID()
	}
	r.state.trainingTypes.put(*trainingType)
	return nil
}

// GetTrainingTypeByID returns a training type by its ID.
func (r *MemoryRepository) GetTrainingTypeByID(ctx context.Context, id uint) (*models.TrainingType, error) {
	defer r.read()()
	trainingType, ok := r.state.trainingTypes.get(id)
	if !ok {
		return nil, fmt.Errorf("training type %d: %w", id, ErrNotFound)
	}
	return &trainingType, nil
}

// ListTrainingTypes returns all training types ordered by ID.
func (r *MemoryRepository) ListTrainingTypes(ctx context.Context) ([]models.TrainingType, error) {
	defer r.read()()
	types := make([]models.TrainingType, 0, len(r.state.trainingTypes.rows))
	for _, id := range r.state.trainingTypes.ids() {
		types = append(types, r.state.trainingTypes.rows[id])
	}
	return types, nil
}

// CreateSession stores a session.
func (r *MemoryRepository) CreateSession(ctx context.Context, session *models.Session) error {
	defer r.write()()
	r.state.sessions[session.ID] = *session
	return nil
}

// GetSession returns a session by its ID.
func (r *MemoryRepository) GetSession(ctx context.Context, id string) (*models.Session, error) {
	defer r.read()()
	session, ok := r.state.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return &session, nil
}

// DeleteSession removes a session.
func (r *MemoryRepository) DeleteSession(ctx context.Context, id string) error {
	defer r.write()()
	delete(r.state.sessions, id)
	return nil
}

// DeleteUserSessions removes every session of the user.
func (r *MemoryRepository) DeleteUserSessions(ctx context.Context, userID uint) error {
	defer r.write()()
	for id, session := range r.state.sessions {
		if session.UserID == userID {
			delete(r.state.sessions, id)
		}
	}
	return nil
}
