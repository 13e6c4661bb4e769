package handlers

import (
	"time"

	"gym/internal/models"
)

// TraineeRegistrationRequest is the body of POST /auth/trainee/register.
type TraineeRegistrationRequest struct {
	FirstName   string `json:"firstName" validate:"required,notblank,max=100"`
	LastName    string `json:"lastName" validate:"required,notblank,max=100"`
	DateOfBirth string `json:"dateOfBirth" validate:"omitempty,datetime=2006-01-02,notfuture"`
	Address     string `json:"address" validate:"max=255"`
}

// TrainerRegistrationRequest is the body of POST /auth/trainer/register.
type TrainerRegistrationRequest struct {
	FirstName        string `json:"firstName" validate:"required,notblank,max=100"`
	LastName         string `json:"lastName" validate:"required,notblank,max=100"`
	SpecializationID uint   `json:"specializationId" validate:"required"`
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ChangePasswordRequest is the body of PUT /auth/change-password.
type ChangePasswordRequest struct {
	Username    string `json:"username" validate:"required"`
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

type TraineeUpdateRequest struct {
	FirstName   string `json:"firstName" validate:"required,notblank,max=100"`
	LastName    string `json:"lastName" validate:"required,notblank,max=100"`
	DateOfBirth string `json:"dateOfBirth" validate:"omitempty,datetime=2006-01-02,notfuture"`
	Address     string `json:"address" validate:"max=255"`
	IsActive    *bool  `json:"isActive" validate:"required"`
}

type TrainerUpdateRequest struct {
	FirstName        string `json:"firstName" validate:"required,notblank,max=100"`
	LastName         string `json:"lastName" validate:"required,notblank,max=100"`
	SpecializationID *uint  `json:"specializationId"`
	IsActive         *bool  `json:"isActive" validate:"required"`
}

type StatusRequest struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

// TrainerListRequest replaces the trainers of a trainee. An empty list is
// allowed and removes every trainer.
type TrainerListRequest struct {
	TrainerUsernames []string `json:"trainerUsernames" validate:"required,dive,required"`
}

// TrainingRequest is the body of POST /trainings.
type TrainingRequest struct {
	TraineeUsername  string `json:"traineeUsername" validate:"required"`
	TrainerUsername  string `json:"trainerUsername" validate:"required"`
	TrainingName     string `json:"trainingName" validate:"required,notblank,max=150"`
	TrainingDate     string `json:"trainingDate" validate:"required,datetime=2006-01-02,notpast"`
	TrainingDuration int    `json:"trainingDuration" validate:"required,min=1"`
}

type TrainerSummary struct {
	Username       string `json:"username"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Specialization string `json:"specialization"`
}

type TraineeSummary struct {
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type TraineeProfileResponse struct {
	Username    string           `json:"username"`
	FirstName   string           `json:"firstName"`
	LastName    string           `json:"lastName"`
	DateOfBirth string           `json:"dateOfBirth,omitempty"`
	Address     string           `json:"address,omitempty"`
	IsActive    bool             `json:"isActive"`
	Trainers    []TrainerSummary `json:"trainers"`
}

type TrainerProfileResponse struct {
	Username       string              `json:"username"`
	FirstName      string              `json:"firstName"`
	LastName       string              `json:"lastName"`
	Specialization models.TrainingType `json:"specialization"`
	IsActive       bool                `json:"isActive"`
	Trainees       []TraineeSummary    `json:"trainees"`
}

// TrainingResponse is one training as seen from one side. The counterparty
// is the trainer in trainee listings and the trainee in trainer listings.
type TrainingResponse struct {
	TrainingName         string `json:"trainingName"`
	TrainingDate         string `json:"trainingDate"`
	TrainingType         string `json:"trainingType"`
	TrainingDuration     int    `json:"trainingDuration"`
	CounterpartyUsername string `json:"counterpartyUsername"`
	CounterpartyName     string `json:"counterpartyName"`
}

func parseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	d, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.DateOnly)
}

func trainerSummary(trainer models.Trainer) TrainerSummary {
	return TrainerSummary{
		Username:       trainer.User.Username,
		FirstName:      trainer.User.FirstName,
		LastName:       trainer.User.LastName,
		Specialization: trainer.Specialization.Name,
	}
}

func trainerSummaries(trainers []models.Trainer) []TrainerSummary {
	out := make([]TrainerSummary, 0, len(trainers))
	for _, trainer := range trainers {
		out = append(out, trainerSummary(trainer))
	}
	return out
}

func traineeProfile(trainee *models.TraineeWithTrainers) TraineeProfileResponse {
	return TraineeProfileResponse{
		Username:    trainee.User.Username,
		FirstName:   trainee.User.FirstName,
		LastName:    trainee.User.LastName,
		DateOfBirth: formatDate(trainee.DateOfBirth),
		Address:     trainee.Address,
		IsActive:    trainee.User.IsActive,
		Trainers:    trainerSummaries(trainee.Trainers),
	}
}

func trainerProfile(trainer *models.TrainerWithTrainees) TrainerProfileResponse {
	trainees := make([]TraineeSummary, 0, len(trainer.Trainees))
	for _, trainee := range trainer.Trainees {
		trainees = append(trainees, TraineeSummary{
			Username:  trainee.User.Username,
			FirstName: trainee.User.FirstName,
			LastName:  trainee.User.LastName,
		})
	}
	return TrainerProfileResponse{
		Username:       trainer.User.Username,
		FirstName:      trainer.User.FirstName,
		LastName:       trainer.User.LastName,
		Specialization: trainer.Specialization,
		IsActive:       trainer.User.IsActive,
		Trainees:       trainees,
	}
}

func trainingResponses(trainings []models.Training, counterparty func(models.Training) models.User) []TrainingResponse {
	out := make([]TrainingResponse, 0, len(trainings))
	for _, training := range trainings {
		user := counterparty(training)
		out = append(out, TrainingResponse{
			TrainingName:         training.Name,
			TrainingDate:         training.Date.Format(time.DateOnly),
			TrainingType:         training.TrainingType.Name,
			TrainingDuration:     training.Duration,
			CounterpartyUsername: user.Username,
			CounterpartyName:     user.FullName(),
		})
	}
	return out
}

func trainerOf(training models.Training) models.User { return training.Trainer.User }

func traineeOf(training models.Training) models.User { return training.Trainee.User }
