package models

import "time"

// Training is an immutable record of a session between a trainee and a trainer.
// TrainingTypeID is copied from the trainer's specialization when the record is created.
type Training struct {
	ID             uint         `json:"-" gorm:"primaryKey"`
	TraineeID      uint         `json:"-" gorm:"not null;index"`
	Trainee        Trainee      `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	TrainerID      uint         `json:"-" gorm:"not null;index"`
	Trainer        Trainer      `json:"-" gorm:"constraint:OnDelete:RESTRICT"`
	TrainingTypeID uint         `json:"-" gorm:"not null"`
	TrainingType   TrainingType `json:"-" gorm:"constraint:OnDelete:RESTRICT"`
	Name           string       `json:"trainingName" gorm:"type:varchar(150);not null"`
	Date           time.Time    `json:"trainingDate" gorm:"type:date;not null;index"`
	Duration       int          `json:"trainingDuration" gorm:"not null"` // minutes
	CreatedAt      time.Time    `json:"-"`
}

// TrainingFilter narrows a trainings listing. Nil dates and empty names add no predicate.
type TrainingFilter struct {
	From             *time.Time
	To               *time.Time
	CounterpartyName string
	TrainingTypeName string
}

// DateOnly truncates t to midnight UTC of its calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
