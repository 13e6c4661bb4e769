package models

import "time"

// Trainee is a User with the trainee role.
type Trainee struct {
	ID          uint       `json:"-" gorm:"primaryKey"`
	UserID      uint       `json:"-" gorm:"uniqueIndex;not null"`
	User        User       `json:"user" gorm:"constraint:OnDelete:CASCADE"`
	DateOfBirth *time.Time `json:"dateOfBirth,omitempty" gorm:"type:date"`
	Address     string     `json:"address,omitempty" gorm:"type:varchar(255)"`
}

// TraineeTrainer is one row of the trainee/trainer association. A single row
// represents both directions, so the two sides of the relationship cannot diverge.
type TraineeTrainer struct {
	TraineeID uint `gorm:"primaryKey;autoIncrement:false"`
	TrainerID uint `gorm:"primaryKey;autoIncrement:false;index"`
}

// TraineeWithTrainers is a trainee together with its associated trainers.
type TraineeWithTrainers struct {
	Trainee
	Trainers []Trainer
}

// HasTrainer reports whether the trainer with the given id is associated.
func (t TraineeWithTrainers) HasTrainer(trainerID uint) bool {
	for _, trainer := range t.Trainers {
		if trainer.ID == trainerID {
			return true
		}
	}
	return false
}
