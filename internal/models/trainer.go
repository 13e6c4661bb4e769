package models

// Trainer is a User with the trainer role. Specialization is fixed at creation.
type Trainer struct {
	ID               uint         `json:"-" gorm:"primaryKey"`
	UserID           uint         `json:"-" gorm:"uniqueIndex;not null"`
	User             User         `json:"user" gorm:"constraint:OnDelete:CASCADE"`
	SpecializationID uint         `json:"-" gorm:"not null;index"`
	Specialization   TrainingType `json:"specialization" gorm:"constraint:OnDelete:RESTRICT"`
}

// TrainerWithTrainees is a trainer together with its associated trainees.
type TrainerWithTrainees struct {
	Trainer
	Trainees []Trainee
}
