package models

// TrainingType is a read-only lookup row, also used as a trainer specialization.
type TrainingType struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"trainingTypeName" gorm:"uniqueIndex;type:varchar(100);not null"`
}
