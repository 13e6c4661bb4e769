package models

import "time"

// User holds the identity and credentials shared by trainees and trainers.
type User struct {
	ID        uint      `json:"-" gorm:"primaryKey"`
	FirstName string    `json:"firstName" gorm:"type:varchar(100);not null"`
	LastName  string    `json:"lastName" gorm:"type:varchar(100);not null"`
	Username  string    `json:"username" gorm:"uniqueIndex;type:varchar(210);not null"`
	Password  string    `json:"-" gorm:"type:varchar(255);not null"` // bcrypt digest, never serialized
	IsActive  bool      `json:"isActive" gorm:"not null;default:true"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// FullName joins first and last name with a single space.
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}
