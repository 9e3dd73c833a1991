package models

import (
	"time"

	"gorm.io/gorm"
)

// TrainerStatus is the administrative status of a trainer profile.
// It is adjusted independently of the originating application's state.
type TrainerStatus string

const (
	TrainerApproved TrainerStatus = "approved"
	TrainerPending  TrainerStatus = "pending"
	TrainerInactive TrainerStatus = "inactive"
)

// Valid reports whether the status is a known value
func (s TrainerStatus) Valid() bool {
	switch s {
	case TrainerApproved, TrainerPending, TrainerInactive:
		return true
	}
	return false
}

// Trainer represents an approved trainer's marketplace profile.
// Exactly one Trainer exists per approved Application; the unique
// ApplicationID column is what makes provisioning idempotent.
type Trainer struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	UserID        uint           `gorm:"not null;uniqueIndex" json:"user_id"` // foreign key to users table
	User          User           `gorm:"foreignKey:UserID" json:"-"`
	ApplicationID uint           `gorm:"not null;uniqueIndex" json:"application_id"` // foreign key to applications table
	Application   Application    `gorm:"foreignKey:ApplicationID" json:"-"`
	Slug          string         `gorm:"uniqueIndex;not null" json:"slug"` // name-derived, numeric suffix on collision
	DisplayName   string         `gorm:"not null" json:"display_name"`
	Email         string         `gorm:"not null" json:"email"`
	Phone         string         `json:"phone"`
	Specialties   string         `json:"specialties"`
	Bio           string         `gorm:"type:text" json:"bio"`
	HourlyRate    float64        `gorm:"not null" json:"hourly_rate"`
	Status        TrainerStatus  `gorm:"not null;default:'approved'" json:"status"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Trainer model
func (Trainer) TableName() string {
	return "trainers"
}
