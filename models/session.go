package models

import (
	"time"

	"gorm.io/gorm"
)

// SessionStatus is the scheduling state of a training session
type SessionStatus string

const (
	SessionScheduled SessionStatus = "scheduled"
	SessionCompleted SessionStatus = "completed"
	SessionCancelled SessionStatus = "cancelled"
)

// Valid reports whether the status is a known value
func (s SessionStatus) Valid() bool {
	switch s {
	case SessionScheduled, SessionCompleted, SessionCancelled:
		return true
	}
	return false
}

// Session represents a booked training session. Completed sessions are
// what payout amounts are aggregated over.
type Session struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	TrainerID       uint           `gorm:"not null;index" json:"trainer_id"` // foreign key to trainers table
	Trainer         Trainer        `gorm:"foreignKey:TrainerID" json:"-"`
	ClientName      string         `gorm:"not null" json:"client_name"`
	ScheduledAt     time.Time      `gorm:"not null;index" json:"scheduled_at"`
	DurationMinutes int            `gorm:"not null;check:duration_minutes > 0" json:"duration_minutes"`
	Rate            float64        `gorm:"not null" json:"rate"` // hourly rate locked in at booking time
	Status          SessionStatus  `gorm:"not null;default:'scheduled'" json:"status"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Session model
func (Session) TableName() string {
	return "sessions"
}
