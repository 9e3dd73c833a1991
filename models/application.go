package models

import (
	"time"
)

// ApplicationStatus is the review state of a trainer application.
// "pending" is the initial state; "approved" and "rejected" are both terminal.
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationApproved ApplicationStatus = "approved"
	ApplicationRejected ApplicationStatus = "rejected"
)

// Valid reports whether the status is a known value
func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationPending, ApplicationApproved, ApplicationRejected:
		return true
	}
	return false
}

// Application represents a prospective trainer's intake record awaiting review.
// Review fields are written exactly once, by the approve or reject transition.
type Application struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	FirstName   string            `gorm:"not null" json:"first_name"`
	LastName    string            `gorm:"not null" json:"last_name"`
	Email       string            `gorm:"index;not null" json:"email"`
	Phone       string            `json:"phone"`
	RoleType    string            `gorm:"not null;default:'trainer'" json:"role_type"`
	Specialties string            `json:"specialties"`
	Bio         string            `gorm:"type:text" json:"bio"`
	Experience  string            `gorm:"type:text" json:"experience"`
	Status      ApplicationStatus `gorm:"not null;default:'pending';index" json:"status"`
	ReviewedBy  *uint             `json:"reviewed_by"` // nullable, foreign key to users table
	ReviewedAt  *time.Time        `json:"reviewed_at"`
	AdminNotes  *string           `json:"admin_notes"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// TableName specifies the table name for the Application model
func (Application) TableName() string {
	return "applications"
}
