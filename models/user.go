package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a user in the system (operator, admin, or trainer)
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Auth0ID      string         `gorm:"uniqueIndex;not null" json:"auth0_id"` // Auth0 user ID (from 'sub' claim), or a provisioning placeholder
	Name         string         `gorm:"not null" json:"name"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	Role         string         `gorm:"not null;default:'operator'" json:"role"` // "operator", "admin" or "trainer"
	PasswordHash *string        `json:"-"`                                       // nullable, set for provisioned trainer accounts
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}
