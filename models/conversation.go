package models

import (
	"time"

	"gorm.io/gorm"
)

// Conversation represents a message thread with a single contact
type Conversation struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	ContactName  string         `gorm:"not null" json:"contact_name"`
	ContactPhone string         `gorm:"uniqueIndex;not null" json:"contact_phone"` // one thread per number
	LastReadID   uint           `gorm:"not null;default:0" json:"last_read_id"` // highest message id the operator has seen
	UnreadCount  int64          `gorm:"-" json:"unread_count"`                  // computed field, inbound messages past LastReadID
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Conversation model
func (Conversation) TableName() string {
	return "conversations"
}
