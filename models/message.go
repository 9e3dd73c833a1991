package models

import (
	"time"
)

// MessageDirection indicates whether a message was sent by the operator or received from the contact
type MessageDirection string

const (
	DirectionInbound  MessageDirection = "inbound"
	DirectionOutbound MessageDirection = "outbound"
)

// Valid reports whether the direction is a known value
func (d MessageDirection) Valid() bool {
	return d == DirectionInbound || d == DirectionOutbound
}

// MessageStatus tracks delivery progress of a message.
// Statuses only move forward; "failed" is terminal from any non-terminal state.
type MessageStatus string

const (
	MessageQueued    MessageStatus = "queued"
	MessageSending   MessageStatus = "sending"
	MessageSent      MessageStatus = "sent"
	MessageDelivered MessageStatus = "delivered"
	MessageFailed    MessageStatus = "failed"
)

// Valid reports whether the status is a known value
func (s MessageStatus) Valid() bool {
	switch s {
	case MessageQueued, MessageSending, MessageSent, MessageDelivered, MessageFailed:
		return true
	}
	return false
}

// Message represents a single message within a conversation.
// The auto-incrementing ID doubles as the polling cursor: clients fetch
// messages with id greater than the last id they have rendered.
// Rows are never deleted and only Status is ever updated.
type Message struct {
	ID              uint             `gorm:"primaryKey" json:"id"`
	ConversationID  uint             `gorm:"not null;index" json:"conversation_id"` // foreign key to conversations table
	Conversation    Conversation     `gorm:"foreignKey:ConversationID" json:"-"`
	SenderID        *uint            `gorm:"index" json:"sender_id"` // nullable, nil for inbound messages
	Sender          *User            `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Direction       MessageDirection `gorm:"not null" json:"direction"`
	MessageType     string           `gorm:"not null;default:'sms'" json:"message_type"` // display category ("sms", "note", ...)
	Body            string           `gorm:"type:text;not null" json:"body"`
	Status          MessageStatus    `gorm:"not null;default:'sent'" json:"status"`
	AttachmentS3Key *string          `json:"attachment_s3_key,omitempty"`          // nullable, S3 key for an uploaded attachment
	AttachmentURL   *string          `gorm:"-" json:"attachment_url,omitempty"`    // computed field, presigned URL for attachment
	CreatedAt       time.Time        `json:"created_at"`
}

// TableName specifies the table name for the Message model
func (Message) TableName() string {
	return "messages"
}
