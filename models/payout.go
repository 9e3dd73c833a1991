package models

import (
	"math"
	"time"
)

// PayoutStatus tracks a payout through the external payment processor.
// "pending" payouts are picked up for processing; "completed" and
// "failed" are terminal.
type PayoutStatus string

const (
	PayoutPending    PayoutStatus = "pending"
	PayoutProcessing PayoutStatus = "processing"
	PayoutCompleted  PayoutStatus = "completed"
	PayoutFailed     PayoutStatus = "failed"
)

// Valid reports whether the status is a known value
func (s PayoutStatus) Valid() bool {
	switch s {
	case PayoutPending, PayoutProcessing, PayoutCompleted, PayoutFailed:
		return true
	}
	return false
}

// Payout represents an aggregated disbursement owed to a trainer for
// completed sessions within a period. Rows are audit records and are
// never deleted.
type Payout struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	TrainerID     uint         `gorm:"not null;index" json:"trainer_id"` // foreign key to trainers table
	Trainer       Trainer      `gorm:"foreignKey:TrainerID" json:"-"`
	Reference     string       `gorm:"uniqueIndex;not null" json:"reference"` // stable id sent to the payment processor
	Amount        float64      `gorm:"not null" json:"amount"`
	PeriodStart   time.Time    `gorm:"not null" json:"period_start"`
	PeriodEnd     time.Time    `gorm:"not null" json:"period_end"`
	Status        PayoutStatus `gorm:"not null;default:'pending';index" json:"status"`
	ProviderID    *string      `json:"provider_id"` // nullable, id assigned by the payment processor
	ProcessedAt   *time.Time   `json:"processed_at"`
	FailureReason *string      `json:"failure_reason"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// AmountCents returns the payout amount in whole cents, rounded to the
// nearest cent. Session aggregation can produce sub-cent amounts, and a
// truncating cast would underpay by up to a cent.
func (p *Payout) AmountCents() int64 {
	return int64(math.Round(p.Amount * 100))
}

// TableName specifies the table name for the Payout model
func (Payout) TableName() string {
	return "payouts"
}
