package entities

import (
	"time"

	"github.com/volatiletech/null/v8"
)

// TransferStatus represents the status of a transfer
type TransferStatus string

const (
	TransferStatusPending   TransferStatus = "pending"
	TransferStatusCompleted TransferStatus = "completed"
	TransferStatusFailed    TransferStatus = "failed"
)

// PaymentTemplate is the persisted record of a submitted batch. It is the
// backend's source of truth: transfers are created once at submission time
// and never mutated afterwards; replay re-derives calls from them.
//
// ScheduledAt is the next (or only) execution time. RecurringInterval is
// the period between executions in milliseconds; null for one-shot
// templates. Milliseconds are the canonical schedule unit everywhere in
// memory and in the database; only the CSV layer speaks seconds.
type PaymentTemplate struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	UserID      uint   `gorm:"not null;index" json:"user_id"`
	Name        string `gorm:"not null" json:"name"`
	IsCancelled bool   `gorm:"not null" json:"is_cancelled"`

	ScheduledAt       null.Time  `json:"scheduled_at,omitempty"`
	RecurringInterval null.Int64 `json:"recurring_interval,omitempty"`

	User      User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Transfers []Transfer `gorm:"foreignKey:PaymentTemplateID" json:"transfers,omitempty"`
}

// TableName specifies the table name for PaymentTemplate
func (PaymentTemplate) TableName() string {
	return "payment_templates"
}

// IsRecurring reports whether the template repeats after execution.
func (t *PaymentTemplate) IsRecurring() bool {
	return t.RecurringInterval.Valid && t.RecurringInterval.Int64 > 0
}

// Transfer represents one declared asset movement inside a template.
// Amount is a human-scale decimal string; scaling to the asset's smallest
// unit happens at the call-encoding boundary only.
type Transfer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	SourceUserID           uint           `gorm:"not null;index" json:"source_user_id"`
	DestinationUserAddress string         `gorm:"not null;size:42" json:"destination_user_address"`
	PaymentTemplateID      *uint          `gorm:"index" json:"payment_template_id,omitempty"`
	Amount                 string         `gorm:"not null;type:decimal(36,18)" json:"amount"`
	AssetID                uint           `gorm:"not null;index" json:"asset_id"`
	Status                 TransferStatus `gorm:"not null;default:'pending'" json:"status"`

	SourceUser User  `gorm:"foreignKey:SourceUserID" json:"source_user,omitempty"`
	Asset      Asset `gorm:"foreignKey:AssetID" json:"asset,omitempty"`
}

// TableName specifies the table name for Transfer
func (Transfer) TableName() string {
	return "transfers"
}
