package db_models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type OutboxStatus string

const (
	OutboxStatusPending OutboxStatus = "pending"
	OutboxStatusSent    OutboxStatus = "sent"
	OutboxStatusFailed  OutboxStatus = "failed"
)

const NotificationTipReceived = "tip_received"

// TipNotification is an email waiting to be delivered. Rows are written in the
// same transaction as the tip status change and drained by the dispatcher.
type TipNotification struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey"`
	OrderID       string         `gorm:"column:order_id;index;size:64;not null"`
	DriverID      string         `gorm:"column:driver_id;size:64;not null"`
	Recipient     string         `gorm:"column:recipient;not null"`
	Kind          string         `gorm:"column:kind;size:32;not null"`
	Locale        string         `gorm:"column:locale;size:8;not null"`
	Payload       datatypes.JSON `gorm:"column:payload;not null"`
	Status        OutboxStatus   `gorm:"column:status;size:16;index;not null"`
	Attempts      int            `gorm:"column:attempts;not null;default:0"`
	LastError     string         `gorm:"column:last_error;type:text"`
	NextAttemptAt time.Time      `gorm:"column:next_attempt_at;index;not null"`
	SentAt        *time.Time     `gorm:"column:sent_at"`
	CreatedAt     time.Time      `gorm:"column:created_at;autoCreateTime"`
}

func (TipNotification) TableName() string { return "tip_notification_outbox" }

func (n *TipNotification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.Status == "" {
		n.Status = OutboxStatusPending
	}
	return nil
}

// TipReceivedPayload is the template data stored with a tip_received row.
type TipReceivedPayload struct {
	DriverName string `json:"driver_name"`
	SenderName string `json:"sender_name"`
	Amount     string `json:"amount"`
	Currency   string `json:"currency"`
	Message    string `json:"message,omitempty"`
	PaidAt     string `json:"paid_at,omitempty"` // Stockholm local time
}
