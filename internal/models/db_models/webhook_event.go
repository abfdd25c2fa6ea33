package db_models

import (
	"time"

	"gorm.io/datatypes"
)

// StripeWebhookEvent journals every verified Stripe delivery by event id.
type StripeWebhookEvent struct {
	ID              uint           `gorm:"primaryKey"`
	EventID         string         `gorm:"column:event_id;size:255;uniqueIndex;not null"`
	EventType       string         `gorm:"column:event_type;size:100;index;not null"`
	Payload         datatypes.JSON `gorm:"column:payload;not null"`
	ProcessedAt     *time.Time     `gorm:"column:processed_at"`
	ProcessingError string         `gorm:"column:processing_error;type:text"`
	CreatedAt       time.Time      `gorm:"autoCreateTime"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime"`
}

func (StripeWebhookEvent) TableName() string { return "stripe_webhook_events" }
