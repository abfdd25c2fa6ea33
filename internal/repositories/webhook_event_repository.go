package repositories

import (
	"context"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"flyttman/internal/infra"
	dbm "flyttman/internal/models/db_models"
)

type WebhookEventRepository interface {
	// Record stores the event on first delivery and returns the journal row;
	// redeliveries return the existing row unchanged.
	Record(ctx context.Context, eventID, eventType string, payload []byte) (*dbm.StripeWebhookEvent, error)
	MarkProcessed(ctx context.Context, id uint, at time.Time) error
	MarkFailed(ctx context.Context, id uint, processingErr string) error
}

type webhookEventRepository struct {
	db *gorm.DB
}

func NewWebhookEventRepository(db *gorm.DB) WebhookEventRepository {
	return &webhookEventRepository{db: db}
}

func (r *webhookEventRepository) Record(ctx context.Context, eventID, eventType string, payload []byte) (*dbm.StripeWebhookEvent, error) {
	event := dbm.StripeWebhookEvent{}
	err := infra.Conn(ctx, r.db).
		Where(dbm.StripeWebhookEvent{EventID: eventID}).
		Attrs(dbm.StripeWebhookEvent{EventType: eventType, Payload: datatypes.JSON(payload)}).
		FirstOrCreate(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *webhookEventRepository) MarkProcessed(ctx context.Context, id uint, at time.Time) error {
	return infra.Conn(ctx, r.db).
		Model(&dbm.StripeWebhookEvent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"processed_at":     at,
			"processing_error": "",
		}).Error
}

func (r *webhookEventRepository) MarkFailed(ctx context.Context, id uint, processingErr string) error {
	return infra.Conn(ctx, r.db).
		Model(&dbm.StripeWebhookEvent{}).
		Where("id = ?", id).
		Update("processing_error", processingErr).Error
}
