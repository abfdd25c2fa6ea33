package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"flyttman/internal/infra"
	dbm "flyttman/internal/models/db_models"
)

type OutboxRepository interface {
	Enqueue(ctx context.Context, n *dbm.TipNotification) error
	ClaimDue(ctx context.Context, now time.Time, limit int, lease time.Duration) ([]dbm.TipNotification, error)
	MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkAttemptFailed(ctx context.Context, id uuid.UUID, attempts int, lastErr string, nextAttemptAt time.Time, terminal bool) error
}

type outboxRepository struct {
	db *gorm.DB
}

func NewOutboxRepository(db *gorm.DB) OutboxRepository {
	return &outboxRepository{db: db}
}

func (r *outboxRepository) Enqueue(ctx context.Context, n *dbm.TipNotification) error {
	return infra.Conn(ctx, r.db).Create(n).Error
}

// ClaimDue locks up to limit due pending rows, oldest first, and moves their
// next_attempt_at to now+lease so other dispatchers skip them until the lease
// runs out. Locked rows are skipped, not waited on.
func (r *outboxRepository) ClaimDue(ctx context.Context, now time.Time, limit int, lease time.Duration) ([]dbm.TipNotification, error) {
	var rows []dbm.TipNotification
	err := infra.Conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("status = ? AND next_attempt_at <= ?", dbm.OutboxStatusPending, now).
			Order("created_at ASC").
			Limit(limit).
			Find(&rows).Error
		if err != nil || len(rows) == 0 {
			return err
		}

		ids := make([]uuid.UUID, len(rows))
		for i := range rows {
			ids[i] = rows[i].ID
		}
		return tx.Model(&dbm.TipNotification{}).
			Where("id IN ?", ids).
			Update("next_attempt_at", now.Add(lease)).Error
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *outboxRepository) MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	return infra.Conn(ctx, r.db).
		Model(&dbm.TipNotification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     dbm.OutboxStatusSent,
			"sent_at":    at,
			"last_error": "",
		}).Error
}

func (r *outboxRepository) MarkAttemptFailed(ctx context.Context, id uuid.UUID, attempts int, lastErr string, nextAttemptAt time.Time, terminal bool) error {
	status := dbm.OutboxStatusPending
	if terminal {
		status = dbm.OutboxStatusFailed
	}
	return infra.Conn(ctx, r.db).
		Model(&dbm.TipNotification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":          status,
			"attempts":        attempts,
			"last_error":      lastErr,
			"next_attempt_at": nextAttemptAt,
		}).Error
}
