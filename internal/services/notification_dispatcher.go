package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"flyttman/internal/infra/metrics"
	dbm "flyttman/internal/models/db_models"
	"flyttman/internal/repositories"
)

type DispatcherConfig struct {
	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int
	Backoff      time.Duration
	// Lease hides claimed rows from other dispatchers while they are sent.
	Lease time.Duration
}

// NotificationDispatcher drains the tip email outbox. Several replicas may run
// one each; rows are claimed before sending. Delivery is at-least-once: a crash
// between sending and MarkSent resends the mail once the claim lease expires.
type NotificationDispatcher struct {
	outbox  repositories.OutboxRepository
	mailer  IMailService
	cfg     DispatcherConfig
	metrics *metrics.TipMetrics
	log     *zap.Logger
	now     func() time.Time
}

func NewNotificationDispatcher(
	outbox repositories.OutboxRepository,
	mailer IMailService,
	cfg DispatcherConfig,
	m *metrics.TipMetrics,
	log *zap.Logger,
) *NotificationDispatcher {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 20
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 30 * time.Second
	}
	if cfg.Lease <= 0 {
		cfg.Lease = 2 * time.Minute
	}
	return &NotificationDispatcher{
		outbox:  outbox,
		mailer:  mailer,
		cfg:     cfg,
		metrics: m,
		log:     log.Named("notification_dispatcher"),
		now:     time.Now,
	}
}

// Run polls the outbox until ctx is cancelled.
func (d *NotificationDispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.cfg.PollInterval)
	defer ticker.Stop()

	d.log.Info("notification dispatcher started", zap.Duration("interval", d.cfg.PollInterval))
	for {
		select {
		case <-ctx.Done():
			d.log.Info("notification dispatcher stopped")
			return
		case <-ticker.C:
			if _, err := d.DispatchDue(ctx); err != nil {
				d.log.Error("dispatch tip notifications", zap.Error(err))
			}
		}
	}
}

// DispatchDue sends one batch of due notifications and returns how many were
// delivered.
func (d *NotificationDispatcher) DispatchDue(ctx context.Context) (int, error) {
	rows, err := d.outbox.ClaimDue(ctx, d.now().UTC(), d.cfg.BatchSize, d.cfg.Lease)
	if err != nil {
		return 0, fmt.Errorf("claim due notifications: %w", err)
	}

	sent := 0
	for i := range rows {
		if ctx.Err() != nil {
			return sent, ctx.Err()
		}
		if d.deliver(ctx, &rows[i]) {
			sent++
		}
	}
	return sent, nil
}

func (d *NotificationDispatcher) deliver(ctx context.Context, n *dbm.TipNotification) bool {
	err := d.send(ctx, n)
	if err == nil {
		if err := d.outbox.MarkSent(ctx, n.ID, d.now().UTC()); err != nil {
			d.log.Error("mark notification sent", zap.String("id", n.ID.String()), zap.Error(err))
		}
		d.metrics.NotificationsTotal.WithLabelValues("sent").Inc()
		d.log.Info("tip notification sent",
			zap.String("order_id", n.OrderID), zap.String("recipient", n.Recipient))
		return true
	}

	attempts := n.Attempts + 1
	terminal := attempts >= d.cfg.MaxAttempts
	next := d.now().UTC().Add(time.Duration(attempts) * d.cfg.Backoff)
	if markErr := d.outbox.MarkAttemptFailed(ctx, n.ID, attempts, err.Error(), next, terminal); markErr != nil {
		d.log.Error("mark notification attempt failed", zap.String("id", n.ID.String()), zap.Error(markErr))
	}

	outcome := "retry"
	if terminal {
		outcome = "failed"
	}
	d.metrics.NotificationsTotal.WithLabelValues(outcome).Inc()
	d.log.Warn("tip notification failed",
		zap.String("order_id", n.OrderID),
		zap.Int("attempts", attempts),
		zap.Bool("terminal", terminal),
		zap.Error(err))
	return false
}

func (d *NotificationDispatcher) send(ctx context.Context, n *dbm.TipNotification) error {
	switch n.Kind {
	case dbm.NotificationTipReceived:
		var payload dbm.TipReceivedPayload
		if err := json.Unmarshal(n.Payload, &payload); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
		return d.mailer.SendTipReceived(ctx, n.Recipient, n.Locale, payload)
	default:
		return fmt.Errorf("unknown notification kind %q", n.Kind)
	}
}
