package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"flyttman/internal/infra"
	"flyttman/internal/infra/events"
	"flyttman/internal/infra/metrics"
	dbm "flyttman/internal/models/db_models"
	"flyttman/internal/repositories"
	"flyttman/pkg/utils"
)

type TipPaymentSucceeded struct {
	OrderID         string
	Amount          decimal.Decimal // major units (SEK)
	CustomerEmail   string
	DriverID        string
	PaymentIntentID string
}

// TipStatusService applies payment outcomes reported by Stripe to checkout rows.
// Both handlers are safe to call again for the same order: a paid tip is never
// overwritten and never produces a second notification.
type TipStatusService interface {
	HandleTipSucceeded(ctx context.Context, p TipPaymentSucceeded) error
	HandleTipFailed(ctx context.Context, orderID string) error
}

type tipStatusService struct {
	tx        infra.Transactor
	tips      repositories.TipRepository
	outbox    repositories.OutboxRepository
	publisher events.TipPublisher
	metrics   *metrics.TipMetrics
	log       *zap.Logger
	locale    string
	now       func() time.Time
}

func NewTipStatusService(
	tx infra.Transactor,
	tips repositories.TipRepository,
	outbox repositories.OutboxRepository,
	publisher events.TipPublisher,
	m *metrics.TipMetrics,
	log *zap.Logger,
	locale string,
) TipStatusService {
	return &tipStatusService{
		tx:        tx,
		tips:      tips,
		outbox:    outbox,
		publisher: publisher,
		metrics:   m,
		log:       log.Named("tip_status"),
		locale:    locale,
		now:       utils.NowUTC,
	}
}

func (s *tipStatusService) HandleTipSucceeded(ctx context.Context, p TipPaymentSucceeded) error {
	paidAt := s.now().UTC()
	applied := false
	notified := false

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		changed, err := s.tips.MarkTipPaid(ctx, p.OrderID, paidAt)
		if err != nil {
			return fmt.Errorf("mark tip paid for order %s: %w", p.OrderID, err)
		}
		if !changed {
			return nil
		}
		applied = true

		recipient, err := s.tips.FindTipRecipient(ctx, p.OrderID, p.DriverID)
		if err != nil {
			return fmt.Errorf("find tip recipient for order %s: %w", p.OrderID, err)
		}
		if recipient == nil {
			s.log.Warn("no assigned driver found for paid tip",
				zap.String("order_id", p.OrderID), zap.String("driver_id", p.DriverID))
			return nil
		}

		payload := dbm.TipReceivedPayload{
			DriverName: recipient.DriverName,
			SenderName: recipient.CustomerName,
			Amount:     p.Amount.StringFixed(2),
			Currency:   "SEK",
			PaidAt:     utils.FormatDisplaySE(paidAt),
		}
		if recipient.TipMessage != nil {
			payload.Message = *recipient.TipMessage
		}
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode tip notification: %w", err)
		}

		if err := s.outbox.Enqueue(ctx, &dbm.TipNotification{
			OrderID:       p.OrderID,
			DriverID:      recipient.DriverID,
			Recipient:     recipient.DriverEmail,
			Kind:          dbm.NotificationTipReceived,
			Locale:        s.locale,
			Payload:       datatypes.JSON(raw),
			Status:        dbm.OutboxStatusPending,
			NextAttemptAt: paidAt,
		}); err != nil {
			return fmt.Errorf("enqueue tip notification for order %s: %w", p.OrderID, err)
		}
		notified = true
		return nil
	})
	if err != nil {
		return err
	}

	if !applied {
		s.skipped(ctx, p.OrderID, EventPaymentIntentSucceeded)
		return nil
	}

	amount, _ := p.Amount.Float64()
	s.metrics.TipsPaidTotal.Inc()
	s.metrics.TipsPaidAmountTotal.Add(amount)
	s.log.Info("tip marked as paid",
		zap.String("order_id", p.OrderID),
		zap.String("amount", p.Amount.StringFixed(2)),
		zap.String("payment_intent", p.PaymentIntentID),
		zap.Bool("notification_queued", notified))

	publishTipEvent(ctx, s.publisher, s.log, events.TipEvent{
		Type:       events.TipPaid,
		OrderID:    p.OrderID,
		DriverID:   p.DriverID,
		Amount:     p.Amount.StringFixed(2),
		Currency:   "SEK",
		Status:     string(dbm.TipStatusPaid),
		OccurredAt: paidAt,
	})
	return nil
}

func (s *tipStatusService) HandleTipFailed(ctx context.Context, orderID string) error {
	changed := false
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		changed, err = s.tips.MarkTipFailed(ctx, orderID)
		if err != nil {
			return fmt.Errorf("mark tip failed for order %s: %w", orderID, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if !changed {
		s.skipped(ctx, orderID, EventPaymentIntentFailed)
		return nil
	}

	s.metrics.TipsFailedTotal.Inc()
	s.log.Info("tip marked as failed", zap.String("order_id", orderID))

	publishTipEvent(ctx, s.publisher, s.log, events.TipEvent{
		Type:       events.TipFailed,
		OrderID:    orderID,
		Status:     string(dbm.TipStatusFailed),
		OccurredAt: s.now().UTC(),
	})
	return nil
}

// skipped logs why an update changed nothing: the order is unknown, the
// delivery repeats an applied status, or no tip was started for the order.
func (s *tipStatusService) skipped(ctx context.Context, orderID, eventType string) {
	checkout, err := s.tips.FindCheckout(ctx, orderID)
	switch {
	case err != nil:
		s.log.Warn("status update skipped", zap.String("order_id", orderID), zap.Error(err))
	case checkout == nil:
		s.log.Warn("status update for unknown order", zap.String("order_id", orderID))
	case checkout.TipStatus == dbm.TipStatusPaid || checkout.TipStatus == dbm.TipStatusFailed:
		s.metrics.DuplicateDeliveries.WithLabelValues(eventType).Inc()
		s.log.Info("tip status already applied, skipping",
			zap.String("order_id", orderID), zap.String("tip_status", string(checkout.TipStatus)))
	default:
		s.log.Warn("status update for order without a started tip",
			zap.String("order_id", orderID), zap.String("tip_status", string(checkout.TipStatus)))
	}
}

func publishTipEvent(ctx context.Context, publisher events.TipPublisher, log *zap.Logger, event events.TipEvent) {
	if err := publisher.Publish(ctx, event); err != nil {
		log.Warn("failed to publish tip event",
			zap.String("type", string(event.Type)), zap.String("order_id", event.OrderID), zap.Error(err))
	}
}
