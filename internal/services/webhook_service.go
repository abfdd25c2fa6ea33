package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"

	"flyttman/internal/infra/metrics"
	"flyttman/internal/repositories"
)

const (
	EventPaymentIntentSucceeded = "payment_intent.succeeded"
	EventPaymentIntentFailed    = "payment_intent.payment_failed"
)

// WebhookService turns verified Stripe events into tip status updates.
type WebhookService interface {
	VerifyEvent(payload []byte, signature string) (stripe.Event, error)
	HandleEvent(ctx context.Context, event stripe.Event, payload []byte) error
}

type webhookService struct {
	verifier WebhookVerifier
	journal  repositories.WebhookEventRepository
	tips     TipStatusService
	metrics  *metrics.TipMetrics
	log      *zap.Logger
	now      func() time.Time
}

func NewWebhookService(
	verifier WebhookVerifier,
	journal repositories.WebhookEventRepository,
	tips TipStatusService,
	m *metrics.TipMetrics,
	log *zap.Logger,
) WebhookService {
	return &webhookService{
		verifier: verifier,
		journal:  journal,
		tips:     tips,
		metrics:  m,
		log:      log.Named("webhook"),
		now:      time.Now,
	}
}

func (s *webhookService) VerifyEvent(payload []byte, signature string) (stripe.Event, error) {
	return s.verifier.ConstructEvent(payload, signature)
}

func (s *webhookService) HandleEvent(ctx context.Context, event stripe.Event, payload []byte) error {
	start := s.now()
	eventType := string(event.Type)
	defer func() { s.metrics.WebhookDuration.Observe(time.Since(start).Seconds()) }()

	entry, err := s.journal.Record(ctx, event.ID, eventType, payload)
	if err != nil {
		s.metrics.WebhookEventsTotal.WithLabelValues(eventType, "error").Inc()
		return fmt.Errorf("record webhook event %s: %w", event.ID, err)
	}
	if entry.ProcessedAt != nil {
		s.log.Info("webhook event already processed",
			zap.String("event_id", event.ID), zap.String("event_type", eventType))
		s.metrics.WebhookEventsTotal.WithLabelValues(eventType, "duplicate").Inc()
		return nil
	}

	outcome, err := s.dispatch(ctx, event)
	if err != nil {
		if markErr := s.journal.MarkFailed(ctx, entry.ID, err.Error()); markErr != nil {
			s.log.Warn("failed to record webhook processing error", zap.Error(markErr))
		}
		s.metrics.WebhookEventsTotal.WithLabelValues(eventType, "error").Inc()
		return err
	}

	if err := s.journal.MarkProcessed(ctx, entry.ID, s.now()); err != nil {
		s.log.Warn("failed to mark webhook event processed",
			zap.String("event_id", event.ID), zap.Error(err))
	}
	s.metrics.WebhookEventsTotal.WithLabelValues(eventType, outcome).Inc()
	return nil
}

func (s *webhookService) dispatch(ctx context.Context, event stripe.Event) (string, error) {
	eventType := string(event.Type)

	switch eventType {
	case EventPaymentIntentSucceeded, EventPaymentIntentFailed:
	default:
		s.log.Info("unhandled event type", zap.String("event_type", eventType), zap.String("event_id", event.ID))
		return "ignored", nil
	}

	var pi stripe.PaymentIntent
	if event.Data == nil || len(event.Data.Raw) == 0 {
		return "", fmt.Errorf("event %s has no data object", event.ID)
	}
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return "", fmt.Errorf("decode payment intent from event %s: %w", event.ID, err)
	}

	if pi.Metadata[metaPaymentType] != PaymentTypeTip {
		s.log.Info("ignoring non-tip payment intent",
			zap.String("payment_intent", pi.ID), zap.String("payment_type", pi.Metadata[metaPaymentType]))
		return "ignored", nil
	}

	orderID := pi.Metadata[metaOrderID]
	if orderID == "" {
		s.log.Warn("tip payment intent without order_id metadata", zap.String("payment_intent", pi.ID))
		return "ignored", nil
	}

	if eventType == EventPaymentIntentSucceeded {
		err := s.tips.HandleTipSucceeded(ctx, TipPaymentSucceeded{
			OrderID:         orderID,
			Amount:          decimal.New(pi.Amount, -2),
			CustomerEmail:   pi.Metadata[metaCustomerEmail],
			DriverID:        pi.Metadata[metaDriverID],
			PaymentIntentID: pi.ID,
		})
		if err != nil {
			return "", err
		}
		return "processed", nil
	}

	if err := s.tips.HandleTipFailed(ctx, orderID); err != nil {
		return "", err
	}
	return "processed", nil
}
