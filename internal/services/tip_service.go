package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"flyttman/internal/infra/events"
	"flyttman/internal/infra/metrics"
	dbm "flyttman/internal/models/db_models"
	"flyttman/internal/repositories"
	"flyttman/pkg/utils"
)

type AddTipInput struct {
	OrderID       string
	CustomerID    string
	CustomerEmail string // from the token; used when the customer row has none
	Amount        decimal.Decimal
	Message       string
}

type AddTipResult struct {
	ClientSecret    string
	PaymentIntentID string
	Amount          decimal.Decimal
}

type TipServiceInterface interface {
	AddTip(ctx context.Context, in AddTipInput) (*AddTipResult, error)
}

type TipService struct {
	tips      repositories.TipRepository
	gateway   PaymentGateway
	publisher events.TipPublisher
	metrics   *metrics.TipMetrics
	log       *zap.Logger
}

func NewTipService(
	tips repositories.TipRepository,
	gateway PaymentGateway,
	publisher events.TipPublisher,
	m *metrics.TipMetrics,
	log *zap.Logger,
) TipServiceInterface {
	return &TipService{
		tips:      tips,
		gateway:   gateway,
		publisher: publisher,
		metrics:   m,
		log:       log.Named("tips"),
	}
}

// AddTip creates a PaymentIntent for a tip on one of the caller's orders and
// records the tip as pending. The customer completes the payment client-side
// with the returned client secret.
func (s *TipService) AddTip(ctx context.Context, in AddTipInput) (*AddTipResult, error) {
	amount := in.Amount.Round(2)
	if !amount.IsPositive() {
		return nil, utils.ErrInvalidTipAmount
	}

	checkout, err := s.tips.FindCheckout(ctx, in.OrderID)
	if err != nil {
		return nil, fmt.Errorf("%w: find checkout: %w", utils.ErrDatabaseError, err)
	}
	if checkout == nil || checkout.CustomerID != in.CustomerID {
		return nil, utils.ErrOrderNotFound
	}
	if checkout.TipStatus == dbm.TipStatusPaid {
		return nil, utils.ErrTipAlreadyPaid
	}

	assignment, err := s.tips.FindAssignment(ctx, in.OrderID)
	if err != nil {
		return nil, fmt.Errorf("%w: find assignment: %w", utils.ErrDatabaseError, err)
	}
	if assignment == nil {
		return nil, utils.ErrOrderDetailsNotFound
	}
	if !assignment.HasDriver() {
		return nil, utils.ErrNoDriverAssigned
	}
	driverID := *assignment.AssignedDriverID

	customerEmail := in.CustomerEmail
	customer, err := s.tips.FindCustomer(ctx, in.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("%w: find customer: %w", utils.ErrDatabaseError, err)
	}
	if customer != nil && customer.Email != "" {
		customerEmail = customer.Email
	}

	intent, err := s.gateway.CreateTipIntent(ctx, TipIntentParams{
		OrderID:       in.OrderID,
		CustomerEmail: customerEmail,
		DriverID:      driverID,
		AmountMinor:   amount.Shift(2).IntPart(),
		Currency:      TipCurrency,
	})
	if err != nil {
		return nil, err
	}

	var message *string
	if m := strings.TrimSpace(in.Message); m != "" {
		message = &m
	}
	if err := s.tips.SetPendingTip(ctx, in.OrderID, amount, message); err != nil {
		return nil, fmt.Errorf("%w: set pending tip: %w", utils.ErrDatabaseError, err)
	}

	s.metrics.TipsRequestedTotal.Inc()
	s.log.Info("tip payment intent created",
		zap.String("order_id", in.OrderID),
		zap.String("driver_id", driverID),
		zap.String("amount", amount.StringFixed(2)),
		zap.String("payment_intent", intent.ID))

	publishTipEvent(ctx, s.publisher, s.log, events.TipEvent{
		Type:       events.TipRequested,
		OrderID:    in.OrderID,
		DriverID:   driverID,
		Amount:     amount.StringFixed(2),
		Currency:   "SEK",
		Status:     string(dbm.TipStatusPending),
		OccurredAt: utils.NowUTC(),
	})

	return &AddTipResult{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
		Amount:          amount,
	}, nil
}
