package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"flyttman/internal/infra"
	"flyttman/internal/infra/events"
	"flyttman/internal/infra/metrics"
	dbm "flyttman/internal/models/db_models"
	resp "flyttman/internal/models/response_models"
	"flyttman/internal/repositories"
	"flyttman/pkg/utils"
)

type TipPayoutService interface {
	MarkTipsAsPaid(ctx context.Context, driver repositories.DriverRef, orderIDs []string) ([]resp.PaidOutTip, error)
}

type tipPayoutService struct {
	tx        infra.Transactor
	tips      repositories.TipRepository
	publisher events.TipPublisher
	metrics   *metrics.TipMetrics
	log       *zap.Logger
	now       func() time.Time
}

func NewTipPayoutService(
	tx infra.Transactor,
	tips repositories.TipRepository,
	publisher events.TipPublisher,
	m *metrics.TipMetrics,
	log *zap.Logger,
) TipPayoutService {
	return &tipPayoutService{
		tx:        tx,
		tips:      tips,
		publisher: publisher,
		metrics:   m,
		log:       log.Named("tip_payout"),
		now:       utils.NowUTC,
	}
}

// MarkTipsAsPaid records that the platform has paid the driver for the given
// orders. Only collected tips (paid, amount > 0) of that driver are touched;
// marking an already paid-out order again changes nothing.
func (s *tipPayoutService) MarkTipsAsPaid(ctx context.Context, driver repositories.DriverRef, orderIDs []string) ([]resp.PaidOutTip, error) {
	ids := uniqueNonEmpty(orderIDs)
	if driver.IsZero() || len(ids) == 0 {
		return nil, utils.ErrInvalidPayoutRequest
	}

	paidAt := s.now().UTC().Truncate(time.Microsecond)
	var (
		updated int64
		rows    []resp.PaidOutTip
	)

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		updated, err = s.tips.MarkPayoutPaid(ctx, driver, ids, paidAt)
		if err != nil {
			return fmt.Errorf("%w: mark payout paid: %w", utils.ErrDatabaseError, err)
		}
		rows, err = s.tips.ListPaidOut(ctx, driver, ids)
		if err != nil {
			return fmt.Errorf("%w: list paid out tips: %w", utils.ErrDatabaseError, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []resp.PaidOutTip{}
	}

	s.metrics.PayoutsMarkedTotal.Add(float64(updated))
	s.log.Info("tips marked as paid out",
		zap.String("driver_email", driver.Email),
		zap.String("driver_id", driver.ID),
		zap.Int("requested", len(ids)),
		zap.Int64("updated", updated))

	for _, r := range rows {
		if r.TipPayoutDate == nil || !r.TipPayoutDate.Equal(paidAt) {
			continue
		}
		publishTipEvent(ctx, s.publisher, s.log, events.TipEvent{
			Type:       events.TipPayoutMarked,
			OrderID:    r.OrderID,
			DriverID:   driver.ID,
			Amount:     r.TipAmount.StringFixed(2),
			Currency:   "SEK",
			Status:     string(dbm.TipPayoutPaid),
			OccurredAt: paidAt,
		})
	}

	return rows, nil
}

func uniqueNonEmpty(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
