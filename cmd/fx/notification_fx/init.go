package notification_fx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"flyttman/internal/config"
	"flyttman/internal/infra/metrics"
	"flyttman/internal/repositories"
	"flyttman/internal/services"
)

var Module = fx.Options(
	fx.Provide(provideDispatcher),
	fx.Invoke(startDispatcher),
)

func provideDispatcher(
	cfg *config.Config,
	outbox repositories.OutboxRepository,
	mailer services.IMailService,
	m *metrics.TipMetrics,
	log *zap.Logger,
) *services.NotificationDispatcher {
	return services.NewNotificationDispatcher(outbox, mailer, services.DispatcherConfig{
		PollInterval: cfg.Outbox.PollInterval,
		BatchSize:    cfg.Outbox.BatchSize,
		MaxAttempts:  cfg.Outbox.MaxAttempts,
		Backoff:      cfg.Outbox.Backoff,
		Lease:        cfg.Outbox.ClaimLease,
	}, m, log)
}

func startDispatcher(lc fx.Lifecycle, d *services.NotificationDispatcher) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				d.Run(ctx)
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}
