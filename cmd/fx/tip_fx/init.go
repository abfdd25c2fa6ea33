package tip_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"flyttman/internal/api/controllers"
	"flyttman/internal/config"
	"flyttman/internal/infra"
	"flyttman/internal/infra/events"
	"flyttman/internal/infra/metrics"
	"flyttman/internal/repositories"
	"flyttman/internal/services"
)

var Module = fx.Options(
	fx.Provide(repositories.NewTipRepository),
	fx.Provide(repositories.NewOutboxRepository),
	fx.Provide(provideTipStatusService),
	fx.Provide(services.NewTipService),
	fx.Provide(services.NewTipReportService),
	fx.Provide(services.NewTipPayoutService),
	fx.Provide(controllers.NewTipController),
	fx.Provide(controllers.NewAdminTipController),
)

func provideTipStatusService(
	cfg *config.Config,
	tx infra.Transactor,
	tips repositories.TipRepository,
	outbox repositories.OutboxRepository,
	publisher events.TipPublisher,
	m *metrics.TipMetrics,
	log *zap.Logger,
) services.TipStatusService {
	return services.NewTipStatusService(tx, tips, outbox, publisher, m, log, cfg.SMTP.DefaultLocale)
}
