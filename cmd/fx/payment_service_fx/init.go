package payment_service_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"flyttman/internal/api/controllers"
	"flyttman/internal/config"
	"flyttman/internal/infra/metrics"
	"flyttman/internal/repositories"
	"flyttman/internal/services"
)

var Module = fx.Options(
	fx.Provide(provideStripeGateway),
	fx.Provide(
		func(g *services.StripeGateway) services.PaymentGateway { return g },
		func(g *services.StripeGateway) services.WebhookVerifier { return g },
	),
	fx.Provide(repositories.NewWebhookEventRepository),
	fx.Provide(provideWebhookService),
	fx.Provide(controllers.NewWebhookController),
)

func provideStripeGateway(cfg *config.Config) (*services.StripeGateway, error) {
	return services.NewStripeGateway(services.StripeConfig{
		SecretKey:     cfg.Stripe.SecretKey,
		WebhookSecret: cfg.WebhookSigningSecret(),
	})
}

func provideWebhookService(
	verifier services.WebhookVerifier,
	journal repositories.WebhookEventRepository,
	tips services.TipStatusService,
	m *metrics.TipMetrics,
	log *zap.Logger,
) services.WebhookService {
	return services.NewWebhookService(verifier, journal, tips, m, log)
}
