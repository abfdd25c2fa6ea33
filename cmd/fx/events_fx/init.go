package events_fx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"flyttman/internal/config"
	"flyttman/internal/infra/events"
)

var Module = fx.Provide(providePublisher)

func providePublisher(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) events.TipPublisher {
	if len(cfg.Kafka.Brokers) == 0 {
		log.Info("KAFKA_BROKERS not set, tip events are not published")
		return events.NoopTipPublisher{}
	}

	publisher := events.NewKafkaTipPublisher(cfg.Kafka.Brokers, cfg.Kafka.TipTopic)
	log.Info("publishing tip events to kafka",
		zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.TipTopic))

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return publisher.Close()
		},
	})
	return publisher
}
