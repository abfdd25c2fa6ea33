package db_fx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"flyttman/internal/config"
	"flyttman/internal/infra"
)

var Module = fx.Options(
	fx.Provide(provideDB),
	fx.Provide(fx.Annotate(infra.NewGormTransactor, fx.As(new(infra.Transactor)))),
)

func provideDB(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	db, err := infra.InitPostgresql(cfg, log)
	if err != nil {
		return nil, err
	}

	if cfg.Database.MigrationsEnabled {
		if err := infra.RunMigrations(db, log); err != nil {
			infra.ClosePostgresql(db, log)
			return nil, err
		}
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			infra.ClosePostgresql(db, log)
			return nil
		},
	})
	return db, nil
}
