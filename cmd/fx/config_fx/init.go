package config_fx

import (
	"go.uber.org/fx"

	"flyttman/internal/config"
)

var Module = fx.Provide(config.Load)
