package metrics_fx

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"

	"flyttman/internal/infra/metrics"
)

var Module = fx.Provide(
	provideRegistry,
	func(reg *prometheus.Registry) prometheus.Registerer { return reg },
	func(reg *prometheus.Registry) prometheus.Gatherer { return reg },
	metrics.NewTipMetrics,
)

func provideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}
