package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// TipMetrics holds the Prometheus collectors of the tip flow.
type TipMetrics struct {
	WebhookEventsTotal  *prometheus.CounterVec
	WebhookDuration     prometheus.Histogram
	TipsRequestedTotal  prometheus.Counter
	TipsPaidTotal       prometheus.Counter
	TipsPaidAmountTotal prometheus.Counter
	TipsFailedTotal     prometheus.Counter
	DuplicateDeliveries *prometheus.CounterVec
	PayoutsMarkedTotal  prometheus.Counter
	NotificationsTotal  *prometheus.CounterVec
}

func NewTipMetrics(reg prometheus.Registerer) *TipMetrics {
	factory := promauto.With(reg)

	return &TipMetrics{
		WebhookEventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tip_webhook_events_total",
				Help: "Stripe webhook deliveries by event type and outcome",
			},
			[]string{"event_type", "outcome"},
		),
		WebhookDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "tip_webhook_duration_seconds",
				Help:    "Time spent handling a verified Stripe webhook",
				Buckets: prometheus.DefBuckets,
			},
		),
		TipsRequestedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "tips_requested_total",
				Help: "PaymentIntents created for tips",
			},
		),
		TipsPaidTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "tips_paid_total",
				Help: "Tips that moved to paid",
			},
		),
		TipsPaidAmountTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "tips_paid_amount_sek_total",
				Help: "Sum of paid tips in SEK",
			},
		),
		TipsFailedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "tips_failed_total",
				Help: "Tips that moved to failed",
			},
		),
		DuplicateDeliveries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tip_duplicate_deliveries_total",
				Help: "Status updates skipped because the tip was already paid",
			},
			[]string{"event_type"},
		),
		PayoutsMarkedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "tip_payouts_marked_total",
				Help: "Checkout rows whose tip payout was marked paid",
			},
		),
		NotificationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tip_notifications_total",
				Help: "Tip email deliveries by outcome",
			},
			[]string{"outcome"},
		),
	}
}
