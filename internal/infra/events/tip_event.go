package events

import "time"

type TipEventType string

const (
	TipRequested    TipEventType = "tip.requested"
	TipPaid         TipEventType = "tip.paid"
	TipFailed       TipEventType = "tip.failed"
	TipPayoutMarked TipEventType = "tip.payout_marked"
)

type TipEvent struct {
	Type       TipEventType `json:"type"`
	OrderID    string       `json:"order_id"`
	DriverID   string       `json:"driver_id,omitempty"`
	Amount     string       `json:"amount,omitempty"`
	Currency   string       `json:"currency,omitempty"`
	Status     string       `json:"status"`
	OccurredAt time.Time    `json:"occurred_at"`
}
