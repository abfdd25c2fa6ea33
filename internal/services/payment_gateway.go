package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

const (
	TipCurrency       = "sek"
	PaymentTypeTip    = "tip"
	metaOrderID       = "order_id"
	metaPaymentType   = "payment_type"
	metaCustomerEmail = "customer_email"
	metaDriverID      = "driver_id"
)

type TipIntentParams struct {
	OrderID       string
	CustomerEmail string
	DriverID      string
	AmountMinor   int64
	Currency      string
}

type TipIntent struct {
	ID           string
	ClientSecret string
}

type PaymentGateway interface {
	CreateTipIntent(ctx context.Context, params TipIntentParams) (*TipIntent, error)
}

type WebhookVerifier interface {
	ConstructEvent(payload []byte, signature string) (stripe.Event, error)
}

type StripeConfig struct {
	SecretKey     string // sk_live_... / sk_test_...
	WebhookSecret string // whsec_... selected for the running environment
}

// StripeGateway creates tip PaymentIntents and verifies webhook signatures.
type StripeGateway struct {
	api           *client.API
	webhookSecret string
}

func NewStripeGateway(cfg StripeConfig) (*StripeGateway, error) {
	if cfg.WebhookSecret == "" {
		return nil, errors.New("missing stripe webhook secret")
	}

	api := &client.API{}
	api.Init(cfg.SecretKey, nil)

	return &StripeGateway{
		api:           api,
		webhookSecret: cfg.WebhookSecret,
	}, nil
}

func (g *StripeGateway) CreateTipIntent(ctx context.Context, p TipIntentParams) (*TipIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(p.AmountMinor),
		Currency: stripe.String(p.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Description: stripe.String(fmt.Sprintf("Tip for order %s", p.OrderID)),
	}
	params.Context = ctx
	params.AddMetadata(metaOrderID, p.OrderID)
	params.AddMetadata(metaPaymentType, PaymentTypeTip)
	params.AddMetadata(metaCustomerEmail, p.CustomerEmail)
	params.AddMetadata(metaDriverID, p.DriverID)

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe create payment intent: %w", err)
	}

	return &TipIntent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

// ConstructEvent checks the Stripe-Signature header against the configured
// endpoint secret. The account's API version may differ from the library's,
// so the version check is skipped.
func (g *StripeGateway) ConstructEvent(payload []byte, signature string) (stripe.Event, error) {
	return webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
}
