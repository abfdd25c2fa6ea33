package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	dbm "flyttman/internal/models/db_models"
	"flyttman/internal/repositories"
)

// TestTipFlow walks one order from tip request to a redelivered success webhook.
func TestTipFlow(t *testing.T) {
	db := setupTestDB(t)
	seedParties(t, db)
	seedOrders(t, db, seedOrder{OrderID: "ORD-1", CustomerID: "cust-1", DriverID: "drv-1", SupplierID: "sup-1"})

	tipsRepo := repositories.NewTipRepository(db)
	m := newTestMetrics()
	pub := &recordingPublisher{}
	gw, err := NewStripeGateway(StripeConfig{SecretKey: "sk_test_x", WebhookSecret: testWebhookSecret})
	if err != nil {
		t.Fatalf("NewStripeGateway() error = %v", err)
	}
	fakeGateway := &MockPaymentGateway{}

	tipSvc := NewTipService(tipsRepo, fakeGateway, pub, m, testLogger())
	statusSvc := NewTipStatusService(newTestTransactor(db), tipsRepo, repositories.NewOutboxRepository(db), pub, m, testLogger(), "sv")
	webhookSvc := NewWebhookService(gw, repositories.NewWebhookEventRepository(db), statusSvc, m, testLogger())

	if _, err := tipSvc.AddTip(context.Background(), AddTipInput{
		OrderID: "ORD-1", CustomerID: "cust-1", Amount: decimal.NewFromInt(100), Message: "Tack!",
	}); err != nil {
		t.Fatalf("AddTip() error = %v", err)
	}
	c := loadCheckout(t, db, "ORD-1")
	if c.TipStatus != dbm.TipStatusPending || !c.TipAmount.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("after AddTip: status %q amount %s", c.TipStatus, c.TipAmount)
	}

	payload := []byte(`{
  "id": "evt_flow_1",
  "object": "event",
  "api_version": "2020-08-27",
  "type": "payment_intent.succeeded",
  "data": {"object": {"id": "pi_123", "object": "payment_intent", "amount": 10000, "currency": "sek",
    "metadata": {"order_id": "ORD-1", "payment_type": "tip", "customer_email": "anna@example.com", "driver_id": "drv-1"}}}
}`)
	if err := verifyAndHandle(t, webhookSvc, payload); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	c = loadCheckout(t, db, "ORD-1")
	if c.TipStatus != dbm.TipStatusPaid || c.TipDate == nil {
		t.Fatalf("after webhook: status %q date %v", c.TipStatus, c.TipDate)
	}
	if n := countOutbox(t, db); n != 1 {
		t.Fatalf("outbox rows = %d, want 1", n)
	}

	// A second succeeded event for the same intent must neither re-pay nor re-notify.
	redelivery := []byte(`{
  "id": "evt_flow_2",
  "object": "event",
  "api_version": "2020-08-27",
  "type": "payment_intent.succeeded",
  "data": {"object": {"id": "pi_123", "object": "payment_intent", "amount": 10000, "currency": "sek",
    "metadata": {"order_id": "ORD-1", "payment_type": "tip", "customer_email": "anna@example.com", "driver_id": "drv-1"}}}
}`)
	if err := verifyAndHandle(t, webhookSvc, redelivery); err != nil {
		t.Fatalf("second delivery: %v", err)
	}
	after := loadCheckout(t, db, "ORD-1")
	if !after.TipDate.Equal(*c.TipDate) {
		t.Errorf("tip_date changed: %v -> %v", c.TipDate, after.TipDate)
	}
	if n := countOutbox(t, db); n != 1 {
		t.Errorf("outbox rows = %d after redelivery, want 1", n)
	}
}
