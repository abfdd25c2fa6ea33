package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"flyttman/internal/infra/events"
	dbm "flyttman/internal/models/db_models"
	"flyttman/internal/repositories"
)

func buildStatusService(t *testing.T) (*gorm.DB, TipStatusService, *recordingPublisher) {
	t.Helper()

	db := setupTestDB(t)
	seedParties(t, db)
	pub := &recordingPublisher{}
	svc := NewTipStatusService(
		newTestTransactor(db),
		repositories.NewTipRepository(db),
		repositories.NewOutboxRepository(db),
		pub,
		newTestMetrics(),
		testLogger(),
		"sv",
	)
	return db, svc, pub
}

func TestHandleTipSucceeded_MarksPaidAndQueuesEmail(t *testing.T) {
	db, svc, pub := buildStatusService(t)
	seedOrders(t, db, seedOrder{
		OrderID: "ord-1", CustomerID: "cust-1", DriverID: "drv-1", SupplierID: "sup-1",
		TipAmount: "100", TipStatus: dbm.TipStatusPending, Message: strPtr("Tack för hjälpen!"),
	})

	err := svc.HandleTipSucceeded(context.Background(), TipPaymentSucceeded{
		OrderID:       "ord-1",
		Amount:        decimal.NewFromInt(100),
		CustomerEmail: "anna@example.com",
		DriverID:      "drv-1",
	})
	if err != nil {
		t.Fatalf("HandleTipSucceeded() error = %v", err)
	}

	c := loadCheckout(t, db, "ord-1")
	if c.TipStatus != dbm.TipStatusPaid {
		t.Errorf("tip_status = %q, want paid", c.TipStatus)
	}
	if c.TipDate == nil {
		t.Error("tip_date should be set")
	}

	var rows []dbm.TipNotification
	if err := db.Find(&rows).Error; err != nil {
		t.Fatalf("load outbox: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("outbox rows = %d, want 1", len(rows))
	}
	n := rows[0]
	if n.Recipient != "kalle@snabbflytt.se" || n.Kind != dbm.NotificationTipReceived || n.Locale != "sv" {
		t.Errorf("unexpected outbox row: %+v", n)
	}
	if n.Status != dbm.OutboxStatusPending {
		t.Errorf("outbox status = %q, want pending", n.Status)
	}

	var payload dbm.TipReceivedPayload
	if err := json.Unmarshal(n.Payload, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.Amount != "100.00" || payload.SenderName != "Anna Andersson" ||
		payload.DriverName != "Kalle Karlsson" || payload.Message != "Tack för hjälpen!" {
		t.Errorf("unexpected payload: %+v", payload)
	}

	if got := pub.types(); len(got) != 1 || got[0] != events.TipPaid {
		t.Errorf("published = %v, want [tip.paid]", got)
	}
}

func TestHandleTipSucceeded_DuplicateDeliveryIsNoop(t *testing.T) {
	db, svc, pub := buildStatusService(t)
	seedOrders(t, db, seedOrder{
		OrderID: "ord-1", CustomerID: "cust-1", DriverID: "drv-1", SupplierID: "sup-1",
		TipAmount: "50", TipStatus: dbm.TipStatusPending,
	})

	p := TipPaymentSucceeded{OrderID: "ord-1", Amount: decimal.NewFromInt(50), DriverID: "drv-1"}
	if err := svc.HandleTipSucceeded(context.Background(), p); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	first := loadCheckout(t, db, "ord-1")

	time.Sleep(5 * time.Millisecond)
	if err := svc.HandleTipSucceeded(context.Background(), p); err != nil {
		t.Fatalf("second delivery: %v", err)
	}
	second := loadCheckout(t, db, "ord-1")

	if !first.TipDate.Equal(*second.TipDate) {
		t.Errorf("tip_date changed on redelivery: %v -> %v", first.TipDate, second.TipDate)
	}
	if n := countOutbox(t, db); n != 1 {
		t.Errorf("outbox rows = %d, want 1", n)
	}
	if got := pub.types(); len(got) != 1 {
		t.Errorf("published %d events, want 1", len(got))
	}
}

func TestHandleTipFailed_DoesNotOverwritePaid(t *testing.T) {
	db, svc, _ := buildStatusService(t)
	paidAt := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	seedOrders(t, db,
		seedOrder{OrderID: "ord-paid", CustomerID: "cust-1", DriverID: "drv-1", SupplierID: "sup-1",
			TipAmount: "75", TipStatus: dbm.TipStatusPaid, TipDate: timePtr(paidAt)},
		seedOrder{OrderID: "ord-pending", CustomerID: "cust-1", DriverID: "drv-1", SupplierID: "sup-1",
			TipAmount: "20", TipStatus: dbm.TipStatusPending},
	)

	if err := svc.HandleTipFailed(context.Background(), "ord-paid"); err != nil {
		t.Fatalf("HandleTipFailed(paid) error = %v", err)
	}
	if got := loadCheckout(t, db, "ord-paid").TipStatus; got != dbm.TipStatusPaid {
		t.Errorf("paid tip moved to %q", got)
	}

	if err := svc.HandleTipFailed(context.Background(), "ord-pending"); err != nil {
		t.Fatalf("HandleTipFailed(pending) error = %v", err)
	}
	if got := loadCheckout(t, db, "ord-pending").TipStatus; got != dbm.TipStatusFailed {
		t.Errorf("pending tip status = %q, want failed", got)
	}
}

func TestHandleTipSucceeded_UnknownOrder(t *testing.T) {
	db, svc, pub := buildStatusService(t)

	err := svc.HandleTipSucceeded(context.Background(), TipPaymentSucceeded{
		OrderID: "missing", Amount: decimal.NewFromInt(10), DriverID: "drv-1",
	})
	if err != nil {
		t.Fatalf("HandleTipSucceeded() error = %v", err)
	}
	if n := countOutbox(t, db); n != 0 {
		t.Errorf("outbox rows = %d, want 0", n)
	}
	if len(pub.types()) != 0 {
		t.Error("no event should be published for an unknown order")
	}
}

func TestStatusUpdates_IgnoreOrderWithoutTip(t *testing.T) {
	db, svc, pub := buildStatusService(t)
	seedOrders(t, db, seedOrder{
		OrderID: "ord-none", CustomerID: "cust-1", DriverID: "drv-1", SupplierID: "sup-1",
	})

	if err := svc.HandleTipFailed(context.Background(), "ord-none"); err != nil {
		t.Fatalf("HandleTipFailed() error = %v", err)
	}
	if got := loadCheckout(t, db, "ord-none").TipStatus; got != dbm.TipStatusNone {
		t.Errorf("after failure tip_status = %q, want none", got)
	}

	err := svc.HandleTipSucceeded(context.Background(), TipPaymentSucceeded{
		OrderID: "ord-none", Amount: decimal.NewFromInt(10), DriverID: "drv-1",
	})
	if err != nil {
		t.Fatalf("HandleTipSucceeded() error = %v", err)
	}
	c := loadCheckout(t, db, "ord-none")
	if c.TipStatus != dbm.TipStatusNone || c.TipDate != nil {
		t.Errorf("after success tip_status = %q, tip_date = %v; want none and unset", c.TipStatus, c.TipDate)
	}
	if n := countOutbox(t, db); n != 0 {
		t.Errorf("outbox rows = %d, want 0", n)
	}
	if len(pub.types()) != 0 {
		t.Errorf("published = %v, want none", pub.types())
	}
}

func TestHandleTipSucceeded_AfterFailedAttempt(t *testing.T) {
	db, svc, pub := buildStatusService(t)
	seedOrders(t, db, seedOrder{
		OrderID: "ord-1", CustomerID: "cust-1", DriverID: "drv-1", SupplierID: "sup-1",
		TipAmount: "40", TipStatus: dbm.TipStatusPending,
	})

	if err := svc.HandleTipFailed(context.Background(), "ord-1"); err != nil {
		t.Fatalf("HandleTipFailed() error = %v", err)
	}
	if err := svc.HandleTipFailed(context.Background(), "ord-1"); err != nil {
		t.Fatalf("repeated HandleTipFailed() error = %v", err)
	}
	err := svc.HandleTipSucceeded(context.Background(), TipPaymentSucceeded{
		OrderID: "ord-1", Amount: decimal.NewFromInt(40), DriverID: "drv-1",
	})
	if err != nil {
		t.Fatalf("HandleTipSucceeded() error = %v", err)
	}

	if got := loadCheckout(t, db, "ord-1").TipStatus; got != dbm.TipStatusPaid {
		t.Errorf("tip_status = %q, want paid", got)
	}
	if n := countOutbox(t, db); n != 1 {
		t.Errorf("outbox rows = %d, want 1", n)
	}
	got := pub.types()
	if len(got) != 2 || got[0] != events.TipFailed || got[1] != events.TipPaid {
		t.Errorf("published = %v, want [tip.failed tip.paid]", got)
	}
}
