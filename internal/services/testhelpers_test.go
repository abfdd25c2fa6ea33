package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"flyttman/internal/infra"
	"flyttman/internal/infra/events"
	"flyttman/internal/infra/metrics"
	dbm "flyttman/internal/models/db_models"
)

// setupTestDB opens a file-backed SQLite database with the tip schema.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(
		&dbm.Customer{},
		&dbm.Supplier{},
		&dbm.Driver{},
		&dbm.AcceptedBid{},
		&dbm.Checkout{},
		&dbm.TipNotification{},
		&dbm.StripeWebhookEvent{},
	); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return db
}

type seedOrder struct {
	OrderID    string
	CustomerID string
	DriverID   string // empty: accepted bid without driver
	SupplierID string
	TipAmount  string
	TipStatus  dbm.TipStatus
	Payout     dbm.TipPayoutStatus
	TipDate    *time.Time
	Message    *string
}

func seedParties(t *testing.T, db *gorm.DB) {
	t.Helper()

	rows := []interface{}{
		&dbm.Customer{ID: "cust-1", Fullname: "Anna Andersson", Email: "anna@example.com"},
		&dbm.Customer{ID: "cust-2", Fullname: "Björn Berg", Email: "bjorn@example.com"},
		&dbm.Supplier{ID: "sup-1", CompanyName: "Snabbflytt AB", Email: "info@snabbflytt.se",
			BankName: "SEB", AccountNumber: "5000-1234", IBAN: "SE3550000000054910000003", Bankgiro: "123-4567"},
		&dbm.Supplier{ID: "sup-2", CompanyName: "Bärkraft AB", Email: "hej@barkraft.se"},
		&dbm.Driver{ID: "drv-1", SupplierID: "sup-1", FullName: "Kalle Karlsson", Email: "kalle@snabbflytt.se"},
		&dbm.Driver{ID: "drv-2", SupplierID: "sup-1", FullName: "Lisa Lind", Email: "lisa@snabbflytt.se"},
		&dbm.Driver{ID: "drv-3", SupplierID: "sup-2", FullName: "Kalle Karlsson", Email: "kalle@barkraft.se"},
	}
	for _, r := range rows {
		if err := db.Create(r).Error; err != nil {
			t.Fatalf("seed %T: %v", r, err)
		}
	}
}

func seedOrders(t *testing.T, db *gorm.DB, orders ...seedOrder) {
	t.Helper()

	for _, o := range orders {
		amount := decimal.Zero
		if o.TipAmount != "" {
			amount = decimal.RequireFromString(o.TipAmount)
		}
		status := o.TipStatus
		if status == "" {
			status = dbm.TipStatusNone
		}
		payout := o.Payout
		if payout == "" {
			payout = dbm.TipPayoutPending
		}
		checkout := dbm.Checkout{
			OrderID:         o.OrderID,
			CustomerID:      o.CustomerID,
			TipAmount:       amount,
			TipMessage:      o.Message,
			TipStatus:       status,
			TipDate:         o.TipDate,
			TipPayoutStatus: payout,
		}
		if err := db.Create(&checkout).Error; err != nil {
			t.Fatalf("seed checkout %s: %v", o.OrderID, err)
		}

		bid := dbm.AcceptedBid{OrderID: o.OrderID, SupplierID: o.SupplierID}
		if o.DriverID != "" {
			driverID := o.DriverID
			bid.AssignedDriverID = &driverID
		}
		if err := db.Create(&bid).Error; err != nil {
			t.Fatalf("seed accepted bid %s: %v", o.OrderID, err)
		}
	}
}

func loadCheckout(t *testing.T, db *gorm.DB, orderID string) dbm.Checkout {
	t.Helper()

	var c dbm.Checkout
	if err := db.Where("order_id = ?", orderID).First(&c).Error; err != nil {
		t.Fatalf("load checkout %s: %v", orderID, err)
	}
	return c
}

func countOutbox(t *testing.T, db *gorm.DB) int64 {
	t.Helper()

	var n int64
	if err := db.Model(&dbm.TipNotification{}).Count(&n).Error; err != nil {
		t.Fatalf("count outbox: %v", err)
	}
	return n
}

func timePtr(t time.Time) *time.Time { return &t }

func strPtr(s string) *string { return &s }

func newTestMetrics() *metrics.TipMetrics {
	return metrics.NewTipMetrics(prometheus.NewRegistry())
}

func newTestTransactor(db *gorm.DB) infra.Transactor {
	return infra.NewGormTransactor(db)
}

// recordingPublisher collects published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.TipEvent
}

func (p *recordingPublisher) Publish(_ context.Context, evs ...events.TipEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evs...)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []events.TipEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.TipEventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func testLogger() *zap.Logger { return zap.NewNop() }
