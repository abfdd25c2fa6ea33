package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	dbm "flyttman/internal/models/db_models"
	"flyttman/internal/repositories"
)

func seedReportOrders(t *testing.T) TipReportService {
	t.Helper()

	db := setupTestDB(t)
	seedParties(t, db)
	day := func(d int) *time.Time { return timePtr(time.Date(2025, 4, d, 12, 0, 0, 0, time.UTC)) }

	seedOrders(t, db,
		seedOrder{OrderID: "o1", CustomerID: "cust-1", DriverID: "drv-1", SupplierID: "sup-1",
			TipAmount: "100", TipStatus: dbm.TipStatusPaid, TipDate: day(1), Payout: dbm.TipPayoutPaid},
		seedOrder{OrderID: "o2", CustomerID: "cust-2", DriverID: "drv-1", SupplierID: "sup-1",
			TipAmount: "50.50", TipStatus: dbm.TipStatusPaid, TipDate: day(3)},
		seedOrder{OrderID: "o3", CustomerID: "cust-1", DriverID: "drv-2", SupplierID: "sup-1",
			TipAmount: "20", TipStatus: dbm.TipStatusPending, TipDate: day(2)},
		seedOrder{OrderID: "o4", CustomerID: "cust-1", DriverID: "drv-3", SupplierID: "sup-2",
			TipAmount: "30", TipStatus: dbm.TipStatusPaid, TipDate: day(4)},
		seedOrder{OrderID: "o5", CustomerID: "cust-2", DriverID: "drv-1", SupplierID: "sup-1"},
		seedOrder{OrderID: "o6", CustomerID: "cust-2", DriverID: "drv-2", SupplierID: "sup-1",
			TipAmount: "15", TipStatus: dbm.TipStatusFailed, TipDate: day(5)},
	)
	return NewTipReportService(repositories.NewTipRepository(db))
}

func TestGetDriverTips(t *testing.T) {
	svc := seedReportOrders(t)

	tips, err := svc.GetDriverTips(context.Background(), "drv-1")
	if err != nil {
		t.Fatalf("GetDriverTips() error = %v", err)
	}
	if len(tips) != 2 {
		t.Fatalf("tips = %d, want 2 (zero-amount order excluded)", len(tips))
	}
	if tips[0].OrderID != "o2" || tips[1].OrderID != "o1" {
		t.Errorf("order = [%s %s], want newest first [o2 o1]", tips[0].OrderID, tips[1].OrderID)
	}
	if tips[0].Fullname != "Björn Berg" || tips[0].Email != "bjorn@example.com" {
		t.Errorf("customer = %q <%s>", tips[0].Fullname, tips[0].Email)
	}

	none, err := svc.GetDriverTips(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("GetDriverTips(nobody) error = %v", err)
	}
	if none == nil || len(none) != 0 {
		t.Errorf("want empty non-nil slice, got %v", none)
	}
}

func TestGetSupplierTips_GroupsByDriverID(t *testing.T) {
	svc := seedReportOrders(t)

	report, err := svc.GetSupplierTips(context.Background(), "sup-1")
	if err != nil {
		t.Fatalf("GetSupplierTips() error = %v", err)
	}
	if len(report.Drivers) != 2 {
		t.Fatalf("drivers = %d, want 2", len(report.Drivers))
	}

	byID := map[string]decimal.Decimal{}
	for _, d := range report.Drivers {
		byID[d.DriverID] = d.TotalTips
	}
	if !byID["drv-1"].Equal(decimal.RequireFromString("150.50")) {
		t.Errorf("drv-1 total = %s, want 150.50", byID["drv-1"])
	}
	if !byID["drv-2"].Equal(decimal.NewFromInt(35)) {
		t.Errorf("drv-2 total = %s, want 35", byID["drv-2"])
	}
	if !report.TotalTips.Equal(decimal.RequireFromString("185.50")) {
		t.Errorf("total = %s, want 185.50", report.TotalTips)
	}
	if report.Drivers[0].DriverID != "drv-2" {
		t.Errorf("first driver = %s, want drv-2 (most recent tip)", report.Drivers[0].DriverID)
	}
}

func TestGetSupplierTips_SameNameDifferentDrivers(t *testing.T) {
	svc := seedReportOrders(t)

	report, err := svc.GetSupplierTips(context.Background(), "sup-2")
	if err != nil {
		t.Fatalf("GetSupplierTips() error = %v", err)
	}
	if len(report.Drivers) != 1 || report.Drivers[0].DriverID != "drv-3" {
		t.Fatalf("unexpected drivers: %+v", report.Drivers)
	}
}

func TestGetAdminTips_TotalsAddUp(t *testing.T) {
	svc := seedReportOrders(t)

	report, err := svc.GetAdminTips(context.Background())
	if err != nil {
		t.Fatalf("GetAdminTips() error = %v", err)
	}

	// every non-zero tip: o1, o2 (drv-1), o3, o6 (drv-2) and o4 (drv-3)
	if len(report.Drivers) != 3 {
		t.Fatalf("drivers = %d, want 3", len(report.Drivers))
	}
	for _, d := range report.Drivers {
		if !d.TotalTips.Equal(d.TotalPaid.Add(d.TotalPending)) {
			t.Errorf("driver %s: %s != %s + %s", d.DriverID, d.TotalTips, d.TotalPaid, d.TotalPending)
		}
		if d.DriverID == "drv-1" {
			if !d.TotalPaid.Equal(decimal.NewFromInt(100)) || !d.TotalPending.Equal(decimal.RequireFromString("50.5")) {
				t.Errorf("drv-1 paid/pending = %s/%s", d.TotalPaid, d.TotalPending)
			}
			if d.Supplier.CompanyName != "Snabbflytt AB" || d.Supplier.Bankgiro != "123-4567" {
				t.Errorf("supplier block = %+v", d.Supplier)
			}
		}
		if d.DriverID == "drv-2" {
			if len(d.Tips) != 2 || d.Tips[0].OrderID != "o6" || d.Tips[0].TipStatus != string(dbm.TipStatusFailed) {
				t.Errorf("drv-2 tips = %+v, want o6 (failed) first", d.Tips)
			}
			if !d.TotalPending.Equal(decimal.NewFromInt(35)) {
				t.Errorf("drv-2 pending = %s, want 35", d.TotalPending)
			}
		}
	}

	totals := report.Totals
	if !totals.TotalTips.Equal(decimal.RequireFromString("215.50")) {
		t.Errorf("total_tips = %s, want 215.50", totals.TotalTips)
	}
	if !totals.TotalTips.Equal(totals.TotalPaid.Add(totals.TotalPending)) {
		t.Errorf("totals do not add up: %+v", totals)
	}
}
