package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	dbm "flyttman/internal/models/db_models"
	resp "flyttman/internal/models/response_models"
	"flyttman/internal/repositories"
	"flyttman/pkg/utils"
)

type TipReportService interface {
	GetDriverTips(ctx context.Context, driverID string) ([]resp.DriverTip, error)
	GetSupplierTips(ctx context.Context, supplierID string) (*resp.SupplierTipsReport, error)
	GetAdminTips(ctx context.Context) (*resp.AdminTipsReport, error)
}

type tipReportService struct {
	tips repositories.TipRepository
}

func NewTipReportService(tips repositories.TipRepository) TipReportService {
	return &tipReportService{tips: tips}
}

func (s *tipReportService) GetDriverTips(ctx context.Context, driverID string) ([]resp.DriverTip, error) {
	rows, err := s.tips.ListDriverTips(ctx, driverID)
	if err != nil {
		return nil, fmt.Errorf("%w: list driver tips: %w", utils.ErrDatabaseError, err)
	}
	if rows == nil {
		rows = []resp.DriverTip{}
	}
	return rows, nil
}

// GetSupplierTips groups the supplier's tips by driver id, keeping drivers in
// the order of their most recent tip.
func (s *tipReportService) GetSupplierTips(ctx context.Context, supplierID string) (*resp.SupplierTipsReport, error) {
	rows, err := s.tips.ListSupplierTips(ctx, supplierID)
	if err != nil {
		return nil, fmt.Errorf("%w: list supplier tips: %w", utils.ErrDatabaseError, err)
	}

	report := &resp.SupplierTipsReport{
		TotalTips: decimal.Zero,
		Drivers:   []resp.SupplierDriverTips{},
	}
	index := make(map[string]int)

	for _, r := range rows {
		i, ok := index[r.DriverID]
		if !ok {
			i = len(report.Drivers)
			index[r.DriverID] = i
			report.Drivers = append(report.Drivers, resp.SupplierDriverTips{
				DriverID:    r.DriverID,
				DriverName:  r.DriverName,
				DriverEmail: r.DriverEmail,
				TotalTips:   decimal.Zero,
				Tips:        []resp.SupplierTip{},
			})
		}

		group := &report.Drivers[i]
		group.TotalTips = group.TotalTips.Add(r.TipAmount)
		group.Tips = append(group.Tips, resp.SupplierTip{
			OrderID:      r.OrderID,
			TipAmount:    r.TipAmount,
			TipMessage:   r.TipMessage,
			TipStatus:    r.TipStatus,
			TipDate:      r.TipDate,
			CustomerName: r.CustomerName,
		})
		report.TotalTips = report.TotalTips.Add(r.TipAmount)
	}

	return report, nil
}

// GetAdminTips groups every non-zero tip by driver and splits the sums by
// payout status. total_tips = total_paid + total_pending holds per driver and
// for the global totals.
func (s *tipReportService) GetAdminTips(ctx context.Context) (*resp.AdminTipsReport, error) {
	rows, err := s.tips.ListAllTips(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list all tips: %w", utils.ErrDatabaseError, err)
	}

	report := &resp.AdminTipsReport{
		Drivers: []resp.AdminDriverTips{},
		Totals:  zeroTotals(),
	}
	index := make(map[string]int)

	for _, r := range rows {
		i, ok := index[r.DriverID]
		if !ok {
			i = len(report.Drivers)
			index[r.DriverID] = i
			report.Drivers = append(report.Drivers, resp.AdminDriverTips{
				DriverID:    r.DriverID,
				DriverName:  r.DriverName,
				DriverEmail: r.DriverEmail,
				Supplier: resp.SupplierBanking{
					ID:            r.SupplierID,
					CompanyName:   r.CompanyName,
					Email:         r.SupplierEmail,
					BankName:      r.BankName,
					AccountNumber: r.AccountNumber,
					IBAN:          r.IBAN,
					Bankgiro:      r.Bankgiro,
				},
				TipTotals: zeroTotals(),
				Tips:      []resp.AdminTip{},
			})
		}

		group := &report.Drivers[i]
		addToTotals(&group.TipTotals, r.TipAmount, r.TipPayoutStatus)
		addToTotals(&report.Totals, r.TipAmount, r.TipPayoutStatus)
		group.Tips = append(group.Tips, resp.AdminTip{
			OrderID:         r.OrderID,
			TipAmount:       r.TipAmount,
			TipMessage:      r.TipMessage,
			TipStatus:       r.TipStatus,
			TipDate:         r.TipDate,
			TipPayoutStatus: r.TipPayoutStatus,
			TipPayoutDate:   r.TipPayoutDate,
			CustomerName:    r.CustomerName,
			CustomerEmail:   r.CustomerEmail,
		})
	}

	return report, nil
}

func zeroTotals() resp.TipTotals {
	return resp.TipTotals{
		TotalTips:    decimal.Zero,
		TotalPaid:    decimal.Zero,
		TotalPending: decimal.Zero,
	}
}

// addToTotals counts anything not paid out as pending, so the two buckets
// always sum to the total.
func addToTotals(t *resp.TipTotals, amount decimal.Decimal, payoutStatus string) {
	t.TotalTips = t.TotalTips.Add(amount)
	if payoutStatus == string(dbm.TipPayoutPaid) {
		t.TotalPaid = t.TotalPaid.Add(amount)
	} else {
		t.TotalPending = t.TotalPending.Add(amount)
	}
}
