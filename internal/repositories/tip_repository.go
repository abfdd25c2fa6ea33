package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"flyttman/internal/infra"
	dbm "flyttman/internal/models/db_models"
	resp "flyttman/internal/models/response_models"
)

type TipRepository interface {
	FindCheckout(ctx context.Context, orderID string) (*dbm.Checkout, error)
	FindCustomer(ctx context.Context, customerID string) (*dbm.Customer, error)
	FindAssignment(ctx context.Context, orderID string) (*OrderAssignment, error)
	SetPendingTip(ctx context.Context, orderID string, amount decimal.Decimal, message *string) error

	// MarkTipPaid moves a pending or failed tip to paid, MarkTipFailed moves a
	// pending tip to failed. Both report whether a row changed.
	MarkTipPaid(ctx context.Context, orderID string, at time.Time) (bool, error)
	MarkTipFailed(ctx context.Context, orderID string) (bool, error)
	FindTipRecipient(ctx context.Context, orderID, driverID string) (*TipRecipient, error)

	ListDriverTips(ctx context.Context, driverID string) ([]resp.DriverTip, error)
	ListSupplierTips(ctx context.Context, supplierID string) ([]SupplierTipRow, error)
	ListAllTips(ctx context.Context) ([]AdminTipRow, error)

	MarkPayoutPaid(ctx context.Context, driver DriverRef, orderIDs []string, at time.Time) (int64, error)
	ListPaidOut(ctx context.Context, driver DriverRef, orderIDs []string) ([]resp.PaidOutTip, error)
}

type tipRepository struct {
	db *gorm.DB
}

func NewTipRepository(db *gorm.DB) TipRepository {
	return &tipRepository{db: db}
}

// ---------- Row helpers ----------

type OrderAssignment struct {
	OrderID          string  `gorm:"column:order_id"`
	AssignedDriverID *string `gorm:"column:assigned_driver_id"`
	DriverEmail      *string `gorm:"column:driver_email"`
	DriverName       *string `gorm:"column:driver_name"`
}

// HasDriver reports whether the assigned driver id resolves to a driver row.
func (a *OrderAssignment) HasDriver() bool {
	return a.AssignedDriverID != nil && *a.AssignedDriverID != "" && a.DriverEmail != nil
}

type TipRecipient struct {
	DriverID     string          `gorm:"column:driver_id"`
	DriverEmail  string          `gorm:"column:driver_email"`
	DriverName   string          `gorm:"column:driver_name"`
	CustomerName string          `gorm:"column:customer_name"`
	TipAmount    decimal.Decimal `gorm:"column:tip_amount"`
	TipMessage   *string         `gorm:"column:tip_message"`
}

type SupplierTipRow struct {
	DriverID     string          `gorm:"column:driver_id"`
	DriverName   string          `gorm:"column:driver_name"`
	DriverEmail  string          `gorm:"column:driver_email"`
	OrderID      string          `gorm:"column:order_id"`
	TipAmount    decimal.Decimal `gorm:"column:tip_amount"`
	TipMessage   *string         `gorm:"column:tip_message"`
	TipStatus    string          `gorm:"column:tip_status"`
	TipDate      *time.Time      `gorm:"column:tip_date"`
	CustomerName string          `gorm:"column:customer_name"`
}

type AdminTipRow struct {
	DriverID        string          `gorm:"column:driver_id"`
	DriverName      string          `gorm:"column:driver_name"`
	DriverEmail     string          `gorm:"column:driver_email"`
	SupplierID      string          `gorm:"column:supplier_id"`
	CompanyName     string          `gorm:"column:company_name"`
	SupplierEmail   string          `gorm:"column:supplier_email"`
	BankName        string          `gorm:"column:bank_name"`
	AccountNumber   string          `gorm:"column:account_number"`
	IBAN            string          `gorm:"column:iban"`
	Bankgiro        string          `gorm:"column:bankgiro"`
	OrderID         string          `gorm:"column:order_id"`
	TipAmount       decimal.Decimal `gorm:"column:tip_amount"`
	TipMessage      *string         `gorm:"column:tip_message"`
	TipStatus       string          `gorm:"column:tip_status"`
	TipDate         *time.Time      `gorm:"column:tip_date"`
	TipPayoutStatus string          `gorm:"column:tip_payout_status"`
	TipPayoutDate   *time.Time      `gorm:"column:tip_payout_date"`
	CustomerName    string          `gorm:"column:customer_name"`
	CustomerEmail   string          `gorm:"column:customer_email"`
}

// DriverRef selects a driver by email, id, or both.
type DriverRef struct {
	Email string
	ID    string
}

func (d DriverRef) IsZero() bool {
	return strings.TrimSpace(d.Email) == "" && strings.TrimSpace(d.ID) == ""
}

func (d DriverRef) scope(q *gorm.DB) *gorm.DB {
	if email := strings.TrimSpace(d.Email); email != "" {
		q = q.Where("LOWER(d.email) = ?", strings.ToLower(email))
	}
	if id := strings.TrimSpace(d.ID); id != "" {
		q = q.Where("d.id = ?", id)
	}
	return q
}

// ---------- Lookups ----------

func (r *tipRepository) FindCheckout(ctx context.Context, orderID string) (*dbm.Checkout, error) {
	var checkout dbm.Checkout
	err := infra.Conn(ctx, r.db).Where("order_id = ?", orderID).First(&checkout).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &checkout, nil
}

func (r *tipRepository) FindCustomer(ctx context.Context, customerID string) (*dbm.Customer, error) {
	var customer dbm.Customer
	err := infra.Conn(ctx, r.db).Where("id = ?", customerID).First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &customer, nil
}

func (r *tipRepository) FindAssignment(ctx context.Context, orderID string) (*OrderAssignment, error) {
	var rows []OrderAssignment
	err := infra.Conn(ctx, r.db).
		Table("checkout c").
		Select("c.order_id, ab.assigned_driver_id, d.email AS driver_email, d.full_name AS driver_name").
		Joins("JOIN accepted_bids ab ON ab.order_id = c.order_id").
		Joins("LEFT JOIN drivers d ON d.id = ab.assigned_driver_id").
		Where("c.order_id = ?", orderID).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (r *tipRepository) FindTipRecipient(ctx context.Context, orderID, driverID string) (*TipRecipient, error) {
	var rows []TipRecipient
	err := infra.Conn(ctx, r.db).
		Table("drivers d").
		Select(`d.id AS driver_id, d.email AS driver_email, d.full_name AS driver_name,
			COALESCE(cu.fullname, '') AS customer_name, c.tip_amount, c.tip_message`).
		Joins("JOIN accepted_bids ab ON ab.assigned_driver_id = d.id").
		Joins("JOIN checkout c ON c.order_id = ab.order_id").
		Joins("LEFT JOIN customers cu ON cu.id = c.customer_id").
		Where("c.order_id = ? AND d.id = ?", orderID, driverID).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// ---------- Tip status ----------

func (r *tipRepository) SetPendingTip(ctx context.Context, orderID string, amount decimal.Decimal, message *string) error {
	return infra.Conn(ctx, r.db).
		Model(&dbm.Checkout{}).
		Where("order_id = ?", orderID).
		Updates(map[string]interface{}{
			"tip_amount":  amount,
			"tip_message": message,
			"tip_status":  dbm.TipStatusPending,
		}).Error
}

func (r *tipRepository) MarkTipPaid(ctx context.Context, orderID string, at time.Time) (bool, error) {
	res := infra.Conn(ctx, r.db).
		Model(&dbm.Checkout{}).
		Where("order_id = ? AND tip_status IN ?", orderID,
			[]dbm.TipStatus{dbm.TipStatusPending, dbm.TipStatusFailed}).
		Updates(map[string]interface{}{
			"tip_status": dbm.TipStatusPaid,
			"tip_date":   at,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *tipRepository) MarkTipFailed(ctx context.Context, orderID string) (bool, error) {
	res := infra.Conn(ctx, r.db).
		Model(&dbm.Checkout{}).
		Where("order_id = ? AND tip_status = ?", orderID, dbm.TipStatusPending).
		Update("tip_status", dbm.TipStatusFailed)
	return res.RowsAffected > 0, res.Error
}

// ---------- Reports ----------

func (r *tipRepository) ListDriverTips(ctx context.Context, driverID string) ([]resp.DriverTip, error) {
	var rows []resp.DriverTip
	err := infra.Conn(ctx, r.db).
		Table("checkout c").
		Select(`c.order_id, c.tip_amount, c.tip_message, c.tip_status, c.tip_date,
			COALESCE(cu.fullname, '') AS fullname, COALESCE(cu.email, '') AS email`).
		Joins("JOIN accepted_bids ab ON ab.order_id = c.order_id").
		Joins("LEFT JOIN customers cu ON cu.id = c.customer_id").
		Where("ab.assigned_driver_id = ? AND c.tip_amount > 0", driverID).
		Order("c.tip_date DESC").
		Order("c.order_id").
		Scan(&rows).Error
	return rows, err
}

func (r *tipRepository) ListSupplierTips(ctx context.Context, supplierID string) ([]SupplierTipRow, error) {
	var rows []SupplierTipRow
	err := infra.Conn(ctx, r.db).
		Table("checkout c").
		Select(`d.id AS driver_id, d.full_name AS driver_name, d.email AS driver_email,
			c.order_id, c.tip_amount, c.tip_message, c.tip_status, c.tip_date,
			COALESCE(cu.fullname, '') AS customer_name`).
		Joins("JOIN accepted_bids ab ON ab.order_id = c.order_id").
		Joins("JOIN drivers d ON d.id = ab.assigned_driver_id").
		Joins("LEFT JOIN customers cu ON cu.id = c.customer_id").
		Where("d.supplier_id = ? AND c.tip_amount > 0", supplierID).
		Order("c.tip_date DESC").
		Order("c.order_id").
		Scan(&rows).Error
	return rows, err
}

func (r *tipRepository) ListAllTips(ctx context.Context) ([]AdminTipRow, error) {
	var rows []AdminTipRow
	err := infra.Conn(ctx, r.db).
		Table("checkout c").
		Select(`d.id AS driver_id, d.full_name AS driver_name, d.email AS driver_email,
			COALESCE(s.id, '') AS supplier_id, COALESCE(s.company_name, '') AS company_name,
			COALESCE(s.email, '') AS supplier_email, COALESCE(s.bank_name, '') AS bank_name,
			COALESCE(s.account_number, '') AS account_number, COALESCE(s.iban, '') AS iban,
			COALESCE(s.bankgiro, '') AS bankgiro,
			c.order_id, c.tip_amount, c.tip_message, c.tip_status, c.tip_date, c.tip_payout_status,
			c.tip_payout_date,
			COALESCE(cu.fullname, '') AS customer_name, COALESCE(cu.email, '') AS customer_email`).
		Joins("JOIN accepted_bids ab ON ab.order_id = c.order_id").
		Joins("JOIN drivers d ON d.id = ab.assigned_driver_id").
		Joins("LEFT JOIN suppliers s ON s.id = d.supplier_id").
		Joins("LEFT JOIN customers cu ON cu.id = c.customer_id").
		Where("c.tip_amount > 0").
		Order("c.tip_date DESC").
		Order("c.order_id").
		Scan(&rows).Error
	return rows, err
}

// ---------- Payouts ----------

func (r *tipRepository) MarkPayoutPaid(ctx context.Context, driver DriverRef, orderIDs []string, at time.Time) (int64, error) {
	driverOrders := driver.scope(
		infra.Conn(ctx, r.db).
			Table("accepted_bids ab").
			Select("ab.order_id").
			Joins("JOIN drivers d ON d.id = ab.assigned_driver_id"),
	)

	res := infra.Conn(ctx, r.db).
		Model(&dbm.Checkout{}).
		Where("order_id IN ?", orderIDs).
		Where("order_id IN (?)", driverOrders).
		Where("tip_amount > 0 AND tip_status = ?", dbm.TipStatusPaid).
		Where("tip_payout_status <> ?", dbm.TipPayoutPaid).
		Updates(map[string]interface{}{
			"tip_payout_status": dbm.TipPayoutPaid,
			"tip_payout_date":   at,
		})
	return res.RowsAffected, res.Error
}

func (r *tipRepository) ListPaidOut(ctx context.Context, driver DriverRef, orderIDs []string) ([]resp.PaidOutTip, error) {
	var rows []resp.PaidOutTip
	q := infra.Conn(ctx, r.db).
		Table("checkout c").
		Select("c.order_id, c.tip_amount, c.tip_payout_status, c.tip_payout_date, d.email AS driver_email").
		Joins("JOIN accepted_bids ab ON ab.order_id = c.order_id").
		Joins("JOIN drivers d ON d.id = ab.assigned_driver_id").
		Where("c.order_id IN ?", orderIDs).
		Where("c.tip_payout_status = ?", dbm.TipPayoutPaid)
	err := driver.scope(q).Order("c.order_id").Scan(&rows).Error
	return rows, err
}
