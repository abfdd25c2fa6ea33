package response_models

import (
	"time"

	"github.com/shopspring/decimal"
)

type AddTipResponse struct {
	Success      bool   `json:"success"`
	ClientSecret string `json:"clientSecret"`
	Message      string `json:"message"`
	MessageSv    string `json:"messageSv"`
}

// DriverTip is one tip as seen by the driver who received it; Fullname and
// Email identify the tipping customer.
type DriverTip struct {
	OrderID    string          `json:"order_id" gorm:"column:order_id"`
	TipAmount  decimal.Decimal `json:"tip_amount" gorm:"column:tip_amount"`
	TipMessage *string         `json:"tip_message" gorm:"column:tip_message"`
	TipStatus  string          `json:"tip_status" gorm:"column:tip_status"`
	TipDate    *time.Time      `json:"tip_date" gorm:"column:tip_date"`
	Fullname   string          `json:"fullname" gorm:"column:fullname"`
	Email      string          `json:"email" gorm:"column:email"`
}

type SupplierDriverTips struct {
	DriverID    string          `json:"driver_id"`
	DriverName  string          `json:"driver_name"`
	DriverEmail string          `json:"driver_email"`
	TotalTips   decimal.Decimal `json:"total_tips"`
	Tips        []SupplierTip   `json:"tips"`
}

type SupplierTip struct {
	OrderID      string          `json:"order_id"`
	TipAmount    decimal.Decimal `json:"tip_amount"`
	TipMessage   *string         `json:"tip_message"`
	TipStatus    string          `json:"tip_status"`
	TipDate      *time.Time      `json:"tip_date"`
	CustomerName string          `json:"customer_name"`
}

type SupplierTipsReport struct {
	TotalTips decimal.Decimal      `json:"total_tips"`
	Drivers   []SupplierDriverTips `json:"drivers"`
}

type SupplierBanking struct {
	ID            string `json:"id"`
	CompanyName   string `json:"company_name"`
	Email         string `json:"email"`
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	IBAN          string `json:"iban"`
	Bankgiro      string `json:"bankgiro"`
}

type AdminTip struct {
	OrderID         string          `json:"order_id"`
	TipAmount       decimal.Decimal `json:"tip_amount"`
	TipMessage      *string         `json:"tip_message"`
	TipStatus       string          `json:"tip_status"`
	TipDate         *time.Time      `json:"tip_date"`
	TipPayoutStatus string          `json:"tip_payout_status"`
	TipPayoutDate   *time.Time      `json:"tip_payout_date"`
	CustomerName    string          `json:"customer_name"`
	CustomerEmail   string          `json:"customer_email"`
}

type TipTotals struct {
	TotalTips    decimal.Decimal `json:"total_tips"`
	TotalPaid    decimal.Decimal `json:"total_paid"`
	TotalPending decimal.Decimal `json:"total_pending"`
}

type AdminDriverTips struct {
	DriverID    string          `json:"driver_id"`
	DriverName  string          `json:"driver_name"`
	DriverEmail string          `json:"driver_email"`
	Supplier    SupplierBanking `json:"supplier"`
	TipTotals
	Tips []AdminTip `json:"tips"`
}

type AdminTipsReport struct {
	Drivers []AdminDriverTips `json:"drivers"`
	Totals  TipTotals         `json:"totals"`
}

type PaidOutTip struct {
	OrderID         string          `json:"order_id" gorm:"column:order_id"`
	TipAmount       decimal.Decimal `json:"tip_amount" gorm:"column:tip_amount"`
	TipPayoutStatus string          `json:"tip_payout_status" gorm:"column:tip_payout_status"`
	TipPayoutDate   *time.Time      `json:"tip_payout_date" gorm:"column:tip_payout_date"`
	DriverEmail     string          `json:"driver_email" gorm:"column:driver_email"`
}
