package db_models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TipStatus string

const (
	TipStatusNone    TipStatus = "none"
	TipStatusPending TipStatus = "pending"
	TipStatusPaid    TipStatus = "paid"
	TipStatusFailed  TipStatus = "failed"
)

type TipPayoutStatus string

const (
	TipPayoutPending TipPayoutStatus = "pending"
	TipPayoutPaid    TipPayoutStatus = "paid"
)

// Checkout is the per-order payment record. The tip service only updates
// existing rows; orders are created elsewhere.
type Checkout struct {
	OrderID         string          `gorm:"column:order_id;primaryKey;size:64"`
	CustomerID      string          `gorm:"column:customer_id;index;size:64;not null"`
	TipAmount       decimal.Decimal `gorm:"column:tip_amount;type:decimal(10,2);not null;default:0"`
	TipMessage      *string         `gorm:"column:tip_message;type:text"`
	TipStatus       TipStatus       `gorm:"column:tip_status;size:16;not null;default:'none'"`
	TipDate         *time.Time      `gorm:"column:tip_date"`
	TipPayoutStatus TipPayoutStatus `gorm:"column:tip_payout_status;size:16;not null;default:'pending'"`
	TipPayoutDate   *time.Time      `gorm:"column:tip_payout_date"`
}

func (Checkout) TableName() string { return "checkout" }
