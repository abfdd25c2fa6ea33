package request_models

import "github.com/shopspring/decimal"

type AddTipRequest struct {
	Amount  decimal.Decimal `json:"amount"`
	Message string          `json:"message" binding:"max=500"`
}

type MarkTipsPaidRequest struct {
	DriverEmail string   `json:"driverEmail" binding:"omitempty,email"`
	DriverID    string   `json:"driverId"`
	OrderIDs    []string `json:"orderIds" binding:"required,min=1,dive,required"`
}
