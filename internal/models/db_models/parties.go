package db_models

// The marketplace tables below are owned by other services; the tip service
// reads them only through joins.

type Customer struct {
	ID       string `gorm:"column:id;primaryKey;size:64"`
	Fullname string `gorm:"column:fullname"`
	Email    string `gorm:"column:email;index"`
}

func (Customer) TableName() string { return "customers" }

type Supplier struct {
	ID            string `gorm:"column:id;primaryKey;size:64"`
	CompanyName   string `gorm:"column:company_name"`
	Email         string `gorm:"column:email"`
	BankName      string `gorm:"column:bank_name"`
	AccountNumber string `gorm:"column:account_number"`
	IBAN          string `gorm:"column:iban"`
	Bankgiro      string `gorm:"column:bankgiro"`
}

func (Supplier) TableName() string { return "suppliers" }

type Driver struct {
	ID         string `gorm:"column:id;primaryKey;size:64"`
	SupplierID string `gorm:"column:supplier_id;index;size:64"`
	FullName   string `gorm:"column:full_name"`
	Email      string `gorm:"column:email;index"`
}

func (Driver) TableName() string { return "drivers" }

type AcceptedBid struct {
	OrderID          string  `gorm:"column:order_id;primaryKey;size:64"`
	SupplierID       string  `gorm:"column:supplier_id;index;size:64"`
	AssignedDriverID *string `gorm:"column:assigned_driver_id;index;size:64"`
}

func (AcceptedBid) TableName() string { return "accepted_bids" }
