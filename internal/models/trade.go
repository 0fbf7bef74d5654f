package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Purchase - compra a un proveedor
type Purchase struct {
	Base
	UserID       uuid.UUID `gorm:"type:uuid;index;not null"`
	SupplierID   uuid.UUID `gorm:"type:uuid;index;not null"`
	Supplier     *Supplier
	ProductID    uuid.UUID `gorm:"type:uuid;index;not null"`
	Product      *Product
	Quantity     int             `gorm:"not null"`
	UnitPrice    decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	TotalAmount  decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	PurchaseDate time.Time       `gorm:"index;not null"`
	Notes        string          `gorm:"size:500"`
}

// Sale - venta a un cliente
type Sale struct {
	Base
	UserID      uuid.UUID `gorm:"type:uuid;index;not null"`
	ClientID    uuid.UUID `gorm:"type:uuid;index;not null"`
	Client      *Client
	ProductID   uuid.UUID `gorm:"type:uuid;index;not null"`
	Product     *Product
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	TotalAmount decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	SaleDate    time.Time       `gorm:"index;not null"`
	Notes       string          `gorm:"size:500"`
}

// LineTotal is quantity × unit price, the only accepted total for a line.
func LineTotal(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}
