package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	Base
	UserID      uuid.UUID  `gorm:"type:uuid;index;not null"`
	SupplierID  *uuid.UUID `gorm:"type:uuid;index"` // opcional
	Supplier    *Supplier
	Name        string          `gorm:"size:200;not null"`
	Description string          `gorm:"size:500"`
	Category    string          `gorm:"size:100;index"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(12,2);not null"`

	// 1:1 por convención, modelado como 1:N igual que en la base original
	Stock []Stock
}

// CurrentStock returns the product's stock row, or nil when none was loaded.
func (p Product) CurrentStock() *Stock {
	if len(p.Stock) == 0 {
		return nil
	}
	return &p.Stock[0]
}
