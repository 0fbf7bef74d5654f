package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Production struct {
	Base
	UserID           uuid.UUID `gorm:"type:uuid;index;not null"`
	ProductID        uuid.UUID `gorm:"type:uuid;index;not null"`
	Product          *Product
	QuantityProduced int             `gorm:"not null"`
	ProductionDate   time.Time       `gorm:"index;not null"`
	CostPerUnit      decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	TotalCost        decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Notes            string          `gorm:"size:500"`
}
