package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TreasuryType string

const (
	TreasuryIncome  TreasuryType = "income"
	TreasuryExpense TreasuryType = "expense"
)

func (t TreasuryType) Valid() bool {
	return t == TreasuryIncome || t == TreasuryExpense
}

// Treasury - movimiento de caja (ingreso o egreso)
type Treasury struct {
	Base
	UserID          uuid.UUID       `gorm:"type:uuid;index;not null"`
	TransactionType TreasuryType    `gorm:"type:varchar(20);not null;index"`
	Category        string          `gorm:"size:100;not null"`
	Amount          decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Description     string          `gorm:"size:500"`
	TransactionDate time.Time       `gorm:"index;not null"`

	// Referencia opcional a otro registro (ej: "sale" + id)
	ReferenceType string     `gorm:"size:50"`
	ReferenceID   *uuid.UUID `gorm:"type:uuid"`
}

func (Treasury) TableName() string { return "treasury" }
