package models

import "github.com/google/uuid"

type Stock struct {
	Base
	UserID    uuid.UUID `gorm:"type:uuid;index;not null"`
	ProductID uuid.UUID `gorm:"type:uuid;index;not null"`
	Product   *Product
	Quantity  int    `gorm:"not null"`
	MinStock  int    `gorm:"not null"`
	MaxStock  int    `gorm:"not null"`
	Location  string `gorm:"size:150"`
}
