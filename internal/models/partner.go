package models

import "github.com/google/uuid"

// Supplier - proveedor de productos
type Supplier struct {
	Base
	UserID        uuid.UUID `gorm:"type:uuid;index;not null"`
	Name          string    `gorm:"size:200;not null"`
	ContactPerson string    `gorm:"size:150"`
	Email         string    `gorm:"size:150"`
	Phone         string    `gorm:"size:50"`
	Address       string    `gorm:"size:300"`
	Products      []Product
}

// Client - cliente al que se registran ventas
type Client struct {
	Base
	UserID        uuid.UUID `gorm:"type:uuid;index;not null"`
	Name          string    `gorm:"size:200;not null"`
	ContactPerson string    `gorm:"size:150"`
	Email         string    `gorm:"size:150"`
	Phone         string    `gorm:"size:50"`
	Address       string    `gorm:"size:300"`
}
