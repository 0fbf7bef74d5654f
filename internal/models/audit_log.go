package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
	AuditActionUpdate AuditAction = "update"
	AuditActionDelete AuditAction = "delete"
)

type AuditLog struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"index"`

	UserID    uuid.UUID `gorm:"type:uuid;index;not null"`
	UserEmail string    `gorm:"size:150"` // denormalizado

	// ej: "supplier", "product", "stock", "sale"
	EntityType string      `gorm:"size:50;index"`
	EntityID   uuid.UUID   `gorm:"type:uuid;index"`
	Action     AuditAction `gorm:"size:20"`

	Description string `gorm:"size:255"`

	// Estado anterior y posterior en JSON
	BeforeData string `gorm:"type:jsonb"`
	AfterData  string `gorm:"type:jsonb"`
}

func (l *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
