package audit

import (
	"encoding/json"
	"fmt"

	"pyme-backend/internal/database"
	"pyme-backend/internal/logger"
	"pyme-backend/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type LogOptions struct {
	UserID      uuid.UUID
	UserEmail   string
	EntityType  string
	EntityID    uuid.UUID
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

func marshalData(v any) string {
	// jsonb no acepta un string vacío, se guarda "null"
	if v == nil {
		return "null"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

// WriteLog stores an audit entry with its before/after snapshots.
func WriteLog(opts LogOptions) error {
	entry := models.AuditLog{
		UserID:      opts.UserID,
		UserEmail:   opts.UserEmail,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  marshalData(opts.Before),
		AfterData:   marshalData(opts.After),
	}

	if err := database.DB.Create(&entry).Error; err != nil {
		return fmt.Errorf("no se pudo guardar el registro de auditoría: %w", err)
	}
	return nil
}

// Record writes an audit entry and only logs a failure; the mutation it
// describes has already been committed.
func Record(opts LogOptions) {
	if err := WriteLog(opts); err != nil {
		logger.L().Warn("audit log not written",
			zap.String("entity_type", opts.EntityType),
			zap.String("entity_id", opts.EntityID.String()),
			zap.Error(err),
		)
	}
}

// Recent returns the newest limit entries of userID.
func Recent(userID uuid.UUID, limit int) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	err := database.DB.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
