package audit

import (
	"pyme-backend/internal/auth"
	"pyme-backend/internal/database"
	"pyme-backend/internal/logger"
	"pyme-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxListLimit = 200

type AuditLogResponse struct {
	ID          string             `json:"id"`
	CreatedAt   string             `json:"created_at"`
	UserEmail   string             `json:"user_email"`
	EntityType  string             `json:"entity_type"`
	EntityID    string             `json:"entity_id"`
	Action      models.AuditAction `json:"action"`
	Description string             `json:"description"`
}

func ToResponse(l models.AuditLog) AuditLogResponse {
	return AuditLogResponse{
		ID:          l.ID.String(),
		CreatedAt:   l.CreatedAt.Format("2006-01-02 15:04:05"),
		UserEmail:   l.UserEmail,
		EntityType:  l.EntityType,
		EntityID:    l.EntityID.String(),
		Action:      l.Action,
		Description: l.Description,
	}
}

// GET /api/audit-logs?entity_type=product&entity_id=...&limit=50
func ListAuditLogsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := auth.SessionFrom(c)
		if err != nil {
			return err
		}

		dbq := database.DB.Model(&models.AuditLog{}).Scopes(session.Owned(""))

		if entityType := c.Query("entity_type"); entityType != "" {
			dbq = dbq.Where("entity_type = ?", entityType)
		}
		if entityIDStr := c.Query("entity_id"); entityIDStr != "" {
			entityID, err := uuid.Parse(entityIDStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "entity_id inválido")
			}
			dbq = dbq.Where("entity_id = ?", entityID)
		}

		limit := c.QueryInt("limit", 50)
		if limit <= 0 || limit > maxListLimit {
			limit = maxListLimit
		}

		resp := make([]AuditLogResponse, 0)
		var logs []models.AuditLog
		if err := dbq.Order("created_at DESC").Limit(limit).Find(&logs).Error; err != nil {
			logger.FromCtx(c).Error("list audit logs failed", zap.Error(err))
			return c.JSON(resp)
		}

		for _, l := range logs {
			resp = append(resp, ToResponse(l))
		}
		return c.JSON(resp)
	}
}
