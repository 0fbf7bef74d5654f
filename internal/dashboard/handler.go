package dashboard

import (
	"pyme-backend/internal/audit"
	"pyme-backend/internal/auth"
	"pyme-backend/internal/database"
	"pyme-backend/internal/inventory"
	"pyme-backend/internal/logger"
	"pyme-backend/internal/models"
	"pyme-backend/internal/stockstatus"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const recentActivityLimit = 5

type Counts struct {
	Suppliers int64 `json:"suppliers"`
	Clients   int64 `json:"clients"`
	Products  int64 `json:"products"`
}

type SummaryResponse struct {
	Counts         Counts                                  `json:"counts"`
	TotalSales     decimal.Decimal                         `json:"total_sales"`
	StockAlerts    stockstatus.Alerts[inventory.AlertItem] `json:"stock_alerts"`
	RecentActivity []audit.AuditLogResponse                `json:"recent_activity"`
}

// Summary collects the dashboard numbers of userID. Every failed query is
// logged and leaves its part at the zero value.
func Summary(userID uuid.UUID, log *zap.Logger) SummaryResponse {
	resp := SummaryResponse{RecentActivity: make([]audit.AuditLogResponse, 0)}

	counters := []struct {
		model any
		dst   *int64
	}{
		{&models.Supplier{}, &resp.Counts.Suppliers},
		{&models.Client{}, &resp.Counts.Clients},
		{&models.Product{}, &resp.Counts.Products},
	}
	for _, ct := range counters {
		if err := database.DB.Model(ct.model).Where("user_id = ?", userID).Count(ct.dst).Error; err != nil {
			log.Error("dashboard count failed", zap.Error(err))
		}
	}

	total := decimal.Zero
	if err := database.DB.Model(&models.Sale{}).
		Select("COALESCE(SUM(total_amount), 0)").
		Where("user_id = ?", userID).
		Row().Scan(&total); err != nil {
		log.Error("dashboard sales total failed", zap.Error(err))
		total = decimal.Zero
	}
	resp.TotalSales = total

	rows, err := inventory.StockRows(database.DB, userID)
	if err != nil {
		log.Error("dashboard stock rows failed", zap.Error(err))
		rows = nil
	}
	resp.StockAlerts = inventory.BuildAlerts(rows)

	logs, err := audit.Recent(userID, recentActivityLimit)
	if err != nil {
		log.Error("dashboard recent activity failed", zap.Error(err))
	}
	for _, l := range logs {
		resp.RecentActivity = append(resp.RecentActivity, audit.ToResponse(l))
	}

	return resp
}

// GET /api/dashboard
func SummaryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := auth.SessionFrom(c)
		if err != nil {
			return err
		}
		return c.JSON(Summary(session.UserID, logger.FromCtx(c)))
	}
}
