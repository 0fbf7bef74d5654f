package inventory

import (
	"errors"
	"fmt"
	"strings"

	"pyme-backend/internal/audit"
	"pyme-backend/internal/auth"
	"pyme-backend/internal/config"
	"pyme-backend/internal/database"
	"pyme-backend/internal/httpx"
	"pyme-backend/internal/logger"
	"pyme-backend/internal/models"
	"pyme-backend/internal/stockstatus"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type StockProductRef struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Supplier  *SupplierRef    `json:"supplier"`
}

type StockResponse struct {
	StockLevelResponse
	ProductID string            `json:"product_id"`
	Product   StockProductRef   `json:"product"`
	Status    stockstatus.Badge `json:"status"`
}

type StockListResponse struct {
	Total  int                           `json:"total"`
	Items  []StockResponse               `json:"items"`
	Alerts stockstatus.Alerts[AlertItem] `json:"alerts"`
}

type StockRequest struct {
	Quantity *int    `json:"quantity"`
	MinStock *int    `json:"min_stock"`
	MaxStock *int    `json:"max_stock"`
	Location *string `json:"location"`
}

func toStockResponse(s *models.Stock) StockResponse {
	res := StockResponse{
		StockLevelResponse: toStockLevel(s),
		ProductID:          s.ProductID.String(),
		Status:             evaluate(stockstatus.InventoryView, levelOf(s)).Badge(),
	}
	if p := s.Product; p != nil {
		res.Product = StockProductRef{
			ID:        p.ID.String(),
			Name:      p.Name,
			Category:  p.Category,
			UnitPrice: p.UnitPrice,
		}
		if p.Supplier != nil {
			res.Product.Supplier = &SupplierRef{ID: p.Supplier.ID.String(), Name: p.Supplier.Name}
		}
	}
	return res
}

// matchesSearch compares q with product name, category and supplier name.
func matchesSearch(s *models.Stock, q string) bool {
	if q == "" {
		return true
	}
	if s.Product == nil {
		return false
	}
	fields := []string{s.Product.Name, s.Product.Category}
	if s.Product.Supplier != nil {
		fields = append(fields, s.Product.Supplier.Name)
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// GET /api/stock?q=
// Las alertas se calculan siempre sobre todo el inventario, sin el filtro.
func ListStockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := auth.SessionFrom(c)
		if err != nil {
			return err
		}

		rows, err := StockRows(database.DB, session.UserID)
		if err != nil {
			logger.FromCtx(c).Error("list stock failed", zap.Error(err))
			rows = nil
		}

		q := strings.ToLower(strings.TrimSpace(c.Query("q")))
		items := make([]StockResponse, 0, len(rows))
		for i := range rows {
			if matchesSearch(&rows[i], q) {
				items = append(items, toStockResponse(&rows[i]))
			}
		}

		return c.JSON(StockListResponse{
			Total:  len(rows),
			Items:  items,
			Alerts: BuildAlerts(rows),
		})
	}
}

// PUT /api/products/:id/stock, actualiza el stock o lo crea si no existe
func UpsertStockHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := auth.SessionFrom(c)
		if err != nil {
			return err
		}
		p, err := findProduct(c, session)
		if err != nil {
			return err
		}

		var body StockRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Datos inválidos")
		}

		var before any
		if cur := p.CurrentStock(); cur != nil {
			before = toStockLevel(cur)
		}

		stock, created, err := UpsertStock(database.DB, p, StockUpdate{
			Quantity: body.Quantity,
			MinStock: body.MinStock,
			MaxStock: body.MaxStock,
			Location: body.Location,
		}, thresholds(cfg))
		if err != nil {
			if errors.Is(err, ErrNegativeStock) {
				return fiber.NewError(fiber.StatusBadRequest, "Cantidad, stock mínimo y máximo no pueden ser negativos")
			}
			return httpx.WriteError(c, err, "No se pudo guardar el stock")
		}

		stock.Product = p
		res := toStockResponse(stock)

		action := models.AuditActionUpdate
		status := fiber.StatusOK
		if created {
			action = models.AuditActionCreate
			status = fiber.StatusCreated
		}
		audit.Record(audit.LogOptions{
			UserID:      session.UserID,
			UserEmail:   session.Email,
			EntityType:  "stock",
			EntityID:    stock.ID,
			Action:      action,
			Description: fmt.Sprintf("Stock de %s: %d unidades", p.Name, stock.Quantity),
			Before:      before,
			After:       res.StockLevelResponse,
		})

		return c.Status(status).JSON(res)
	}
}
