package production

import (
	"fmt"
	"time"

	"pyme-backend/internal/audit"
	"pyme-backend/internal/auth"
	"pyme-backend/internal/database"
	"pyme-backend/internal/httpx"
	"pyme-backend/internal/logger"
	"pyme-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ProductionRequest struct {
	ProductID        *string          `json:"product_id"`
	QuantityProduced *int             `json:"quantity_produced"`
	ProductionDate   *string          `json:"production_date"`
	CostPerUnit      *decimal.Decimal `json:"cost_per_unit"`
	Notes            *string          `json:"notes"`
}

type ProductionResponse struct {
	ID               string          `json:"id"`
	ProductID        string          `json:"product_id"`
	ProductName      string          `json:"product_name"`
	QuantityProduced int             `json:"quantity_produced"`
	ProductionDate   string          `json:"production_date"`
	CostPerUnit      decimal.Decimal `json:"cost_per_unit"`
	TotalCost        decimal.Decimal `json:"total_cost"`
	Notes            string          `json:"notes"`
	CreatedAt        string          `json:"created_at"`
}

func toResponse(p *models.Production) ProductionResponse {
	res := ProductionResponse{
		ID:               p.ID.String(),
		ProductID:        p.ProductID.String(),
		QuantityProduced: p.QuantityProduced,
		ProductionDate:   p.ProductionDate.Format(httpx.DateLayout),
		CostPerUnit:      p.CostPerUnit,
		TotalCost:        p.TotalCost,
		Notes:            p.Notes,
		CreatedAt:        p.CreatedAt.Format(httpx.TimestampLayout),
	}
	if p.Product != nil {
		res.ProductName = p.Product.Name
	}
	return res
}

func (r *ProductionRequest) apply(c *fiber.Ctx, session auth.Session, p *models.Production, create bool) error {
	if r.ProductID != nil || create {
		id, err := httpx.ParseOptionalID(httpx.Trimmed(r.ProductID))
		if err != nil || id == nil {
			return fiber.NewError(fiber.StatusBadRequest, "Producto no encontrado")
		}
		var n int64
		if err := database.DB.Model(&models.Product{}).Scopes(session.Owned("")).Where("id = ?", *id).Count(&n).Error; err != nil {
			return httpx.WriteError(c, err, "No se pudo verificar el producto")
		}
		if n == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Producto no encontrado")
		}
		p.ProductID = *id
		p.Product = nil
	}
	if r.QuantityProduced != nil || create {
		if r.QuantityProduced == nil || *r.QuantityProduced <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "La cantidad producida debe ser mayor a cero")
		}
		p.QuantityProduced = *r.QuantityProduced
	}
	if r.CostPerUnit != nil || create {
		if r.CostPerUnit == nil || r.CostPerUnit.IsNegative() {
			return fiber.NewError(fiber.StatusBadRequest, "El costo unitario es obligatorio y no puede ser negativo")
		}
		p.CostPerUnit = r.CostPerUnit.Round(2)
	}
	if r.ProductionDate != nil || create {
		d, err := httpx.ParseDate(httpx.Trimmed(r.ProductionDate), time.Now().UTC().Truncate(24*time.Hour))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Fecha inválida, formato YYYY-MM-DD")
		}
		p.ProductionDate = d
	}
	if r.Notes != nil {
		p.Notes = httpx.Trimmed(r.Notes)
	}

	p.TotalCost = models.LineTotal(p.QuantityProduced, p.CostPerUnit)
	return nil
}

func findProduction(c *fiber.Ctx, session auth.Session) (*models.Production, error) {
	id, err := httpx.ParseID(c, "id", "Registro de producción no encontrado")
	if err != nil {
		return nil, err
	}
	var p models.Production
	if err := database.DB.Scopes(session.Owned("")).Preload("Product").First(&p, "id = ?", id).Error; err != nil {
		return nil, httpx.FindError(c, err, "Registro de producción no encontrado")
	}
	return &p, nil
}

// GET /api/production?from=&to=&product_id=
func ListProductionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := auth.SessionFrom(c)
		if err != nil {
			return err
		}
		dateRange, err := httpx.DateRange(c, "production_date")
		if err != nil {
			return err
		}

		dbq := database.DB.Model(&models.Production{}).Scopes(session.Owned(""), dateRange)
		pid, err := httpx.ParseOptionalID(c.Query("product_id"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "product_id inválido")
		}
		if pid != nil {
			dbq = dbq.Where("product_id = ?", *pid)
		}

		res := make([]ProductionResponse, 0)
		var rows []models.Production
		if err := dbq.Preload("Product").Order("production_date desc, created_at desc").Find(&rows).Error; err != nil {
			logger.FromCtx(c).Error("list production failed", zap.Error(err))
			return c.JSON(res)
		}

		for i := range rows {
			res = append(res, toResponse(&rows[i]))
		}
		return c.JSON(res)
	}
}

// GET /api/production/:id
func GetProductionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := auth.SessionFrom(c)
		if err != nil {
			return err
		}
		p, err := findProduction(c, session)
		if err != nil {
			return err
		}
		return c.JSON(toResponse(p))
	}
}

// POST /api/production
func CreateProductionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := auth.SessionFrom(c)
		if err != nil {
			return err
		}

		var body ProductionRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Datos inválidos")
		}

		p := models.Production{UserID: session.UserID}
		if err := body.apply(c, session, &p, true); err != nil {
			return err
		}
		if err := database.DB.Create(&p).Error; err != nil {
			return httpx.WriteError(c, err, "No se pudo registrar la producción")
		}
		if err := database.DB.Preload("Product").First(&p, "id = ?", p.ID).Error; err != nil {
			logger.FromCtx(c).Warn("reload production failed", zap.Error(err))
		}

		res := toResponse(&p)
		audit.Record(audit.LogOptions{
			UserID:      session.UserID,
			UserEmail:   session.Email,
			EntityType:  "production",
			EntityID:    p.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Producción registrada: %d x %s", p.QuantityProduced, res.ProductName),
			After:       res,
		})

		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

// PUT /api/production/:id
func UpdateProductionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := auth.SessionFrom(c)
		if err != nil {
			return err
		}
		p, err := findProduction(c, session)
		if err != nil {
			return err
		}

		var body ProductionRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Datos inválidos")
		}

		before := toResponse(p)
		if err := body.apply(c, session, p, false); err != nil {
			return err
		}
		if err := database.DB.Omit("Product").Save(p).Error; err != nil {
			return httpx.WriteError(c, err, "No se pudo actualizar la producción")
		}
		if err := database.DB.Preload("Product").First(p, "id = ?", p.ID).Error; err != nil {
			logger.FromCtx(c).Warn("reload production failed", zap.Error(err))
		}

		after := toResponse(p)
		audit.Record(audit.LogOptions{
			UserID:      session.UserID,
			UserEmail:   session.Email,
			EntityType:  "production",
			EntityID:    p.ID,
			Action:      models.AuditActionUpdate,
			Description: "Producción actualizada",
			Before:      before,
			After:       after,
		})

		return c.JSON(after)
	}
}

// DELETE /api/production/:id
func DeleteProductionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := auth.SessionFrom(c)
		if err != nil {
			return err
		}
		p, err := findProduction(c, session)
		if err != nil {
			return err
		}

		if err := database.DB.Delete(p).Error; err != nil {
			return httpx.WriteError(c, err, "No se pudo eliminar la producción")
		}

		audit.Record(audit.LogOptions{
			UserID:      session.UserID,
			UserEmail:   session.Email,
			EntityType:  "production",
			EntityID:    p.ID,
			Action:      models.AuditActionDelete,
			Description: "Producción eliminada",
			Before:      toResponse(p),
		})

		return c.SendStatus(fiber.StatusNoContent)
	}
}
