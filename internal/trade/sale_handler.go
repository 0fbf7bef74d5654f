package trade

import (
	"fmt"

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

type SaleRequest struct {
	ClientID  *string `json:"client_id"`
	ProductID *string `json:"product_id"`
	SaleDate  *string `json:"sale_date"` // "2025-03-01"
	lineRequest
}

type SaleResponse struct {
	ID          string          `json:"id"`
	ClientID    string          `json:"client_id"`
	Client      NamedRef        `json:"client"`
	ProductID   string          `json:"product_id"`
	Product     NamedRef        `json:"product"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	SaleDate    string          `json:"sale_date"`
	Notes       string          `json:"notes"`
	CreatedAt   string          `json:"created_at"`
}

func toSaleResponse(s *models.Sale) SaleResponse {
	res := SaleResponse{
		ID:          s.ID.String(),
		ClientID:    s.ClientID.String(),
		Client:      NamedRef{ID: s.ClientID.String()},
		ProductID:   s.ProductID.String(),
		Product:     NamedRef{ID: s.ProductID.String()},
		Quantity:    s.Quantity,
		UnitPrice:   s.UnitPrice,
		TotalAmount: s.TotalAmount,
		SaleDate:    s.SaleDate.Format(httpx.DateLayout),
		Notes:       s.Notes,
		CreatedAt:   s.CreatedAt.Format(httpx.TimestampLayout),
	}
	if s.Client != nil {
		res.Client.Name = s.Client.Name
	}
	if s.Product != nil {
		res.Product.Name = s.Product.Name
	}
	return res
}

func saleLine(s *models.Sale) line {
	return line{Quantity: s.Quantity, UnitPrice: s.UnitPrice, Date: s.SaleDate, Notes: s.Notes}
}

func (r *SaleRequest) apply(c *fiber.Ctx, session auth.Session, s *models.Sale, create bool) error {
	if r.ClientID != nil || create {
		id, err := ownedID(c, session, &models.Client{}, r.ClientID, true, "Cliente no encontrado")
		if err != nil {
			return err
		}
		s.ClientID = *id
		s.Client = nil
	}
	if r.ProductID != nil || create {
		id, err := ownedID(c, session, &models.Product{}, r.ProductID, true, "Producto no encontrado")
		if err != nil {
			return err
		}
		s.ProductID = *id
		s.Product = nil
	}

	l := saleLine(s)
	if err := r.lineRequest.apply(&l, r.SaleDate, create); err != nil {
		return err
	}
	s.Quantity, s.UnitPrice, s.SaleDate, s.Notes = l.Quantity, l.UnitPrice, l.Date, l.Notes
	s.TotalAmount = l.total()
	return nil
}

func findSale(c *fiber.Ctx, session auth.Session) (*models.Sale, error) {
	id, err := httpx.ParseID(c, "id", "Venta no encontrada")
	if err != nil {
		return nil, err
	}
	var s models.Sale
	if err := database.DB.Scopes(session.Owned("")).
		Preload("Client").Preload("Product").
		First(&s, "id = ?", id).Error; err != nil {
		return nil, httpx.FindError(c, err, "Venta no encontrada")
	}
	return &s, nil
}

// GET /api/sales?from=2025-01-01&to=2025-01-31&client_id=&product_id=
func ListSalesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := auth.SessionFrom(c)
		if err != nil {
			return err
		}
		dateRange, err := httpx.DateRange(c, "sale_date")
		if err != nil {
			return err
		}

		dbq := database.DB.Model(&models.Sale{}).Scopes(session.Owned(""), dateRange)
		cid, err := httpx.ParseOptionalID(c.Query("client_id"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "client_id inválido")
		}
		if cid != nil {
			dbq = dbq.Where("client_id = ?", *cid)
		}
		pid, err := httpx.ParseOptionalID(c.Query("product_id"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "product_id inválido")
		}
		if pid != nil {
			dbq = dbq.Where("product_id = ?", *pid)
		}

		res := make([]SaleResponse, 0)
		var sales []models.Sale
		if err := dbq.Preload("Client").Preload("Product").
			Order("sale_date desc, created_at desc").
			Find(&sales).Error; err != nil {
			logger.FromCtx(c).Error("list sales failed", zap.Error(err))
			return c.JSON(res)
		}

		for i := range sales {
			res = append(res, toSaleResponse(&sales[i]))
		}
		return c.JSON(res)
	}
}

// GET /api/sales/:id
func GetSaleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := auth.SessionFrom(c)
		if err != nil {
			return err
		}
		s, err := findSale(c, session)
		if err != nil {
			return err
		}
		return c.JSON(toSaleResponse(s))
	}
}

// POST /api/sales
func CreateSaleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := auth.SessionFrom(c)
		if err != nil {
			return err
		}

		var body SaleRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Datos inválidos")
		}

		s := models.Sale{UserID: session.UserID}
		if err := body.apply(c, session, &s, true); err != nil {
			return err
		}
		if err := database.DB.Create(&s).Error; err != nil {
			return httpx.WriteError(c, err, "No se pudo registrar la venta")
		}
		if err := database.DB.Preload("Client").Preload("Product").First(&s, "id = ?", s.ID).Error; err != nil {
			logger.FromCtx(c).Warn("reload sale failed", zap.Error(err))
		}

		res := toSaleResponse(&s)
		audit.Record(audit.LogOptions{
			UserID:      session.UserID,
			UserEmail:   session.Email,
			EntityType:  "sale",
			EntityID:    s.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Venta registrada: %d x %s (%s)", s.Quantity, res.Product.Name, s.TotalAmount.StringFixed(2)),
			After:       res,
		})

		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

// PUT /api/sales/:id
func UpdateSaleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := auth.SessionFrom(c)
		if err != nil {
			return err
		}
		s, err := findSale(c, session)
		if err != nil {
			return err
		}

		var body SaleRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Datos inválidos")
		}

		before := toSaleResponse(s)
		if err := body.apply(c, session, s, false); err != nil {
			return err
		}
		if err := database.DB.Omit("Client", "Product").Save(s).Error; err != nil {
			return httpx.WriteError(c, err, "No se pudo actualizar la venta")
		}
		if err := database.DB.Preload("Client").Preload("Product").First(s, "id = ?", s.ID).Error; err != nil {
			logger.FromCtx(c).Warn("reload sale failed", zap.Error(err))
		}

		after := toSaleResponse(s)
		audit.Record(audit.LogOptions{
			UserID:      session.UserID,
			UserEmail:   session.Email,
			EntityType:  "sale",
			EntityID:    s.ID,
			Action:      models.AuditActionUpdate,
			Description: "Venta actualizada",
			Before:      before,
			After:       after,
		})

		return c.JSON(after)
	}
}

// DELETE /api/sales/:id
func DeleteSaleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := auth.SessionFrom(c)
		if err != nil {
			return err
		}
		s, err := findSale(c, session)
		if err != nil {
			return err
		}

		if err := database.DB.Delete(s).Error; err != nil {
			return httpx.WriteError(c, err, "No se pudo eliminar la venta")
		}

		audit.Record(audit.LogOptions{
			UserID:      session.UserID,
			UserEmail:   session.Email,
			EntityType:  "sale",
			EntityID:    s.ID,
			Action:      models.AuditActionDelete,
			Description: "Venta eliminada",
			Before:      toSaleResponse(s),
		})

		return c.SendStatus(fiber.StatusNoContent)
	}
}
