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

type PurchaseRequest struct {
	SupplierID   *string `json:"supplier_id"`
	ProductID    *string `json:"product_id"`
	PurchaseDate *string `json:"purchase_date"` // "2025-03-01"
	lineRequest
}

type PurchaseResponse struct {
	ID           string          `json:"id"`
	SupplierID   string          `json:"supplier_id"`
	Supplier     NamedRef        `json:"supplier"`
	ProductID    string          `json:"product_id"`
	Product      NamedRef        `json:"product"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	PurchaseDate string          `json:"purchase_date"`
	Notes        string          `json:"notes"`
	CreatedAt    string          `json:"created_at"`
}

func toPurchaseResponse(p *models.Purchase) PurchaseResponse {
	res := PurchaseResponse{
		ID:           p.ID.String(),
		SupplierID:   p.SupplierID.String(),
		Supplier:     NamedRef{ID: p.SupplierID.String()},
		ProductID:    p.ProductID.String(),
		Product:      NamedRef{ID: p.ProductID.String()},
		Quantity:     p.Quantity,
		UnitPrice:    p.UnitPrice,
		TotalAmount:  p.TotalAmount,
		PurchaseDate: p.PurchaseDate.Format(httpx.DateLayout),
		Notes:        p.Notes,
		CreatedAt:    p.CreatedAt.Format(httpx.TimestampLayout),
	}
	if p.Supplier != nil {
		res.Supplier.Name = p.Supplier.Name
	}
	if p.Product != nil {
		res.Product.Name = p.Product.Name
	}
	return res
}

func purchaseLine(p *models.Purchase) line {
	return line{Quantity: p.Quantity, UnitPrice: p.UnitPrice, Date: p.PurchaseDate, Notes: p.Notes}
}

func (r *PurchaseRequest) apply(c *fiber.Ctx, session auth.Session, p *models.Purchase, create bool) error {
	if r.SupplierID != nil || create {
		id, err := ownedID(c, session, &models.Supplier{}, r.SupplierID, true, "Proveedor no encontrado")
		if err != nil {
			return err
		}
		p.SupplierID = *id
		p.Supplier = nil
	}
	if r.ProductID != nil || create {
		id, err := ownedID(c, session, &models.Product{}, r.ProductID, true, "Producto no encontrado")
		if err != nil {
			return err
		}
		p.ProductID = *id
		p.Product = nil
	}

	l := purchaseLine(p)
	if err := r.lineRequest.apply(&l, r.PurchaseDate, create); err != nil {
		return err
	}
	p.Quantity, p.UnitPrice, p.PurchaseDate, p.Notes = l.Quantity, l.UnitPrice, l.Date, l.Notes
	p.TotalAmount = l.total()
	return nil
}

func findPurchase(c *fiber.Ctx, session auth.Session) (*models.Purchase, error) {
	id, err := httpx.ParseID(c, "id", "Compra no encontrada")
	if err != nil {
		return nil, err
	}
	var p models.Purchase
	if err := database.DB.Scopes(session.Owned("")).
		Preload("Supplier").Preload("Product").
		First(&p, "id = ?", id).Error; err != nil {
		return nil, httpx.FindError(c, err, "Compra no encontrada")
	}
	return &p, nil
}

// GET /api/purchases?from=2025-01-01&to=2025-01-31&supplier_id=&product_id=
func ListPurchasesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := auth.SessionFrom(c)
		if err != nil {
			return err
		}
		dateRange, err := httpx.DateRange(c, "purchase_date")
		if err != nil {
			return err
		}

		dbq := database.DB.Model(&models.Purchase{}).Scopes(session.Owned(""), dateRange)
		sid, err := httpx.ParseOptionalID(c.Query("supplier_id"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "supplier_id inválido")
		}
		if sid != nil {
			dbq = dbq.Where("supplier_id = ?", *sid)
		}
		pid, err := httpx.ParseOptionalID(c.Query("product_id"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "product_id inválido")
		}
		if pid != nil {
			dbq = dbq.Where("product_id = ?", *pid)
		}

		res := make([]PurchaseResponse, 0)
		var purchases []models.Purchase
		if err := dbq.Preload("Supplier").Preload("Product").
			Order("purchase_date desc, created_at desc").
			Find(&purchases).Error; err != nil {
			logger.FromCtx(c).Error("list purchases failed", zap.Error(err))
			return c.JSON(res)
		}

		for i := range purchases {
			res = append(res, toPurchaseResponse(&purchases[i]))
		}
		return c.JSON(res)
	}
}

// GET /api/purchases/:id
func GetPurchaseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := auth.SessionFrom(c)
		if err != nil {
			return err
		}
		p, err := findPurchase(c, session)
		if err != nil {
			return err
		}
		return c.JSON(toPurchaseResponse(p))
	}
}

// POST /api/purchases
func CreatePurchaseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := auth.SessionFrom(c)
		if err != nil {
			return err
		}

		var body PurchaseRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Datos inválidos")
		}

		p := models.Purchase{UserID: session.UserID}
		if err := body.apply(c, session, &p, true); err != nil {
			return err
		}
		if err := database.DB.Create(&p).Error; err != nil {
			return httpx.WriteError(c, err, "No se pudo registrar la compra")
		}
		if err := database.DB.Preload("Supplier").Preload("Product").First(&p, "id = ?", p.ID).Error; err != nil {
			logger.FromCtx(c).Warn("reload purchase failed", zap.Error(err))
		}

		res := toPurchaseResponse(&p)
		audit.Record(audit.LogOptions{
			UserID:      session.UserID,
			UserEmail:   session.Email,
			EntityType:  "purchase",
			EntityID:    p.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Compra registrada: %d x %s (%s)", p.Quantity, res.Product.Name, p.TotalAmount.StringFixed(2)),
			After:       res,
		})

		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

// PUT /api/purchases/:id
func UpdatePurchaseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := auth.SessionFrom(c)
		if err != nil {
			return err
		}
		p, err := findPurchase(c, session)
		if err != nil {
			return err
		}

		var body PurchaseRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Datos inválidos")
		}

		before := toPurchaseResponse(p)
		if err := body.apply(c, session, p, false); err != nil {
			return err
		}
		if err := database.DB.Omit("Supplier", "Product").Save(p).Error; err != nil {
			return httpx.WriteError(c, err, "No se pudo actualizar la compra")
		}
		if err := database.DB.Preload("Supplier").Preload("Product").First(p, "id = ?", p.ID).Error; err != nil {
			logger.FromCtx(c).Warn("reload purchase failed", zap.Error(err))
		}

		after := toPurchaseResponse(p)
		audit.Record(audit.LogOptions{
			UserID:      session.UserID,
			UserEmail:   session.Email,
			EntityType:  "purchase",
			EntityID:    p.ID,
			Action:      models.AuditActionUpdate,
			Description: "Compra actualizada",
			Before:      before,
			After:       after,
		})

		return c.JSON(after)
	}
}

// DELETE /api/purchases/:id
func DeletePurchaseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := auth.SessionFrom(c)
		if err != nil {
			return err
		}
		p, err := findPurchase(c, session)
		if err != nil {
			return err
		}

		if err := database.DB.Delete(p).Error; err != nil {
			return httpx.WriteError(c, err, "No se pudo eliminar la compra")
		}

		audit.Record(audit.LogOptions{
			UserID:      session.UserID,
			UserEmail:   session.Email,
			EntityType:  "purchase",
			EntityID:    p.ID,
			Action:      models.AuditActionDelete,
			Description: "Compra eliminada",
			Before:      toPurchaseResponse(p),
		})

		return c.SendStatus(fiber.StatusNoContent)
	}
}
