package inventory

import (
	"errors"
	"fmt"

	"pyme-backend/internal/audit"
	"pyme-backend/internal/auth"
	"pyme-backend/internal/config"
	"pyme-backend/internal/database"
	"pyme-backend/internal/httpx"
	"pyme-backend/internal/logger"
	"pyme-backend/internal/models"
	"pyme-backend/internal/stockstatus"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type SupplierRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type StockLevelResponse struct {
	ID        string `json:"id"`
	Quantity  int    `json:"quantity"`
	MinStock  int    `json:"min_stock"`
	MaxStock  int    `json:"max_stock"`
	Location  string `json:"location"`
	UpdatedAt string `json:"updated_at"`
}

type ProductResponse struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Category    string               `json:"category"`
	UnitPrice   decimal.Decimal      `json:"unit_price"`
	SupplierID  *string              `json:"supplier_id"`
	Supplier    *SupplierRef         `json:"supplier"`
	Stock       []StockLevelResponse `json:"stock"`

	// Clasificación de la vista de catálogo (sin Exceso)
	StockStatus     stockstatus.Badge `json:"stock_status"`
	Quantity        int               `json:"quantity"`
	LowStockWarning bool              `json:"low_stock_warning"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// ProductRequest is used for create and for partial update. An empty
// supplier_id clears the supplier.
type ProductRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Category    *string          `json:"category"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
	SupplierID  *string          `json:"supplier_id"`
}

func toStockLevel(s *models.Stock) StockLevelResponse {
	return StockLevelResponse{
		ID:        s.ID.String(),
		Quantity:  s.Quantity,
		MinStock:  s.MinStock,
		MaxStock:  s.MaxStock,
		Location:  s.Location,
		UpdatedAt: s.UpdatedAt.Format(httpx.TimestampLayout),
	}
}

func toProductResponse(p *models.Product) ProductResponse {
	res := ProductResponse{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		UnitPrice:   p.UnitPrice,
		Stock:       make([]StockLevelResponse, 0, len(p.Stock)),
		CreatedAt:   p.CreatedAt.Format(httpx.TimestampLayout),
		UpdatedAt:   p.UpdatedAt.Format(httpx.TimestampLayout),
	}
	if p.SupplierID != nil {
		id := p.SupplierID.String()
		res.SupplierID = &id
	}
	if p.Supplier != nil {
		res.Supplier = &SupplierRef{ID: p.Supplier.ID.String(), Name: p.Supplier.Name}
	}
	for i := range p.Stock {
		res.Stock = append(res.Stock, toStockLevel(&p.Stock[i]))
	}

	current := p.CurrentStock()
	level := levelOf(current)
	res.StockStatus = evaluate(stockstatus.CatalogView, level).Badge()
	if level != nil {
		res.Quantity = level.Quantity
		res.LowStockWarning = stockstatus.IsLow(*level)
	}
	return res
}

func thresholds(cfg *config.Config) Thresholds {
	return Thresholds{MinStock: cfg.DefaultMinStock, MaxStock: cfg.DefaultMaxStock}
}

// resolveSupplier checks that raw names a supplier of the session user.
func resolveSupplier(c *fiber.Ctx, session auth.Session, raw string) (*uuid.UUID, error) {
	id, err := httpx.ParseOptionalID(raw)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "supplier_id inválido")
	}
	if id == nil {
		return nil, nil
	}

	var n int64
	if err := database.DB.Model(&models.Supplier{}).Scopes(session.Owned("")).Where("id = ?", *id).Count(&n).Error; err != nil {
		return nil, httpx.WriteError(c, err, "No se pudo verificar el proveedor")
	}
	if n == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Proveedor no encontrado")
	}
	return id, nil
}

func (r *ProductRequest) apply(c *fiber.Ctx, session auth.Session, p *models.Product, create bool) error {
	if r.Name != nil || create {
		name := httpx.Trimmed(r.Name)
		if name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "El nombre es obligatorio")
		}
		p.Name = name
	}
	if r.Description != nil {
		p.Description = httpx.Trimmed(r.Description)
	}
	if r.Category != nil {
		p.Category = httpx.Trimmed(r.Category)
	}
	if r.UnitPrice != nil {
		if r.UnitPrice.IsNegative() {
			return fiber.NewError(fiber.StatusBadRequest, "El precio unitario no puede ser negativo")
		}
		p.UnitPrice = r.UnitPrice.Round(2)
	}
	if r.SupplierID != nil {
		supplierID, err := resolveSupplier(c, session, *r.SupplierID)
		if err != nil {
			return err
		}
		p.SupplierID = supplierID
		p.Supplier = nil
	}
	return nil
}

func findProduct(c *fiber.Ctx, session auth.Session) (*models.Product, error) {
	id, err := httpx.ParseID(c, "id", "Producto no encontrado")
	if err != nil {
		return nil, err
	}
	var p models.Product
	if err := database.DB.Scopes(session.Owned("")).
		Preload("Supplier").
		Preload("Stock").
		First(&p, "id = ?", id).Error; err != nil {
		return nil, httpx.FindError(c, err, "Producto no encontrado")
	}
	return &p, nil
}

func reloadProduct(p *models.Product) error {
	return database.DB.Preload("Supplier").Preload("Stock").First(p, "id = ?", p.ID).Error
}

// GET /api/products?q=
func ListProductsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := auth.SessionFrom(c)
		if err != nil {
			return err
		}

		res := make([]ProductResponse, 0)
		var products []models.Product
		if err := database.DB.Model(&models.Product{}).
			Select("products.*").
			Joins("LEFT JOIN suppliers ON suppliers.id = products.supplier_id").
			Scopes(
				session.Owned("products"),
				httpx.Search(httpx.SearchPattern(c.Query("q")), "products.name", "products.category", "suppliers.name"),
			).
			Preload("Supplier").
			Preload("Stock").
			Order("products.created_at desc").
			Find(&products).Error; err != nil {
			logger.FromCtx(c).Error("list products failed", zap.Error(err))
			return c.JSON(res)
		}

		for i := range products {
			res = append(res, toProductResponse(&products[i]))
		}
		return c.JSON(res)
	}
}

// GET /api/products/:id
func GetProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := auth.SessionFrom(c)
		if err != nil {
			return err
		}
		p, err := findProduct(c, session)
		if err != nil {
			return err
		}
		return c.JSON(toProductResponse(p))
	}
}

// POST /api/products, crea también el registro de stock inicial
func CreateProductHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := auth.SessionFrom(c)
		if err != nil {
			return err
		}

		var body ProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Datos inválidos")
		}

		p := models.Product{UserID: session.UserID, UnitPrice: decimal.Zero}
		if err := body.apply(c, session, &p, true); err != nil {
			return err
		}

		if err := CreateProduct(database.DB, &p, thresholds(cfg)); err != nil {
			return httpx.WriteError(c, err, "No se pudo crear el producto")
		}
		if err := reloadProduct(&p); err != nil {
			logger.FromCtx(c).Warn("reload product failed", zap.Error(err))
		}

		res := toProductResponse(&p)
		audit.Record(audit.LogOptions{
			UserID:      session.UserID,
			UserEmail:   session.Email,
			EntityType:  "product",
			EntityID:    p.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Producto creado: %s", p.Name),
			After:       res,
		})

		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

// PUT /api/products/:id
func UpdateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := auth.SessionFrom(c)
		if err != nil {
			return err
		}
		p, err := findProduct(c, session)
		if err != nil {
			return err
		}

		var body ProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Datos inválidos")
		}

		before := toProductResponse(p)
		if err := body.apply(c, session, p, false); err != nil {
			return err
		}

		if err := database.DB.Omit("Supplier", "Stock").Save(p).Error; err != nil {
			return httpx.WriteError(c, err, "No se pudo actualizar el producto")
		}
		if err := reloadProduct(p); err != nil {
			logger.FromCtx(c).Warn("reload product failed", zap.Error(err))
		}

		after := toProductResponse(p)
		audit.Record(audit.LogOptions{
			UserID:      session.UserID,
			UserEmail:   session.Email,
			EntityType:  "product",
			EntityID:    p.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Producto actualizado: %s", p.Name),
			Before:      before,
			After:       after,
		})

		return c.JSON(after)
	}
}

// DELETE /api/products/:id, elimina primero el stock y luego el producto
func DeleteProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := auth.SessionFrom(c)
		if err != nil {
			return err
		}
		p, err := findProduct(c, session)
		if err != nil {
			return err
		}

		before := toProductResponse(p)
		if err := DeleteProduct(database.DB, p); err != nil {
			if errors.Is(err, ErrProductInUse) {
				return fiber.NewError(fiber.StatusConflict, "El producto tiene compras, ventas o producción registradas")
			}
			return httpx.WriteError(c, err, "No se pudo eliminar el producto")
		}

		audit.Record(audit.LogOptions{
			UserID:      session.UserID,
			UserEmail:   session.Email,
			EntityType:  "product",
			EntityID:    p.ID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Producto eliminado: %s", p.Name),
			Before:      before,
		})

		return c.SendStatus(fiber.StatusNoContent)
	}
}
