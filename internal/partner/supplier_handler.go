package partner

import (
	"fmt"

	"pyme-backend/internal/audit"
	"pyme-backend/internal/auth"
	"pyme-backend/internal/database"
	"pyme-backend/internal/httpx"
	"pyme-backend/internal/logger"
	"pyme-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type SupplierOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func toSupplierResponse(s *models.Supplier) ContactResponse {
	return ContactResponse{
		ID:            s.ID.String(),
		Name:          s.Name,
		ContactPerson: s.ContactPerson,
		Email:         s.Email,
		Phone:         s.Phone,
		Address:       s.Address,
		CreatedAt:     s.CreatedAt.Format(httpx.TimestampLayout),
		UpdatedAt:     s.UpdatedAt.Format(httpx.TimestampLayout),
	}
}

func supplierContact(s *models.Supplier) contact {
	return contact{s.Name, s.ContactPerson, s.Email, s.Phone, s.Address}
}

func setSupplierContact(s *models.Supplier, ct contact) {
	s.Name, s.ContactPerson, s.Email, s.Phone, s.Address = ct.Name, ct.ContactPerson, ct.Email, ct.Phone, ct.Address
}

func findSupplier(c *fiber.Ctx, session auth.Session) (*models.Supplier, error) {
	id, err := httpx.ParseID(c, "id", "Proveedor no encontrado")
	if err != nil {
		return nil, err
	}
	var s models.Supplier
	if err := database.DB.Scopes(session.Owned("")).First(&s, "id = ?", id).Error; err != nil {
		return nil, httpx.FindError(c, err, "Proveedor no encontrado")
	}
	return &s, nil
}

// GET /api/suppliers?q=
func ListSuppliersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := auth.SessionFrom(c)
		if err != nil {
			return err
		}

		res := make([]ContactResponse, 0)
		var suppliers []models.Supplier
		if err := database.DB.
			Scopes(session.Owned(""), httpx.Search(httpx.SearchPattern(c.Query("q")), "name", "contact_person", "email")).
			Order("created_at desc").
			Find(&suppliers).Error; err != nil {
			logger.FromCtx(c).Error("list suppliers failed", zap.Error(err))
			return c.JSON(res)
		}

		for i := range suppliers {
			res = append(res, toSupplierResponse(&suppliers[i]))
		}
		return c.JSON(res)
	}
}

// GET /api/suppliers/options, selector del formulario de productos
func ListSupplierOptionsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := auth.SessionFrom(c)
		if err != nil {
			return err
		}

		res := make([]SupplierOption, 0)
		var suppliers []models.Supplier
		if err := database.DB.Select("id", "name").
			Scopes(session.Owned("")).
			Order("name asc").
			Find(&suppliers).Error; err != nil {
			logger.FromCtx(c).Error("list supplier options failed", zap.Error(err))
			return c.JSON(res)
		}

		for _, s := range suppliers {
			res = append(res, SupplierOption{ID: s.ID.String(), Name: s.Name})
		}
		return c.JSON(res)
	}
}

// GET /api/suppliers/:id
func GetSupplierHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := auth.SessionFrom(c)
		if err != nil {
			return err
		}
		s, err := findSupplier(c, session)
		if err != nil {
			return err
		}
		return c.JSON(toSupplierResponse(s))
	}
}

// POST /api/suppliers
func CreateSupplierHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := auth.SessionFrom(c)
		if err != nil {
			return err
		}
		body, err := parseContact(c)
		if err != nil {
			return err
		}

		var ct contact
		if err := body.apply(&ct, true); err != nil {
			return err
		}

		s := models.Supplier{UserID: session.UserID}
		setSupplierContact(&s, ct)
		if err := database.DB.Create(&s).Error; err != nil {
			return httpx.WriteError(c, err, "No se pudo crear el proveedor")
		}

		audit.Record(audit.LogOptions{
			UserID:      session.UserID,
			UserEmail:   session.Email,
			EntityType:  "supplier",
			EntityID:    s.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Proveedor creado: %s", s.Name),
			After:       toSupplierResponse(&s),
		})

		return c.Status(fiber.StatusCreated).JSON(toSupplierResponse(&s))
	}
}

// PUT /api/suppliers/:id
func UpdateSupplierHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := auth.SessionFrom(c)
		if err != nil {
			return err
		}
		s, err := findSupplier(c, session)
		if err != nil {
			return err
		}
		body, err := parseContact(c)
		if err != nil {
			return err
		}

		before := toSupplierResponse(s)
		ct := supplierContact(s)
		if err := body.apply(&ct, false); err != nil {
			return err
		}
		setSupplierContact(s, ct)

		if err := database.DB.Save(s).Error; err != nil {
			return httpx.WriteError(c, err, "No se pudo actualizar el proveedor")
		}

		after := toSupplierResponse(s)
		audit.Record(audit.LogOptions{
			UserID:      session.UserID,
			UserEmail:   session.Email,
			EntityType:  "supplier",
			EntityID:    s.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Proveedor actualizado: %s", s.Name),
			Before:      before,
			After:       after,
		})

		return c.JSON(after)
	}
}

// DELETE /api/suppliers/:id
func DeleteSupplierHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := auth.SessionFrom(c)
		if err != nil {
			return err
		}
		s, err := findSupplier(c, session)
		if err != nil {
			return err
		}

		// Con productos o compras asociados no se borra
		var refs int64
		if err := database.DB.Model(&models.Product{}).Where("supplier_id = ?", s.ID).Count(&refs).Error; err != nil {
			return httpx.WriteError(c, err, "No se pudo eliminar el proveedor")
		}
		if refs == 0 {
			if err := database.DB.Model(&models.Purchase{}).Where("supplier_id = ?", s.ID).Count(&refs).Error; err != nil {
				return httpx.WriteError(c, err, "No se pudo eliminar el proveedor")
			}
		}
		if refs > 0 {
			return fiber.NewError(fiber.StatusConflict, "El proveedor tiene productos o compras asociados")
		}

		if err := database.DB.Delete(s).Error; err != nil {
			return httpx.WriteError(c, err, "No se pudo eliminar el proveedor")
		}

		audit.Record(audit.LogOptions{
			UserID:      session.UserID,
			UserEmail:   session.Email,
			EntityType:  "supplier",
			EntityID:    s.ID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Proveedor eliminado: %s", s.Name),
			Before:      toSupplierResponse(s),
		})

		return c.SendStatus(fiber.StatusNoContent)
	}
}
