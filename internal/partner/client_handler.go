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

func toClientResponse(cl *models.Client) ContactResponse {
	return ContactResponse{
		ID:            cl.ID.String(),
		Name:          cl.Name,
		ContactPerson: cl.ContactPerson,
		Email:         cl.Email,
		Phone:         cl.Phone,
		Address:       cl.Address,
		CreatedAt:     cl.CreatedAt.Format(httpx.TimestampLayout),
		UpdatedAt:     cl.UpdatedAt.Format(httpx.TimestampLayout),
	}
}

func clientContact(cl *models.Client) contact {
	return contact{cl.Name, cl.ContactPerson, cl.Email, cl.Phone, cl.Address}
}

func setClientContact(cl *models.Client, ct contact) {
	cl.Name, cl.ContactPerson, cl.Email, cl.Phone, cl.Address = ct.Name, ct.ContactPerson, ct.Email, ct.Phone, ct.Address
}

func findClient(c *fiber.Ctx, session auth.Session) (*models.Client, error) {
	id, err := httpx.ParseID(c, "id", "Cliente no encontrado")
	if err != nil {
		return nil, err
	}
	var cl models.Client
	if err := database.DB.Scopes(session.Owned("")).First(&cl, "id = ?", id).Error; err != nil {
		return nil, httpx.FindError(c, err, "Cliente no encontrado")
	}
	return &cl, nil
}

// GET /api/clients?q=
func ListClientsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := auth.SessionFrom(c)
		if err != nil {
			return err
		}

		res := make([]ContactResponse, 0)
		var clients []models.Client
		if err := database.DB.
			Scopes(session.Owned(""), httpx.Search(httpx.SearchPattern(c.Query("q")), "name", "contact_person", "email")).
			Order("created_at desc").
			Find(&clients).Error; err != nil {
			logger.FromCtx(c).Error("list clients failed", zap.Error(err))
			return c.JSON(res)
		}

		for i := range clients {
			res = append(res, toClientResponse(&clients[i]))
		}
		return c.JSON(res)
	}
}

// GET /api/clients/:id
func GetClientHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := auth.SessionFrom(c)
		if err != nil {
			return err
		}
		cl, err := findClient(c, session)
		if err != nil {
			return err
		}
		return c.JSON(toClientResponse(cl))
	}
}

// POST /api/clients
func CreateClientHandler() fiber.Handler {
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

		cl := models.Client{UserID: session.UserID}
		setClientContact(&cl, ct)
		if err := database.DB.Create(&cl).Error; err != nil {
			return httpx.WriteError(c, err, "No se pudo crear el cliente")
		}

		audit.Record(audit.LogOptions{
			UserID:      session.UserID,
			UserEmail:   session.Email,
			EntityType:  "client",
			EntityID:    cl.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Cliente creado: %s", cl.Name),
			After:       toClientResponse(&cl),
		})

		return c.Status(fiber.StatusCreated).JSON(toClientResponse(&cl))
	}
}

// PUT /api/clients/:id
func UpdateClientHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := auth.SessionFrom(c)
		if err != nil {
			return err
		}
		cl, err := findClient(c, session)
		if err != nil {
			return err
		}
		body, err := parseContact(c)
		if err != nil {
			return err
		}

		before := toClientResponse(cl)
		ct := clientContact(cl)
		if err := body.apply(&ct, false); err != nil {
			return err
		}
		setClientContact(cl, ct)

		if err := database.DB.Save(cl).Error; err != nil {
			return httpx.WriteError(c, err, "No se pudo actualizar el cliente")
		}

		after := toClientResponse(cl)
		audit.Record(audit.LogOptions{
			UserID:      session.UserID,
			UserEmail:   session.Email,
			EntityType:  "client",
			EntityID:    cl.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Cliente actualizado: %s", cl.Name),
			Before:      before,
			After:       after,
		})

		return c.JSON(after)
	}
}

// DELETE /api/clients/:id
func DeleteClientHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := auth.SessionFrom(c)
		if err != nil {
			return err
		}
		cl, err := findClient(c, session)
		if err != nil {
			return err
		}

		var sales int64
		if err := database.DB.Model(&models.Sale{}).Where("client_id = ?", cl.ID).Count(&sales).Error; err != nil {
			return httpx.WriteError(c, err, "No se pudo eliminar el cliente")
		}
		if sales > 0 {
			return fiber.NewError(fiber.StatusConflict, fmt.Sprintf("El cliente tiene %d ventas asociadas", sales))
		}

		if err := database.DB.Delete(cl).Error; err != nil {
			return httpx.WriteError(c, err, "No se pudo eliminar el cliente")
		}

		audit.Record(audit.LogOptions{
			UserID:      session.UserID,
			UserEmail:   session.Email,
			EntityType:  "client",
			EntityID:    cl.ID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Cliente eliminado: %s", cl.Name),
			Before:      toClientResponse(cl),
		})

		return c.SendStatus(fiber.StatusNoContent)
	}
}
