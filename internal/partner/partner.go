// Package partner manages the suppliers and clients a business trades with.
package partner

import (
	"net/mail"
	"strings"

	"pyme-backend/internal/httpx"

	"github.com/gofiber/fiber/v2"
)

// ContactRequest is the create/update body shared by suppliers and clients.
// Nil fields are left untouched on update.
type ContactRequest struct {
	Name          *string `json:"name"`
	ContactPerson *string `json:"contact_person"`
	Email         *string `json:"email"`
	Phone         *string `json:"phone"`
	Address       *string `json:"address"`
}

type ContactResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	ContactPerson string `json:"contact_person"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

// contact mirrors the columns both tables share.
type contact struct {
	Name          string
	ContactPerson string
	Email         string
	Phone         string
	Address       string
}

// apply copies the non-nil fields of r onto dst. create requires a name.
func (r *ContactRequest) apply(dst *contact, create bool) error {
	if r.Name != nil || create {
		name := httpx.Trimmed(r.Name)
		if name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "El nombre es obligatorio")
		}
		dst.Name = name
	}
	if r.ContactPerson != nil {
		dst.ContactPerson = httpx.Trimmed(r.ContactPerson)
	}
	if r.Email != nil {
		email := httpx.Trimmed(r.Email)
		if email != "" {
			// "Nombre <a@b.com>" es válido para mail, solo se guarda la dirección
			addr, err := mail.ParseAddress(email)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Email inválido")
			}
			email = strings.ToLower(addr.Address)
		}
		dst.Email = email
	}
	if r.Phone != nil {
		dst.Phone = httpx.Trimmed(r.Phone)
	}
	if r.Address != nil {
		dst.Address = httpx.Trimmed(r.Address)
	}
	return nil
}

func parseContact(c *fiber.Ctx) (*ContactRequest, error) {
	var body ContactRequest
	if err := c.BodyParser(&body); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Datos inválidos")
	}
	return &body, nil
}
