// Package trade records purchases from suppliers and sales to clients.
package trade

import (
	"time"

	"pyme-backend/internal/auth"
	"pyme-backend/internal/database"
	"pyme-backend/internal/httpx"
	"pyme-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type NamedRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// line is the quantity/price/date part shared by purchases and sales.
type line struct {
	Quantity  int
	UnitPrice decimal.Decimal
	Date      time.Time
	Notes     string
}

type lineRequest struct {
	Quantity  *int             `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
	Notes     *string          `json:"notes"`
}

func (r lineRequest) apply(dst *line, date *string, create bool) error {
	if r.Quantity != nil || create {
		if r.Quantity == nil || *r.Quantity <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "La cantidad debe ser mayor a cero")
		}
		dst.Quantity = *r.Quantity
	}
	if r.UnitPrice != nil || create {
		if r.UnitPrice == nil || r.UnitPrice.IsNegative() {
			return fiber.NewError(fiber.StatusBadRequest, "El precio unitario es obligatorio y no puede ser negativo")
		}
		dst.UnitPrice = r.UnitPrice.Round(2)
	}
	if date != nil || create {
		raw := ""
		if date != nil {
			raw = *date
		}
		d, err := httpx.ParseDate(raw, time.Now().UTC().Truncate(24*time.Hour))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Fecha inválida, formato YYYY-MM-DD")
		}
		dst.Date = d
	}
	if r.Notes != nil {
		dst.Notes = httpx.Trimmed(r.Notes)
	}
	return nil
}

// total is always recomputed, client supplied totals are ignored.
func (l line) total() decimal.Decimal {
	return models.LineTotal(l.Quantity, l.UnitPrice)
}

// ownedID validates raw as the id of a row of model owned by session.
func ownedID(c *fiber.Ctx, session auth.Session, model any, raw *string, required bool, notFound string) (*uuid.UUID, error) {
	if raw == nil {
		if required {
			return nil, fiber.NewError(fiber.StatusBadRequest, notFound)
		}
		return nil, nil
	}
	id, err := httpx.ParseOptionalID(*raw)
	if err != nil || id == nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, notFound)
	}

	var n int64
	if err := database.DB.Model(model).Scopes(session.Owned("")).Where("id = ?", *id).Count(&n).Error; err != nil {
		return nil, httpx.WriteError(c, err, "No se pudo verificar la referencia")
	}
	if n == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, notFound)
	}
	return id, nil
}
