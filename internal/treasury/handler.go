package treasury

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

type TreasuryRequest struct {
	TransactionType *models.TreasuryType `json:"transaction_type"` // "income" | "expense"
	Category        *string              `json:"category"`
	Amount          *decimal.Decimal     `json:"amount"`
	Description     *string              `json:"description"`
	TransactionDate *string              `json:"transaction_date"` // vacío = hoy
	ReferenceType   *string              `json:"reference_type"`
	ReferenceID     *string              `json:"reference_id"`
}

type TreasuryResponse struct {
	ID              string              `json:"id"`
	TransactionType models.TreasuryType `json:"transaction_type"`
	Category        string              `json:"category"`
	Amount          decimal.Decimal     `json:"amount"`
	Description     string              `json:"description"`
	TransactionDate string              `json:"transaction_date"`
	ReferenceType   string              `json:"reference_type"`
	ReferenceID     *string             `json:"reference_id"`
	CreatedAt       string              `json:"created_at"`
}

type CategoryTotal struct {
	TransactionType models.TreasuryType `json:"transaction_type"`
	Category        string              `json:"category"`
	Total           decimal.Decimal     `json:"total"`
}

type SummaryResponse struct {
	Income     decimal.Decimal `json:"income"`
	Expense    decimal.Decimal `json:"expense"`
	Balance    decimal.Decimal `json:"balance"`
	ByCategory []CategoryTotal `json:"by_category"`
}

func toResponse(t *models.Treasury) TreasuryResponse {
	res := TreasuryResponse{
		ID:              t.ID.String(),
		TransactionType: t.TransactionType,
		Category:        t.Category,
		Amount:          t.Amount,
		Description:     t.Description,
		TransactionDate: t.TransactionDate.Format(httpx.DateLayout),
		ReferenceType:   t.ReferenceType,
		CreatedAt:       t.CreatedAt.Format(httpx.TimestampLayout),
	}
	if t.ReferenceID != nil {
		id := t.ReferenceID.String()
		res.ReferenceID = &id
	}
	return res
}

func (r *TreasuryRequest) apply(t *models.Treasury, create bool) error {
	if r.TransactionType != nil || create {
		if r.TransactionType == nil || !r.TransactionType.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "transaction_type debe ser 'income' o 'expense'")
		}
		t.TransactionType = *r.TransactionType
	}
	if r.Category != nil || create {
		category := httpx.Trimmed(r.Category)
		if category == "" {
			return fiber.NewError(fiber.StatusBadRequest, "La categoría es obligatoria")
		}
		t.Category = category
	}
	if r.Amount != nil || create {
		if r.Amount == nil || !r.Amount.IsPositive() {
			return fiber.NewError(fiber.StatusBadRequest, "El monto debe ser mayor a cero")
		}
		t.Amount = r.Amount.Round(2)
	}
	if r.TransactionDate != nil || create {
		d, err := httpx.ParseDate(httpx.Trimmed(r.TransactionDate), time.Now().UTC().Truncate(24*time.Hour))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Fecha inválida, formato YYYY-MM-DD")
		}
		t.TransactionDate = d
	}
	if r.Description != nil {
		t.Description = httpx.Trimmed(r.Description)
	}
	if r.ReferenceType != nil {
		t.ReferenceType = httpx.Trimmed(r.ReferenceType)
	}
	if r.ReferenceID != nil {
		id, err := httpx.ParseOptionalID(*r.ReferenceID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "reference_id inválido")
		}
		t.ReferenceID = id
	}
	return nil
}

func findEntry(c *fiber.Ctx, session auth.Session) (*models.Treasury, error) {
	id, err := httpx.ParseID(c, "id", "Movimiento no encontrado")
	if err != nil {
		return nil, err
	}
	var t models.Treasury
	if err := database.DB.Scopes(session.Owned("")).First(&t, "id = ?", id).Error; err != nil {
		return nil, httpx.FindError(c, err, "Movimiento no encontrado")
	}
	return &t, nil
}

// GET /api/treasury?type=income&category=&from=&to=
func ListTreasuryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := auth.SessionFrom(c)
		if err != nil {
			return err
		}
		dateRange, err := httpx.DateRange(c, "transaction_date")
		if err != nil {
			return err
		}

		dbq := database.DB.Model(&models.Treasury{}).Scopes(session.Owned(""), dateRange)
		if typ := models.TreasuryType(c.Query("type")); typ != "" {
			if !typ.Valid() {
				return fiber.NewError(fiber.StatusBadRequest, "type debe ser 'income' o 'expense'")
			}
			dbq = dbq.Where("transaction_type = ?", typ)
		}
		if category := c.Query("category"); category != "" {
			dbq = dbq.Where("category = ?", category)
		}

		res := make([]TreasuryResponse, 0)
		var entries []models.Treasury
		if err := dbq.Order("transaction_date desc, created_at desc").Find(&entries).Error; err != nil {
			logger.FromCtx(c).Error("list treasury failed", zap.Error(err))
			return c.JSON(res)
		}

		for i := range entries {
			res = append(res, toResponse(&entries[i]))
		}
		return c.JSON(res)
	}
}

// GET /api/treasury/summary?from=&to=
func SummaryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := auth.SessionFrom(c)
		if err != nil {
			return err
		}
		dateRange, err := httpx.DateRange(c, "transaction_date")
		if err != nil {
			return err
		}

		type row struct {
			TransactionType string          `gorm:"column:transaction_type"`
			Category        string          `gorm:"column:category"`
			Total           decimal.Decimal `gorm:"column:total"`
		}
		var rows []row

		resp := SummaryResponse{ByCategory: make([]CategoryTotal, 0)}
		if err := database.DB.Model(&models.Treasury{}).
			Select("transaction_type, category, SUM(amount) as total").
			Scopes(session.Owned(""), dateRange).
			Group("transaction_type, category").
			Order("transaction_type, category").
			Scan(&rows).Error; err != nil {
			logger.FromCtx(c).Error("treasury summary failed", zap.Error(err))
			return c.JSON(resp)
		}

		for _, r := range rows {
			typ := models.TreasuryType(r.TransactionType)
			switch typ {
			case models.TreasuryIncome:
				resp.Income = resp.Income.Add(r.Total)
			case models.TreasuryExpense:
				resp.Expense = resp.Expense.Add(r.Total)
			}
			resp.ByCategory = append(resp.ByCategory, CategoryTotal{
				TransactionType: typ,
				Category:        r.Category,
				Total:           r.Total,
			})
		}
		resp.Balance = resp.Income.Sub(resp.Expense)

		return c.JSON(resp)
	}
}

// GET /api/treasury/:id
func GetTreasuryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := auth.SessionFrom(c)
		if err != nil {
			return err
		}
		t, err := findEntry(c, session)
		if err != nil {
			return err
		}
		return c.JSON(toResponse(t))
	}
}

// POST /api/treasury
func CreateTreasuryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := auth.SessionFrom(c)
		if err != nil {
			return err
		}

		var body TreasuryRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Datos inválidos")
		}

		t := models.Treasury{UserID: session.UserID}
		if err := body.apply(&t, true); err != nil {
			return err
		}
		if err := database.DB.Create(&t).Error; err != nil {
			return httpx.WriteError(c, err, "No se pudo registrar el movimiento")
		}

		res := toResponse(&t)
		audit.Record(audit.LogOptions{
			UserID:      session.UserID,
			UserEmail:   session.Email,
			EntityType:  "treasury",
			EntityID:    t.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Movimiento de tesorería (%s): %s %s", t.TransactionType, t.Category, t.Amount.StringFixed(2)),
			After:       res,
		})

		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

// PUT /api/treasury/:id
func UpdateTreasuryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := auth.SessionFrom(c)
		if err != nil {
			return err
		}
		t, err := findEntry(c, session)
		if err != nil {
			return err
		}

		var body TreasuryRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Datos inválidos")
		}

		before := toResponse(t)
		if err := body.apply(t, false); err != nil {
			return err
		}
		if err := database.DB.Save(t).Error; err != nil {
			return httpx.WriteError(c, err, "No se pudo actualizar el movimiento")
		}

		after := toResponse(t)
		audit.Record(audit.LogOptions{
			UserID:      session.UserID,
			UserEmail:   session.Email,
			EntityType:  "treasury",
			EntityID:    t.ID,
			Action:      models.AuditActionUpdate,
			Description: "Movimiento de tesorería actualizado",
			Before:      before,
			After:       after,
		})

		return c.JSON(after)
	}
}

// DELETE /api/treasury/:id
func DeleteTreasuryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := auth.SessionFrom(c)
		if err != nil {
			return err
		}
		t, err := findEntry(c, session)
		if err != nil {
			return err
		}

		if err := database.DB.Delete(t).Error; err != nil {
			return httpx.WriteError(c, err, "No se pudo eliminar el movimiento")
		}

		audit.Record(audit.LogOptions{
			UserID:      session.UserID,
			UserEmail:   session.Email,
			EntityType:  "treasury",
			EntityID:    t.ID,
			Action:      models.AuditActionDelete,
			Description: "Movimiento de tesorería eliminado",
			Before:      toResponse(t),
		})

		return c.SendStatus(fiber.StatusNoContent)
	}
}
