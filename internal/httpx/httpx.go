// Package httpx holds the request parsing and error rendering shared by the
// fiber handlers.
package httpx

import (
	"errors"
	"strings"
	"time"

	"pyme-backend/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	DateLayout      = "2006-01-02"
	TimestampLayout = "2006-01-02 15:04:05"
	LoginURL        = "/api/auth/login"
)

type ErrorResponse struct {
	Error    string `json:"error"`
	LoginURL string `json:"login_url,omitempty"`
}

// ErrorHandler renders every error as {"error": ...}. Unauthenticated
// responses also point at the login endpoint.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var e *fiber.Error
	if errors.As(err, &e) {
		resp := ErrorResponse{Error: e.Message}
		if e.Code == fiber.StatusUnauthorized {
			resp.LoginURL = LoginURL
		}
		return c.Status(e.Code).JSON(resp)
	}

	logger.FromCtx(c).Error("unexpected error", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error: "Error inesperado del servidor",
	})
}

// ParseID reads a uuid route parameter. Malformed ids cannot match any row,
// so they answer 404 like a missing one.
func ParseID(c *fiber.Ctx, param, notFound string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(param))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusNotFound, notFound)
	}
	return id, nil
}

// ParseOptionalID parses s as a uuid, returning nil for an empty string.
func ParseOptionalID(s string) (*uuid.UUID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// ParseDate accepts YYYY-MM-DD or RFC 3339. An empty string yields def.
func ParseDate(s string, def time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// DateRange applies the optional from/to query parameters to column. to is
// inclusive of the whole day.
func DateRange(c *fiber.Ctx, column string) (func(*gorm.DB) *gorm.DB, error) {
	from, err := ParseDate(c.Query("from"), time.Time{})
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Fecha 'from' inválida, formato YYYY-MM-DD")
	}
	to, err := ParseDate(c.Query("to"), time.Time{})
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Fecha 'to' inválida, formato YYYY-MM-DD")
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return nil, fiber.NewError(fiber.StatusBadRequest, "'to' no puede ser anterior a 'from'")
	}

	return func(db *gorm.DB) *gorm.DB {
		if !from.IsZero() {
			db = db.Where(column+" >= ?", from)
		}
		if !to.IsZero() {
			db = db.Where(column+" < ?", to.AddDate(0, 0, 1))
		}
		return db
	}, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// SearchPattern turns a free text query into a lower-cased LIKE pattern that
// matches q literally. Use it with Search, which declares the escape char.
func SearchPattern(q string) string {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return ""
	}
	return "%" + likeEscaper.Replace(q) + "%"
}

// Search matches pattern case-insensitively against any of columns.
func Search(pattern string, columns ...string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if pattern == "" || len(columns) == 0 {
			return db
		}
		clauses := make([]string, 0, len(columns))
		args := make([]any, 0, len(columns))
		for _, col := range columns {
			clauses = append(clauses, "LOWER(COALESCE("+col+", '')) LIKE ? ESCAPE '\\'")
			args = append(args, pattern)
		}
		return db.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}
}

// FindError maps a failed single row lookup to 404 or 500.
func FindError(c *fiber.Ctx, err error, notFound string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fiber.NewError(fiber.StatusNotFound, notFound)
	}
	logger.FromCtx(c).Error("lookup failed", zap.Error(err))
	return fiber.NewError(fiber.StatusInternalServerError, "Error al consultar la base de datos")
}

// WriteError logs a failed write and answers 500 with msg.
func WriteError(c *fiber.Ctx, err error, msg string) error {
	logger.FromCtx(c).Error(msg, zap.Error(err))
	return fiber.NewError(fiber.StatusInternalServerError, msg)
}

// Trimmed returns the trimmed value of p, or "" when p is nil.
func Trimmed(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}
