package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const ctxSessionKey = "session"

// Session is the authenticated identity of the current request. Handlers get
// it through SessionFrom and pass it to every query they run.
type Session struct {
	UserID uuid.UUID
	Email  string
}

func (s Session) Valid() bool {
	return s.UserID != uuid.Nil
}

// SessionFrom returns the session stored by JWTMiddleware.
func SessionFrom(c *fiber.Ctx) (Session, error) {
	s, ok := c.Locals(ctxSessionKey).(Session)
	if !ok || !s.Valid() {
		return Session{}, fiber.NewError(fiber.StatusUnauthorized, "Sesión no encontrada")
	}
	return s, nil
}

func setSession(c *fiber.Ctx, s Session) {
	c.Locals(ctxSessionKey, s)
}

// Owned restricts a query to the rows of the session user. table qualifies
// the column when the query joins other tables; pass "" otherwise.
func (s Session) Owned(table string) func(*gorm.DB) *gorm.DB {
	col := "user_id"
	if table != "" {
		col = table + ".user_id"
	}
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(col+" = ?", s.UserID)
	}
}
