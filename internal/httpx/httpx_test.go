package httpx_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/gofiber/fiber/v2"

	"pyme-backend/internal/httpx"
)

func TestParseDate(t *testing.T) {
	def := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{in: "", want: def},
		{in: "  ", want: def},
		{in: "2025-03-09", want: time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)},
		{in: "2025-03-09T10:30:00Z", want: time.Date(2025, 3, 9, 10, 30, 0, 0, time.UTC)},
		{in: "09/03/2025", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c := qt.New(t)
			got, err := httpx.ParseDate(tt.in, def)
			if tt.wantErr {
				c.Assert(err, qt.IsNotNil)
				return
			}
			c.Assert(err, qt.IsNil)
			c.Assert(got.Equal(tt.want), qt.IsTrue, qt.Commentf("got %s", got))
		})
	}
}

func TestParseOptionalID(t *testing.T) {
	c := qt.New(t)

	id, err := httpx.ParseOptionalID(" ")
	c.Assert(err, qt.IsNil)
	c.Assert(id, qt.IsNil)

	id, err = httpx.ParseOptionalID("6f1c1b9e-2f4a-4b7e-9a55-0c2d3e4f5a6b")
	c.Assert(err, qt.IsNil)
	c.Assert(id.String(), qt.Equals, "6f1c1b9e-2f4a-4b7e-9a55-0c2d3e4f5a6b")

	_, err = httpx.ParseOptionalID("nope")
	c.Assert(err, qt.IsNotNil)
}

func TestSearchPattern(t *testing.T) {
	c := qt.New(t)

	c.Assert(httpx.SearchPattern(""), qt.Equals, "")
	c.Assert(httpx.SearchPattern("  Harina "), qt.Equals, "%harina%")
	c.Assert(httpx.SearchPattern("100%"), qt.Equals, `%100\%%`)
	c.Assert(httpx.SearchPattern("a_b"), qt.Equals, `%a\_b%`)
	c.Assert(httpx.SearchPattern(`c:\x`), qt.Equals, `%c:\\x%`)
}

func TestErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: httpx.ErrorHandler})
	app.Get("/unauthorized", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusUnauthorized, "Token inválido")
	})
	app.Get("/conflict", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusConflict, "En uso")
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return errors.New("db caída")
	})
	app.Get("/items/:id", func(c *fiber.Ctx) error {
		if _, err := httpx.ParseID(c, "id", "No encontrado"); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusOK)
	})

	tests := []struct {
		path   string
		status int
		body   httpx.ErrorResponse
	}{
		{"/unauthorized", http.StatusUnauthorized, httpx.ErrorResponse{Error: "Token inválido", LoginURL: httpx.LoginURL}},
		{"/conflict", http.StatusConflict, httpx.ErrorResponse{Error: "En uso"}},
		{"/boom", http.StatusInternalServerError, httpx.ErrorResponse{Error: "Error inesperado del servidor"}},
		{"/items/123", http.StatusNotFound, httpx.ErrorResponse{Error: "No encontrado"}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			c := qt.New(t)

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil), -1)
			c.Assert(err, qt.IsNil)
			defer resp.Body.Close()
			c.Assert(resp.StatusCode, qt.Equals, tt.status)

			var body httpx.ErrorResponse
			c.Assert(json.NewDecoder(resp.Body).Decode(&body), qt.IsNil)
			c.Assert(body, qt.Equals, tt.body)
		})
	}
}
