package inventory

import (
	"fmt"
	"time"

	"pyme-backend/internal/auth"
	"pyme-backend/internal/database"
	"pyme-backend/internal/httpx"
	"pyme-backend/internal/models"
	"pyme-backend/internal/stockstatus"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

const (
	exportSheet = "Inventario"
	xlsxMIME    = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var exportHeader = []any{"Producto", "Categoría", "Proveedor", "Cantidad", "Stock mínimo", "Stock máximo", "Ubicación", "Estado", "Actualizado"}

// BuildInventoryWorkbook writes one row per stock record with its inventory
// status label.
func BuildInventoryWorkbook(rows []models.Stock) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		f.Close()
		return nil, err
	}

	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		f.Close()
		return nil, err
	}

	for i := range rows {
		s := &rows[i]
		var product, category, supplier string
		if s.Product != nil {
			product = s.Product.Name
			category = s.Product.Category
			if s.Product.Supplier != nil {
				supplier = s.Product.Supplier.Name
			}
		}
		status := evaluate(stockstatus.InventoryView, levelOf(s))

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		row := []any{product, category, supplier, s.Quantity, s.MinStock, s.MaxStock, s.Location, status.Label(), s.UpdatedAt.Format(httpx.TimestampLayout)}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			f.Close()
			return nil, err
		}
	}

	return f, nil
}

// GET /api/stock/export
func ExportStockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := auth.SessionFrom(c)
		if err != nil {
			return err
		}

		rows, err := StockRows(database.DB, session.UserID)
		if err != nil {
			return httpx.WriteError(c, err, "No se pudo leer el inventario")
		}

		f, err := BuildInventoryWorkbook(rows)
		if err != nil {
			return httpx.WriteError(c, err, "No se pudo generar el archivo")
		}
		defer f.Close()

		buf, err := f.WriteToBuffer()
		if err != nil {
			return httpx.WriteError(c, err, "No se pudo generar el archivo")
		}

		filename := fmt.Sprintf("inventario-%s.xlsx", time.Now().Format("20060102"))
		c.Set(fiber.HeaderContentType, xlsxMIME)
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
		return c.Send(buf.Bytes())
	}
}
