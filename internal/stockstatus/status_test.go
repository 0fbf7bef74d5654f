package stockstatus_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"pyme-backend/internal/stockstatus"
)

func TestClassification(t *testing.T) {
	tests := []struct {
		name      string
		level     *stockstatus.Level
		catalog   stockstatus.Status
		inventory stockstatus.Status
	}{
		{
			name:      "no stock record",
			level:     nil,
			catalog:   stockstatus.NoStock,
			inventory: stockstatus.NoStock,
		},
		{
			name:      "empty",
			level:     &stockstatus.Level{Quantity: 0, MinStock: 5, MaxStock: 100},
			catalog:   stockstatus.OutOfStock,
			inventory: stockstatus.OutOfStock,
		},
		{
			name:      "negative quantity",
			level:     &stockstatus.Level{Quantity: -4, MinStock: 5, MaxStock: 100},
			catalog:   stockstatus.OutOfStock,
			inventory: stockstatus.OutOfStock,
		},
		{
			name:      "below minimum",
			level:     &stockstatus.Level{Quantity: 3, MinStock: 5, MaxStock: 100},
			catalog:   stockstatus.Low,
			inventory: stockstatus.Low,
		},
		{
			name:      "at minimum",
			level:     &stockstatus.Level{Quantity: 5, MinStock: 5, MaxStock: 100},
			catalog:   stockstatus.Low,
			inventory: stockstatus.Low,
		},
		{
			name:      "normal",
			level:     &stockstatus.Level{Quantity: 50, MinStock: 5, MaxStock: 100},
			catalog:   stockstatus.Normal,
			inventory: stockstatus.Normal,
		},
		{
			name:      "at maximum",
			level:     &stockstatus.Level{Quantity: 100, MinStock: 5, MaxStock: 100},
			catalog:   stockstatus.Normal,
			inventory: stockstatus.Excess,
		},
		{
			name:      "above maximum",
			level:     &stockstatus.Level{Quantity: 120, MinStock: 5, MaxStock: 100},
			catalog:   stockstatus.Normal,
			inventory: stockstatus.Excess,
		},
		{
			// Low gana sobre Excess cuando los umbrales se cruzan
			name:      "low wins over excess",
			level:     &stockstatus.Level{Quantity: 10, MinStock: 20, MaxStock: 5},
			catalog:   stockstatus.Low,
			inventory: stockstatus.Low,
		},
		{
			name:      "zero maximum",
			level:     &stockstatus.Level{Quantity: 1, MinStock: 0, MaxStock: 0},
			catalog:   stockstatus.Normal,
			inventory: stockstatus.Excess,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)

			c.Assert(stockstatus.ForCatalog(tt.level), qt.Equals, tt.catalog)
			c.Assert(stockstatus.ForInventory(tt.level), qt.Equals, tt.inventory)
			c.Assert(stockstatus.Evaluate(stockstatus.CatalogView, tt.level), qt.Equals, tt.catalog)
			c.Assert(stockstatus.Evaluate(stockstatus.InventoryView, tt.level), qt.Equals, tt.inventory)
		})
	}
}

func TestCatalogNeverReportsExcess(t *testing.T) {
	c := qt.New(t)

	for q := -2; q <= 30; q++ {
		for minStock := 0; minStock <= 10; minStock++ {
			for maxStock := 0; maxStock <= 20; maxStock++ {
				level := &stockstatus.Level{Quantity: q, MinStock: minStock, MaxStock: maxStock}
				c.Assert(stockstatus.ForCatalog(level), qt.Not(qt.Equals), stockstatus.Excess)

				// Las dos vistas solo difieren en el caso Excess
				inv := stockstatus.ForInventory(level)
				if inv != stockstatus.Excess {
					c.Assert(stockstatus.ForCatalog(level), qt.Equals, inv)
				} else {
					c.Assert(stockstatus.ForCatalog(level), qt.Equals, stockstatus.Normal)
				}
			}
		}
	}
}

func TestBucketsAreDisjoint(t *testing.T) {
	c := qt.New(t)

	for q := -3; q <= 15; q++ {
		for minStock := 0; minStock <= 10; minStock++ {
			level := stockstatus.Level{Quantity: q, MinStock: minStock, MaxStock: 100}
			out := stockstatus.IsOutOfStock(level)
			low := stockstatus.IsLow(level)

			c.Assert(out && low, qt.IsFalse)
			c.Assert(out, qt.Equals, q <= 0)
			c.Assert(low, qt.Equals, q > 0 && q <= minStock)
		}
	}
}

func TestBadges(t *testing.T) {
	tests := []struct {
		status stockstatus.Status
		label  string
		color  string
	}{
		{stockstatus.NoStock, "Sin stock", "gray"},
		{stockstatus.OutOfStock, "Agotado", "red"},
		{stockstatus.Low, "Bajo", "yellow"},
		{stockstatus.Excess, "Exceso", "blue"},
		{stockstatus.Normal, "Normal", "green"},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			c := qt.New(t)

			b := tt.status.Badge()
			c.Assert(b.Status, qt.Equals, tt.status)
			c.Assert(b.Label, qt.Equals, tt.label)
			c.Assert(b.Color, qt.Equals, tt.color)
			c.Assert(tt.status.Label(), qt.Equals, tt.label)
		})
	}
}
