// Package stockstatus classifies a product's inventory level and groups stock
// rows into the alert buckets shown on the inventory and dashboard views.
//
// Two classifications exist side by side. The catalog view never reports
// Excess; the inventory view does. Both treat a missing stock record as
// NoStock rather than an error.
package stockstatus

// Status is the derived inventory health of one product.
type Status string

const (
	NoStock    Status = "no_stock"
	OutOfStock Status = "out_of_stock"
	Low        Status = "low"
	Excess     Status = "excess"
	Normal     Status = "normal"
)

// View names the screen a classification is made for.
type View string

const (
	CatalogView   View = "catalog"
	InventoryView View = "inventory"
)

// Level is the quantity and thresholds of one stock record.
type Level struct {
	Quantity int
	MinStock int
	MaxStock int
}

// ForCatalog classifies level for the product catalog. A nil level means the
// product has no stock record.
func ForCatalog(level *Level) Status {
	return classify(level, false)
}

// ForInventory classifies level for the inventory listing, which also flags
// quantities at or above MaxStock.
func ForInventory(level *Level) Status {
	return classify(level, true)
}

// Evaluate dispatches to the classification of the given view.
func Evaluate(view View, level *Level) Status {
	if view == InventoryView {
		return ForInventory(level)
	}
	return ForCatalog(level)
}

// First match wins.
func classify(level *Level, withExcess bool) Status {
	switch {
	case level == nil:
		return NoStock
	case level.Quantity <= 0:
		return OutOfStock
	case level.Quantity <= level.MinStock:
		return Low
	case withExcess && level.Quantity >= level.MaxStock:
		return Excess
	default:
		return Normal
	}
}

// IsOutOfStock reports membership in the out of stock alert bucket.
func IsOutOfStock(level Level) bool {
	return level.Quantity <= 0
}

// IsLow reports membership in the low stock alert bucket. It never overlaps
// IsOutOfStock.
func IsLow(level Level) bool {
	return level.Quantity > 0 && level.Quantity <= level.MinStock
}

// Badge is the display label and color of a status.
type Badge struct {
	Status Status `json:"status"`
	Label  string `json:"label"`
	Color  string `json:"color"`
}

var badges = map[Status]Badge{
	NoStock:    {Status: NoStock, Label: "Sin stock", Color: "gray"},
	OutOfStock: {Status: OutOfStock, Label: "Agotado", Color: "red"},
	Low:        {Status: Low, Label: "Bajo", Color: "yellow"},
	Excess:     {Status: Excess, Label: "Exceso", Color: "blue"},
	Normal:     {Status: Normal, Label: "Normal", Color: "green"},
}

func (s Status) Badge() Badge {
	if b, ok := badges[s]; ok {
		return b
	}
	return Badge{Status: s, Label: string(s), Color: "gray"}
}

func (s Status) Label() string { return s.Badge().Label }
