package production_test

import (
	"net/http"
	"testing"

	qt "github.com/frankban/quicktest"

	"pyme-backend/internal/models"
	"pyme-backend/internal/production"
	"pyme-backend/internal/testutil"
)

func TestProductionLifecycle(t *testing.T) {
	c := qt.New(t)
	env := testutil.New(t)

	product := models.Product{UserID: env.User.ID, Name: "Pan casero"}
	c.Assert(env.DB.Create(&product).Error, qt.IsNil)

	resp := env.Call(http.MethodPost, "/api/production", map[string]any{
		"product_id":        product.ID.String(),
		"quantity_produced": 40,
		"cost_per_unit":     "12.5",
		"production_date":   "2025-05-02",
		"notes":             " horno 2 ",
	})
	c.Assert(resp.StatusCode, qt.Equals, http.StatusCreated)
	var p production.ProductionResponse
	testutil.Decode(t, resp, &p)
	c.Assert(p.ProductName, qt.Equals, "Pan casero")
	c.Assert(p.TotalCost.String(), qt.Equals, "500")
	c.Assert(p.ProductionDate, qt.Equals, "2025-05-02")
	c.Assert(p.Notes, qt.Equals, "horno 2")

	resp = env.Call(http.MethodPut, "/api/production/"+p.ID, map[string]any{"cost_per_unit": "10"})
	c.Assert(resp.StatusCode, qt.Equals, http.StatusOK)
	testutil.Decode(t, resp, &p)
	c.Assert(p.QuantityProduced, qt.Equals, 40)
	c.Assert(p.TotalCost.String(), qt.Equals, "400")

	resp = env.Call(http.MethodGet, "/api/production?from=2025-05-01&to=2025-05-02", nil)
	var list []production.ProductionResponse
	testutil.Decode(t, resp, &list)
	c.Assert(list, qt.HasLen, 1)

	resp = env.Call(http.MethodGet, "/api/production?from=2025-05-03", nil)
	testutil.Decode(t, resp, &list)
	c.Assert(list, qt.HasLen, 0)

	resp = env.Call(http.MethodDelete, "/api/production/"+p.ID, nil)
	resp.Body.Close()
	c.Assert(resp.StatusCode, qt.Equals, http.StatusNoContent)
}

func TestProductionValidation(t *testing.T) {
	env := testutil.New(t)

	product := models.Product{UserID: env.User.ID, Name: "Pan"}
	qt.Assert(t, env.DB.Create(&product).Error, qt.IsNil)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing product", map[string]any{"quantity_produced": 1, "cost_per_unit": "1"}},
		{"unknown product", map[string]any{"product_id": env.User.ID.String(), "quantity_produced": 1, "cost_per_unit": "1"}},
		{"zero quantity", map[string]any{"product_id": product.ID.String(), "quantity_produced": 0, "cost_per_unit": "1"}},
		{"negative cost", map[string]any{"product_id": product.ID.String(), "quantity_produced": 1, "cost_per_unit": "-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			resp := env.Call(http.MethodPost, "/api/production", tt.body)
			resp.Body.Close()
			c.Assert(resp.StatusCode, qt.Equals, http.StatusBadRequest)
		})
	}
}

func TestListProductionRejectsMalformedProductID(t *testing.T) {
	c := qt.New(t)
	env := testutil.New(t)

	resp := env.Call(http.MethodGet, "/api/production?product_id=not-a-uuid", nil)
	resp.Body.Close()
	c.Assert(resp.StatusCode, qt.Equals, http.StatusBadRequest)
}
