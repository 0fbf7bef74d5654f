package trade_test

import (
	"net/http"
	"testing"

	qt "github.com/frankban/quicktest"

	"pyme-backend/internal/models"
	"pyme-backend/internal/testutil"
	"pyme-backend/internal/trade"
)

type fixtures struct {
	supplier models.Supplier
	client   models.Client
	product  models.Product
}

func seed(t *testing.T, env *testutil.Env) fixtures {
	t.Helper()
	f := fixtures{
		supplier: models.Supplier{UserID: env.User.ID, Name: "Molino"},
		client:   models.Client{UserID: env.User.ID, Name: "Panadería"},
	}
	if err := env.DB.Create(&f.supplier).Error; err != nil {
		t.Fatal(err)
	}
	if err := env.DB.Create(&f.client).Error; err != nil {
		t.Fatal(err)
	}
	f.product = models.Product{UserID: env.User.ID, Name: "Harina", SupplierID: &f.supplier.ID}
	if err := env.DB.Create(&f.product).Error; err != nil {
		t.Fatal(err)
	}
	return f
}

func TestPurchaseTotals(t *testing.T) {
	c := qt.New(t)
	env := testutil.New(t)
	f := seed(t, env)

	resp := env.Call(http.MethodPost, "/api/purchases", map[string]any{
		"supplier_id":   f.supplier.ID.String(),
		"product_id":    f.product.ID.String(),
		"quantity":      3,
		"unit_price":    "10.255",
		"total_amount":  "1",
		"purchase_date": "2025-03-01",
	})
	c.Assert(resp.StatusCode, qt.Equals, http.StatusCreated)
	var p trade.PurchaseResponse
	testutil.Decode(t, resp, &p)
	c.Assert(p.UnitPrice.String(), qt.Equals, "10.26")
	c.Assert(p.TotalAmount.String(), qt.Equals, "30.78")
	c.Assert(p.PurchaseDate, qt.Equals, "2025-03-01")
	c.Assert(p.Supplier.Name, qt.Equals, "Molino")
	c.Assert(p.Product.Name, qt.Equals, "Harina")

	// Cambiar solo la cantidad recalcula el total
	resp = env.Call(http.MethodPut, "/api/purchases/"+p.ID, map[string]any{"quantity": 10})
	c.Assert(resp.StatusCode, qt.Equals, http.StatusOK)
	testutil.Decode(t, resp, &p)
	c.Assert(p.Quantity, qt.Equals, 10)
	c.Assert(p.TotalAmount.String(), qt.Equals, "102.6")
	c.Assert(p.PurchaseDate, qt.Equals, "2025-03-01")
}

func TestPurchaseValidation(t *testing.T) {
	env := testutil.New(t)
	f := seed(t, env)
	other, _ := env.CreateUser("otro@example.com")
	foreign := models.Supplier{UserID: other.ID, Name: "Ajeno"}
	qt.Assert(t, env.DB.Create(&foreign).Error, qt.IsNil)

	valid := func() map[string]any {
		return map[string]any{
			"supplier_id": f.supplier.ID.String(),
			"product_id":  f.product.ID.String(),
			"quantity":    1,
			"unit_price":  "5",
		}
	}

	tests := []struct {
		name   string
		mutate func(map[string]any)
	}{
		{"zero quantity", func(b map[string]any) { b["quantity"] = 0 }},
		{"missing price", func(b map[string]any) { delete(b, "unit_price") }},
		{"negative price", func(b map[string]any) { b["unit_price"] = "-2" }},
		{"missing supplier", func(b map[string]any) { delete(b, "supplier_id") }},
		{"foreign supplier", func(b map[string]any) { b["supplier_id"] = foreign.ID.String() }},
		{"client as product", func(b map[string]any) { b["product_id"] = f.client.ID.String() }},
		{"bad date", func(b map[string]any) { b["purchase_date"] = "01/03/2025" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			body := valid()
			tt.mutate(body)
			resp := env.Call(http.MethodPost, "/api/purchases", body)
			resp.Body.Close()
			c.Assert(resp.StatusCode, qt.Equals, http.StatusBadRequest)
		})
	}

	var n int64
	env.DB.Model(&models.Purchase{}).Count(&n)
	qt.Assert(t, n, qt.Equals, int64(0))
}

func TestSalesListFilters(t *testing.T) {
	c := qt.New(t)
	env := testutil.New(t)
	f := seed(t, env)

	for _, date := range []string{"2025-01-10", "2025-01-31", "2025-02-01"} {
		resp := env.Call(http.MethodPost, "/api/sales", map[string]any{
			"client_id":  f.client.ID.String(),
			"product_id": f.product.ID.String(),
			"quantity":   2,
			"unit_price": "100",
			"sale_date":  date,
		})
		resp.Body.Close()
		c.Assert(resp.StatusCode, qt.Equals, http.StatusCreated)
	}

	list := func(query string) []trade.SaleResponse {
		resp := env.Call(http.MethodGet, "/api/sales"+query, nil)
		c.Assert(resp.StatusCode, qt.Equals, http.StatusOK)
		var sales []trade.SaleResponse
		testutil.Decode(t, resp, &sales)
		return sales
	}

	all := list("")
	c.Assert(all, qt.HasLen, 3)
	c.Assert(all[0].SaleDate, qt.Equals, "2025-02-01")
	c.Assert(all[0].TotalAmount.String(), qt.Equals, "200")
	c.Assert(all[0].Client.Name, qt.Equals, "Panadería")

	january := list("?from=2025-01-01&to=2025-01-31")
	c.Assert(january, qt.HasLen, 2)

	c.Assert(list("?client_id="+f.client.ID.String()), qt.HasLen, 3)
	c.Assert(list("?product_id="+f.supplier.ID.String()), qt.HasLen, 0)

	resp := env.Call(http.MethodGet, "/api/sales?from=2025-02-01&to=2025-01-01", nil)
	resp.Body.Close()
	c.Assert(resp.StatusCode, qt.Equals, http.StatusBadRequest)
}

func TestDeleteSale(t *testing.T) {
	c := qt.New(t)
	env := testutil.New(t)
	f := seed(t, env)

	resp := env.Call(http.MethodPost, "/api/sales", map[string]any{
		"client_id":  f.client.ID.String(),
		"product_id": f.product.ID.String(),
		"quantity":   1,
		"unit_price": "50",
	})
	var s trade.SaleResponse
	testutil.Decode(t, resp, &s)

	_, otherToken := env.CreateUser("otro@example.com")
	resp = env.Do(http.MethodDelete, "/api/sales/"+s.ID, otherToken, nil)
	resp.Body.Close()
	c.Assert(resp.StatusCode, qt.Equals, http.StatusNotFound)

	resp = env.Call(http.MethodDelete, "/api/sales/"+s.ID, nil)
	resp.Body.Close()
	c.Assert(resp.StatusCode, qt.Equals, http.StatusNoContent)

	var n int64
	env.DB.Model(&models.Sale{}).Count(&n)
	c.Assert(n, qt.Equals, int64(0))
}

func TestListRejectsMalformedFilterIDs(t *testing.T) {
	c := qt.New(t)
	env := testutil.New(t)

	for _, path := range []string{
		"/api/sales?client_id=not-a-uuid",
		"/api/sales?product_id=123",
		"/api/purchases?supplier_id=not-a-uuid",
		"/api/purchases?product_id=123",
	} {
		resp := env.Call(http.MethodGet, path, nil)
		resp.Body.Close()
		c.Assert(resp.StatusCode, qt.Equals, http.StatusBadRequest, qt.Commentf("%s", path))
	}

	resp := env.Call(http.MethodGet, "/api/sales?client_id=", nil)
	resp.Body.Close()
	c.Assert(resp.StatusCode, qt.Equals, http.StatusOK)
}
