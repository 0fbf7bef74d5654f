package treasury_test

import (
	"net/http"
	"testing"

	qt "github.com/frankban/quicktest"

	"pyme-backend/internal/models"
	"pyme-backend/internal/testutil"
	"pyme-backend/internal/treasury"
)

func createEntry(t *testing.T, env *testutil.Env, body map[string]any) treasury.TreasuryResponse {
	t.Helper()
	resp := env.Call(http.MethodPost, "/api/treasury", body)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create treasury entry: status %d", resp.StatusCode)
	}
	var e treasury.TreasuryResponse
	testutil.Decode(t, resp, &e)
	return e
}

func TestSummary(t *testing.T) {
	c := qt.New(t)
	env := testutil.New(t)

	createEntry(t, env, map[string]any{"transaction_type": "income", "category": "Ventas", "amount": "1500", "transaction_date": "2025-06-01"})
	createEntry(t, env, map[string]any{"transaction_type": "income", "category": "Ventas", "amount": "500.25", "transaction_date": "2025-06-02"})
	createEntry(t, env, map[string]any{"transaction_type": "expense", "category": "Alquiler", "amount": "800", "transaction_date": "2025-06-05"})
	createEntry(t, env, map[string]any{"transaction_type": "expense", "category": "Servicios", "amount": "120", "transaction_date": "2025-07-01"})

	resp := env.Call(http.MethodGet, "/api/treasury/summary", nil)
	c.Assert(resp.StatusCode, qt.Equals, http.StatusOK)
	var sum treasury.SummaryResponse
	testutil.Decode(t, resp, &sum)
	c.Assert(sum.Income.String(), qt.Equals, "2000.25")
	c.Assert(sum.Expense.String(), qt.Equals, "920")
	c.Assert(sum.Balance.String(), qt.Equals, "1080.25")
	c.Assert(sum.ByCategory, qt.HasLen, 3)
	c.Assert(sum.ByCategory[0].Category, qt.Equals, "Alquiler")
	c.Assert(sum.ByCategory[2].TransactionType, qt.Equals, models.TreasuryIncome)

	resp = env.Call(http.MethodGet, "/api/treasury/summary?from=2025-06-01&to=2025-06-30", nil)
	testutil.Decode(t, resp, &sum)
	c.Assert(sum.Expense.String(), qt.Equals, "800")
	c.Assert(sum.Balance.String(), qt.Equals, "1200.25")
}

func TestListFilters(t *testing.T) {
	c := qt.New(t)
	env := testutil.New(t)

	createEntry(t, env, map[string]any{"transaction_type": "income", "category": "Ventas", "amount": "10"})
	createEntry(t, env, map[string]any{"transaction_type": "expense", "category": "Insumos", "amount": "4"})

	list := func(query string) []treasury.TreasuryResponse {
		resp := env.Call(http.MethodGet, "/api/treasury"+query, nil)
		c.Assert(resp.StatusCode, qt.Equals, http.StatusOK)
		var entries []treasury.TreasuryResponse
		testutil.Decode(t, resp, &entries)
		return entries
	}

	c.Assert(list(""), qt.HasLen, 2)
	c.Assert(list("?type=expense"), qt.HasLen, 1)
	c.Assert(list("?category=Ventas"), qt.HasLen, 1)

	resp := env.Call(http.MethodGet, "/api/treasury?type=otro", nil)
	resp.Body.Close()
	c.Assert(resp.StatusCode, qt.Equals, http.StatusBadRequest)
}

func TestEntryValidation(t *testing.T) {
	env := testutil.New(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"bad type", map[string]any{"transaction_type": "gift", "category": "X", "amount": "1"}},
		{"missing category", map[string]any{"transaction_type": "income", "amount": "1"}},
		{"zero amount", map[string]any{"transaction_type": "income", "category": "X", "amount": "0"}},
		{"bad reference", map[string]any{"transaction_type": "income", "category": "X", "amount": "1", "reference_id": "abc"}},
		{"bad date", map[string]any{"transaction_type": "income", "category": "X", "amount": "1", "transaction_date": "ayer"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			resp := env.Call(http.MethodPost, "/api/treasury", tt.body)
			resp.Body.Close()
			c.Assert(resp.StatusCode, qt.Equals, http.StatusBadRequest)
		})
	}
}

func TestUpdateAndDeleteEntry(t *testing.T) {
	c := qt.New(t)
	env := testutil.New(t)

	e := createEntry(t, env, map[string]any{"transaction_type": "expense", "category": "Luz", "amount": "90"})

	resp := env.Call(http.MethodPut, "/api/treasury/"+e.ID, map[string]any{"amount": "95.5"})
	c.Assert(resp.StatusCode, qt.Equals, http.StatusOK)
	testutil.Decode(t, resp, &e)
	c.Assert(e.Amount.String(), qt.Equals, "95.5")
	c.Assert(e.Category, qt.Equals, "Luz")

	_, otherToken := env.CreateUser("otro@example.com")
	resp = env.Do(http.MethodGet, "/api/treasury/"+e.ID, otherToken, nil)
	resp.Body.Close()
	c.Assert(resp.StatusCode, qt.Equals, http.StatusNotFound)

	resp = env.Call(http.MethodDelete, "/api/treasury/"+e.ID, nil)
	resp.Body.Close()
	c.Assert(resp.StatusCode, qt.Equals, http.StatusNoContent)
}
