package audit_test

import (
	"net/http"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/google/uuid"

	"pyme-backend/internal/audit"
	"pyme-backend/internal/models"
	"pyme-backend/internal/testutil"
)

func TestWriteLogStoresSnapshots(t *testing.T) {
	c := qt.New(t)
	env := testutil.New(t)

	entityID := uuid.New()
	err := audit.WriteLog(audit.LogOptions{
		UserID:      env.User.ID,
		UserEmail:   env.User.Email,
		EntityType:  "product",
		EntityID:    entityID,
		Action:      models.AuditActionUpdate,
		Description: "Producto actualizado: Harina",
		Before:      map[string]any{"name": "Harina 0"},
		After:       map[string]any{"name": "Harina"},
	})
	c.Assert(err, qt.IsNil)

	var stored models.AuditLog
	c.Assert(env.DB.First(&stored, "entity_id = ?", entityID).Error, qt.IsNil)
	c.Assert(stored.Action, qt.Equals, models.AuditActionUpdate)
	c.Assert(string(stored.BeforeData), qt.JSONEquals, map[string]any{"name": "Harina 0"})
	c.Assert(string(stored.AfterData), qt.JSONEquals, map[string]any{"name": "Harina"})
}

func TestListAuditLogs(t *testing.T) {
	c := qt.New(t)
	env := testutil.New(t)

	resp := env.Call(http.MethodPost, "/api/clients", map[string]any{"name": "Kiosco"})
	resp.Body.Close()
	resp = env.Call(http.MethodPost, "/api/suppliers", map[string]any{"name": "Mayorista"})
	resp.Body.Close()

	_, otherToken := env.CreateUser("otro@example.com")
	resp = env.Do(http.MethodPost, "/api/clients", otherToken, map[string]any{"name": "Ajeno"})
	resp.Body.Close()

	list := func(query string) []audit.AuditLogResponse {
		resp := env.Call(http.MethodGet, "/api/audit-logs"+query, nil)
		c.Assert(resp.StatusCode, qt.Equals, http.StatusOK)
		var logs []audit.AuditLogResponse
		testutil.Decode(t, resp, &logs)
		return logs
	}

	all := list("")
	c.Assert(all, qt.HasLen, 2)
	c.Assert(all[0].EntityType, qt.Equals, "supplier")
	c.Assert(all[1].Description, qt.Contains, "Kiosco")

	clients := list("?entity_type=client")
	c.Assert(clients, qt.HasLen, 1)
	c.Assert(list("?entity_id="+clients[0].EntityID), qt.HasLen, 1)
	c.Assert(list("?limit=1"), qt.HasLen, 1)

	resp = env.Call(http.MethodGet, "/api/audit-logs?entity_id=xyz", nil)
	resp.Body.Close()
	c.Assert(resp.StatusCode, qt.Equals, http.StatusBadRequest)
}
