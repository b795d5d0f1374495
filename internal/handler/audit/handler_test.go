package audit

import (
	"encoding/csv"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/jwalitptl/training-api/internal/handler/catalog"
	"github.com/jwalitptl/training-api/internal/handler/handlertest"
	"github.com/jwalitptl/training-api/internal/middleware"
	"github.com/jwalitptl/training-api/internal/model"
	"github.com/jwalitptl/training-api/internal/repository/inmem"
	auditService "github.com/jwalitptl/training-api/internal/service/audit"
	catalogService "github.com/jwalitptl/training-api/internal/service/catalog"
)

func TestAuditTrail(t *testing.T) {
	db := inmem.New()
	svc := auditService.NewService(inmem.NewAuditRepository(db))
	logger := auditService.NewAuditLogger(svc)

	auth := &handlertest.Auth{}
	admin := auth.Add("admin", bson.NewObjectID(), model.RoleAdmin)
	auth.Add("sub", bson.NewObjectID(), model.RoleSubAdmin)
	auth.Add("learner", bson.NewObjectID(), model.RoleIndividual)

	r := handlertest.EngineWithAudit(auth, middleware.NewAuditMiddleware(logger),
		NewHandler(svc),
		catalog.NewHandler(catalogService.NewService(inmem.NewCourseRepository(db), inmem.NewEventRepository(db))),
	)

	w := handlertest.Do(t, r, http.MethodPost, "/api/courses", "admin", map[string]string{"title": "Go basics"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// Rejected by the role gate before the audit middleware runs.
	w = handlertest.Do(t, r, http.MethodPost, "/api/courses", "learner", map[string]string{"title": "Nope"})
	require.Equal(t, http.StatusForbidden, w.Code)

	// Reads are not audited.
	w = handlertest.Do(t, r, http.MethodGet, "/api/courses", "learner", nil)
	require.Equal(t, http.StatusOK, w.Code)

	logger.Wait()

	t.Run("list", func(t *testing.T) {
		w := handlertest.Do(t, r, http.MethodGet, "/api/admin/audit?entityType=course", "admin", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var page struct {
			Data       []model.AuditLog `json:"data"`
			Pagination struct {
				Total int `json:"total"`
			} `json:"pagination"`
		}
		handlertest.Decode(t, w, &page)
		require.Len(t, page.Data, 1)
		assert.Equal(t, 1, page.Pagination.Total)

		entry := page.Data[0]
		assert.Equal(t, admin.ID.Hex(), entry.ActorID)
		assert.Equal(t, string(model.RoleAdmin), entry.ActorRole)
		assert.Equal(t, model.AuditActionCreate, entry.Action)
		assert.Equal(t, http.StatusCreated, entry.StatusCode)

		var meta map[string]string
		require.NoError(t, json.Unmarshal(entry.Metadata, &meta))
		assert.Equal(t, "/api/courses", meta["path"])
	})

	t.Run("export", func(t *testing.T) {
		w := handlertest.Do(t, r, http.MethodGet, "/api/admin/audit/export", "admin", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))

		rows, err := csv.NewReader(strings.NewReader(w.Body.String())).ReadAll()
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "actor_id", rows[0][2])
		assert.Equal(t, admin.ID.Hex(), rows[1][2])
	})

	t.Run("admins only", func(t *testing.T) {
		w := handlertest.Do(t, r, http.MethodGet, "/api/admin/audit", "sub", nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
