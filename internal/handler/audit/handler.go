package audit

import (
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/training-api/internal/handler"
	"github.com/jwalitptl/training-api/internal/model"
	"github.com/jwalitptl/training-api/pkg/httputil"
)

// Lister reads the audit trail.
type Lister interface {
	List(ctx context.Context, filters *model.AuditFilters) ([]*model.AuditLog, int64, error)
}

type Handler struct {
	service Lister
}

func NewHandler(service Lister) *Handler {
	return &Handler{
		service: service,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, g handler.Guards) {
	audit := r.Group("/admin/audit", g.Role(model.RoleAdmin))
	{
		audit.GET("", h.ListLogs)
		audit.GET("/export", h.ExportLogs)
	}
}

func filters(c *gin.Context) *model.AuditFilters {
	return &model.AuditFilters{
		ActorID:    c.Query("actorId"),
		EntityType: c.Query("entityType"),
		Action:     c.Query("action"),
		Pagination: handler.Page(c),
	}
}

func (h *Handler) ListLogs(c *gin.Context) {
	f := filters(c)
	logs, total, err := h.service.List(c.Request.Context(), f)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	handler.Paginated(c, logs, f.Pagination, total)
}

// ExportLogs writes the requested page as CSV.
func (h *Handler) ExportLogs(c *gin.Context) {
	f := filters(c)
	logs, _, err := h.service.List(c.Request.Context(), f)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=audit_logs_%s.csv", time.Now().UTC().Format("20060102")))

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{"id", "created_at", "actor_id", "actor_role", "action", "entity_type", "entity_id", "status_code", "ip_address"})
	for _, l := range logs {
		_ = w.Write([]string{
			l.ID.String(),
			l.CreatedAt.Format(time.RFC3339),
			l.ActorID,
			l.ActorRole,
			l.Action,
			l.EntityType,
			l.EntityID,
			strconv.Itoa(l.StatusCode),
			l.IPAddress,
		})
	}
	w.Flush()
}
