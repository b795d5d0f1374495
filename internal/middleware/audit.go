package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/training-api/internal/model"
	"github.com/jwalitptl/training-api/internal/service/audit"
)

type AuditMiddleware struct {
	logger *audit.AuditLogger
}

func NewAuditMiddleware(logger *audit.AuditLogger) *AuditMiddleware {
	return &AuditMiddleware{logger: logger}
}

// AuditLog records every mutating request against entityType once the
// handler has run. Reads are not audited.
func (m *AuditMiddleware) AuditLog(entityType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		action := ""
		switch c.Request.Method {
		case http.MethodPost:
			action = model.AuditActionCreate
		case http.MethodPut, http.MethodPatch:
			action = model.AuditActionUpdate
		case http.MethodDelete:
			action = model.AuditActionDelete
		default:
			return
		}

		entry := audit.Entry{
			Action:     action,
			EntityType: entityType,
			EntityID:   c.Param("id"),
			IPAddress:  c.ClientIP(),
			UserAgent:  c.Request.UserAgent(),
			StatusCode: c.Writer.Status(),
			Metadata: map[string]interface{}{
				"path":       c.FullPath(),
				"request_id": c.GetString(ContextRequestID),
			},
		}
		if viewer, ok := GetViewer(c); ok {
			entry.ActorID = viewer.ID.Hex()
			entry.ActorRole = string(viewer.Role)
		}
		m.logger.Log(c.Request.Context(), entry)
	}
}
