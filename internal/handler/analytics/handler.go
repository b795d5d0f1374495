package analytics

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/training-api/internal/handler"
	"github.com/jwalitptl/training-api/internal/model"
	"github.com/jwalitptl/training-api/internal/service/analytics"
	apperrors "github.com/jwalitptl/training-api/pkg/errors"
	"github.com/jwalitptl/training-api/pkg/httputil"
)

const dateOnly = "2006-01-02"

type Handler struct {
	service analytics.AnalyticsServicer
}

func NewHandler(service analytics.AnalyticsServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, g handler.Guards) {
	r.GET("/admin/analytics", g.Role(handler.Admins...), h.GetMetric)
}

// GetMetric serves ?metric=&startDate=&endDate=. metric defaults to overview.
func (h *Handler) GetMetric(c *gin.Context) {
	metric := model.Metric(c.DefaultQuery("metric", string(model.MetricOverview)))

	start, err := parseDate(c.Query("startDate"), false)
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid startDate", err))
		return
	}
	end, err := parseDate(c.Query("endDate"), true)
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid endDate", err))
		return
	}

	result, err := h.service.Metric(c.Request.Context(), metric, model.DateRange{Start: start, End: end})
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, result)
}

// parseDate accepts RFC 3339 or a bare date. A bare end date covers the whole
// day.
func parseDate(s string, endOfDay bool) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(dateOnly, s)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}
