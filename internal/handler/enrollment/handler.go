package enrollment

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/training-api/internal/handler"
	"github.com/jwalitptl/training-api/internal/model"
	"github.com/jwalitptl/training-api/internal/service/enrollment"
	"github.com/jwalitptl/training-api/pkg/httputil"
)

type Handler struct {
	service enrollment.EnrollmentServicer
}

func NewHandler(service enrollment.EnrollmentServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, g handler.Guards) {
	enrollments := r.Group("/enrollments")
	{
		enrollments.POST("", g.Audited("enrollment"), h.Enroll)
		enrollments.GET("/me", h.Mine)
		enrollments.PATCH("/:id", g.Audited("enrollment"), h.Update)
	}
}

func (h *Handler) Enroll(c *gin.Context) {
	viewer, ok := handler.Viewer(c)
	if !ok {
		return
	}
	var req model.EnrollRequest
	if !handler.Bind(c, &req) {
		return
	}

	e, err := h.service.Enroll(c.Request.Context(), viewer.ID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, e)
}

func (h *Handler) Mine(c *gin.Context) {
	viewer, ok := handler.Viewer(c)
	if !ok {
		return
	}

	summary, err := h.service.Mine(c.Request.Context(), viewer.ID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, summary)
}

func (h *Handler) Update(c *gin.Context) {
	viewer, ok := handler.Viewer(c)
	if !ok {
		return
	}
	id, ok := handler.ParamID(c, "id", "enrollment")
	if !ok {
		return
	}
	var req model.UpdateEnrollmentRequest
	if !handler.Bind(c, &req) {
		return
	}

	e, err := h.service.Update(c.Request.Context(), viewer, id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, e)
}
