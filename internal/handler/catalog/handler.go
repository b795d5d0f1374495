package catalog

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/training-api/internal/handler"
	"github.com/jwalitptl/training-api/internal/model"
	"github.com/jwalitptl/training-api/internal/service/catalog"
	apperrors "github.com/jwalitptl/training-api/pkg/errors"
	"github.com/jwalitptl/training-api/pkg/httputil"
)

type Handler struct {
	service catalog.CatalogServicer
}

func NewHandler(service catalog.CatalogServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, g handler.Guards) {
	editors := g.Role(handler.Admins...)

	courses := r.Group("/courses")
	{
		courses.GET("", h.ListCourses)
		courses.GET("/:id", h.GetCourse)
		courses.POST("", editors, g.Audited("course"), h.CreateCourse)
		courses.PUT("/:id", editors, g.Audited("course"), h.UpdateCourse)
		courses.DELETE("/:id", editors, g.Audited("course"), h.DeleteCourse)
	}

	events := r.Group("/events")
	{
		events.GET("", h.ListEvents)
		events.GET("/:id", h.GetEvent)
		events.POST("", editors, g.Audited("event"), h.CreateEvent)
		events.PUT("/:id", editors, g.Audited("event"), h.UpdateEvent)
		events.DELETE("/:id", editors, g.Audited("event"), h.DeleteEvent)
	}
}

func filters(c *gin.Context) (*model.CatalogFilters, bool) {
	f := &model.CatalogFilters{
		Status:     model.CatalogStatus(c.Query("status")),
		Category:   c.Query("category"),
		Search:     c.Query("search"),
		Pagination: handler.Page(c),
	}
	if f.Status != "" && !f.Status.Valid() {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid status filter", nil))
		return nil, false
	}
	return f, true
}

func (h *Handler) ListCourses(c *gin.Context) {
	f, ok := filters(c)
	if !ok {
		return
	}
	courses, total, err := h.service.ListCourses(c.Request.Context(), f)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	handler.Paginated(c, courses, f.Pagination, total)
}

func (h *Handler) GetCourse(c *gin.Context) {
	id, ok := handler.ParamID(c, "id", "course")
	if !ok {
		return
	}
	course, err := h.service.GetCourse(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, course)
}

func (h *Handler) CreateCourse(c *gin.Context) {
	viewer, ok := handler.Viewer(c)
	if !ok {
		return
	}
	var req model.CatalogRequest
	if !handler.Bind(c, &req) {
		return
	}
	course, err := h.service.CreateCourse(c.Request.Context(), viewer.ID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, course)
}

func (h *Handler) UpdateCourse(c *gin.Context) {
	id, ok := handler.ParamID(c, "id", "course")
	if !ok {
		return
	}
	var req model.CatalogRequest
	if !handler.Bind(c, &req) {
		return
	}
	course, err := h.service.UpdateCourse(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, course)
}

func (h *Handler) DeleteCourse(c *gin.Context) {
	id, ok := handler.ParamID(c, "id", "course")
	if !ok {
		return
	}
	if err := h.service.DeleteCourse(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"message": "course deleted successfully"})
}

func (h *Handler) ListEvents(c *gin.Context) {
	f, ok := filters(c)
	if !ok {
		return
	}
	events, total, err := h.service.ListEvents(c.Request.Context(), f)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	handler.Paginated(c, events, f.Pagination, total)
}

func (h *Handler) GetEvent(c *gin.Context) {
	id, ok := handler.ParamID(c, "id", "event")
	if !ok {
		return
	}
	event, err := h.service.GetEvent(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, event)
}

func (h *Handler) CreateEvent(c *gin.Context) {
	viewer, ok := handler.Viewer(c)
	if !ok {
		return
	}
	var req model.CatalogRequest
	if !handler.Bind(c, &req) {
		return
	}
	event, err := h.service.CreateEvent(c.Request.Context(), viewer.ID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, event)
}

func (h *Handler) UpdateEvent(c *gin.Context) {
	id, ok := handler.ParamID(c, "id", "event")
	if !ok {
		return
	}
	var req model.CatalogRequest
	if !handler.Bind(c, &req) {
		return
	}
	event, err := h.service.UpdateEvent(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, event)
}

func (h *Handler) DeleteEvent(c *gin.Context) {
	id, ok := handler.ParamID(c, "id", "event")
	if !ok {
		return
	}
	if err := h.service.DeleteEvent(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"message": "event deleted successfully"})
}
