package content

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/training-api/internal/handler"
	"github.com/jwalitptl/training-api/internal/model"
	"github.com/jwalitptl/training-api/internal/service/content"
	"github.com/jwalitptl/training-api/pkg/httputil"
)

type Handler struct {
	service content.ContentServicer
}

func NewHandler(service content.ContentServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, g handler.Guards) {
	r.GET("/content/:key", h.Get)
	r.PUT("/content/:key", g.Role(model.RoleAdmin), g.Audited("site_content"), h.Put)
}

func (h *Handler) Get(c *gin.Context) {
	page, err := h.service.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, page)
}

func (h *Handler) Put(c *gin.Context) {
	viewer, ok := handler.Viewer(c)
	if !ok {
		return
	}
	var req model.UpsertContentRequest
	if !handler.Bind(c, &req) {
		return
	}

	page, err := h.service.Put(c.Request.Context(), viewer, c.Param("key"), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, page)
}
