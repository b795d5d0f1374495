package membership

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/training-api/internal/handler"
	"github.com/jwalitptl/training-api/internal/model"
	"github.com/jwalitptl/training-api/internal/service/membership"
	"github.com/jwalitptl/training-api/pkg/httputil"
)

type Handler struct {
	service membership.MembershipServicer
}

func NewHandler(service membership.MembershipServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, g handler.Guards) {
	r.GET("/plans", h.Plans)

	memberships := r.Group("/memberships")
	{
		memberships.POST("/purchase", g.Audited("membership"), h.Purchase)
		memberships.GET("/me", h.Current)
	}
}

func (h *Handler) Plans(c *gin.Context) {
	viewer, ok := handler.Viewer(c)
	if !ok {
		return
	}

	plans, err := h.service.Plans(c.Request.Context(), viewer)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, plans)
}

func (h *Handler) Purchase(c *gin.Context) {
	viewer, ok := handler.Viewer(c)
	if !ok {
		return
	}
	var req model.PurchaseRequest
	if !handler.Bind(c, &req) {
		return
	}

	result, err := h.service.Purchase(c.Request.Context(), viewer, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, result)
}

// Current answers with a null membership when the caller never bought one.
func (h *Handler) Current(c *gin.Context) {
	viewer, ok := handler.Viewer(c)
	if !ok {
		return
	}

	m, err := h.service.Current(c.Request.Context(), viewer)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"membership": m})
}
