package notification

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/training-api/internal/handler"
	"github.com/jwalitptl/training-api/internal/model"
	"github.com/jwalitptl/training-api/internal/service/notification"
	"github.com/jwalitptl/training-api/pkg/httputil"
)

type Handler struct {
	service notification.NotificationServicer
}

func NewHandler(service notification.NotificationServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, g handler.Guards) {
	announcements := r.Group("/announcements")
	{
		announcements.POST("", g.Role(handler.Admins...), g.Audited("announcement"), h.Announce)
		announcements.GET("", h.Announcements)
		announcements.POST("/:id/read", h.MarkAnnouncementRead)
	}

	notifications := r.Group("/notifications")
	{
		notifications.GET("", h.Notifications)
		notifications.PATCH("/:id", h.UpdateNotification)
	}
}

// Announce creates the announcement and fans it out. Fan-out problems do not
// fail the request.
func (h *Handler) Announce(c *gin.Context) {
	viewer, ok := handler.Viewer(c)
	if !ok {
		return
	}
	var req model.CreateAnnouncementRequest
	if !handler.Bind(c, &req) {
		return
	}

	a, err := h.service.Announce(c.Request.Context(), viewer, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, a)
}

func (h *Handler) Announcements(c *gin.Context) {
	viewer, ok := handler.Viewer(c)
	if !ok {
		return
	}

	list, err := h.service.Announcements(c.Request.Context(), viewer)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, list)
}

func (h *Handler) MarkAnnouncementRead(c *gin.Context) {
	viewer, ok := handler.Viewer(c)
	if !ok {
		return
	}
	id, ok := handler.ParamID(c, "id", "announcement")
	if !ok {
		return
	}

	if err := h.service.MarkAnnouncementRead(c.Request.Context(), viewer, id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"id": id.Hex(), "isRead": true})
}

func (h *Handler) Notifications(c *gin.Context) {
	viewer, ok := handler.Viewer(c)
	if !ok {
		return
	}

	list, err := h.service.Notifications(c.Request.Context(), viewer, model.NotificationStatus(c.Query("status")))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, list)
}

func (h *Handler) UpdateNotification(c *gin.Context) {
	viewer, ok := handler.Viewer(c)
	if !ok {
		return
	}
	id, ok := handler.ParamID(c, "id", "notification")
	if !ok {
		return
	}
	var req model.UpdateNotificationRequest
	if !handler.Bind(c, &req) {
		return
	}

	if err := h.service.UpdateNotification(c.Request.Context(), viewer, id, req.Status); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"id": id.Hex(), "status": req.Status})
}
