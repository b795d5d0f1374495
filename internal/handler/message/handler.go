package message

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/training-api/internal/handler"
	"github.com/jwalitptl/training-api/internal/model"
	"github.com/jwalitptl/training-api/internal/service/message"
	"github.com/jwalitptl/training-api/pkg/httputil"
)

type Handler struct {
	service message.MessageServicer
}

func NewHandler(service message.MessageServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, _ handler.Guards) {
	messages := r.Group("/messages")
	{
		messages.GET("/thread/:userId", h.Thread)
		messages.POST("/thread/:userId", h.Send)
		messages.PATCH("/:id", h.Edit)
		messages.GET("/unread-count", h.UnreadCount)
	}
}

// Thread returns the conversation oldest first. Opening it marks the
// caller's incoming messages read.
func (h *Handler) Thread(c *gin.Context) {
	viewer, ok := handler.Viewer(c)
	if !ok {
		return
	}
	otherID, ok := handler.ParamID(c, "userId", "user")
	if !ok {
		return
	}

	thread, err := h.service.Thread(c.Request.Context(), viewer, otherID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, thread)
}

func (h *Handler) Send(c *gin.Context) {
	viewer, ok := handler.Viewer(c)
	if !ok {
		return
	}
	otherID, ok := handler.ParamID(c, "userId", "user")
	if !ok {
		return
	}
	var req model.SendMessageRequest
	if !handler.Bind(c, &req) {
		return
	}

	msg, err := h.service.Send(c.Request.Context(), viewer, otherID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, msg)
}

func (h *Handler) Edit(c *gin.Context) {
	viewer, ok := handler.Viewer(c)
	if !ok {
		return
	}
	id, ok := handler.ParamID(c, "id", "message")
	if !ok {
		return
	}
	var req model.EditMessageRequest
	if !handler.Bind(c, &req) {
		return
	}

	msg, err := h.service.Edit(c.Request.Context(), viewer, id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, msg)
}

func (h *Handler) UnreadCount(c *gin.Context) {
	viewer, ok := handler.Viewer(c)
	if !ok {
		return
	}

	n, err := h.service.UnreadCount(c.Request.Context(), viewer)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"unread": n})
}
