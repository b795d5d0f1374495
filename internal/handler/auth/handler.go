package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/training-api/internal/handler"
	"github.com/jwalitptl/training-api/internal/model"
	"github.com/jwalitptl/training-api/internal/service/auth"
	"github.com/jwalitptl/training-api/pkg/httputil"
)

type Handler struct {
	svc auth.AuthServicer
}

func NewHandler(svc auth.AuthServicer) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the public auth endpoints; r must not require a token.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, _ handler.Guards) {
	auth := r.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
	}
}

func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if !handler.Bind(c, &req) {
		return
	}

	tokens, err := h.svc.Register(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, tokens)
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if !handler.Bind(c, &req) {
		return
	}

	tokens, err := h.svc.Login(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, tokens)
}
