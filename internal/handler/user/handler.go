package user

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/jwalitptl/training-api/internal/handler"
	"github.com/jwalitptl/training-api/internal/model"
	"github.com/jwalitptl/training-api/internal/service/user"
	apperrors "github.com/jwalitptl/training-api/pkg/errors"
	"github.com/jwalitptl/training-api/pkg/httputil"
)

// Views builds the composed, role-scoped user payloads.
type Views interface {
	UserDetail(ctx context.Context, id bson.ObjectID) (*model.UserDetail, error)
	Dashboard(ctx context.Context, viewer model.Viewer) (*model.Dashboard, error)
}

type Handler struct {
	service user.UserServicer
	views   Views
}

func NewHandler(service user.UserServicer, views Views) *Handler {
	return &Handler{service: service, views: views}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, g handler.Guards) {
	users := r.Group("/users")
	{
		users.GET("", g.Role(handler.Admins...), h.ListUsers)
		users.POST("", g.Role(model.RoleAdmin), g.Audited("user"), h.CreateUser)
		users.GET("/:id", g.Role(model.RoleAdmin), h.GetUserDetail)
		users.PATCH("/:id/status", g.Role(model.RoleAdmin), g.Audited("user"), h.UpdateStatus)
		users.DELETE("/:id", g.Role(model.RoleAdmin), g.Audited("user"), h.DeleteUser)
	}

	r.GET("/me/dashboard", h.Dashboard)
}

func (h *Handler) CreateUser(c *gin.Context) {
	var req model.CreateUserRequest
	if !handler.Bind(c, &req) {
		return
	}

	u, err := h.service.CreateUser(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, u)
}

// GetUserDetail answers with the flat user-detail object rather than the
// data envelope.
func (h *Handler) GetUserDetail(c *gin.Context) {
	id, ok := handler.ParamID(c, "id", "user")
	if !ok {
		return
	}

	detail, err := h.views.UserDetail(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

func (h *Handler) ListUsers(c *gin.Context) {
	filters := &model.UserFilters{
		Role:       model.Role(c.Query("role")),
		Status:     model.UserStatus(c.Query("status")),
		Search:     c.Query("search"),
		Pagination: handler.Page(c),
	}
	if filters.Role != "" && !filters.Role.Valid() {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid role filter", nil))
		return
	}
	if filters.Status != "" && !filters.Status.Valid() {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid status filter", nil))
		return
	}

	users, total, err := h.service.ListUsers(c.Request.Context(), filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	handler.Paginated(c, users, filters.Pagination, total)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := handler.ParamID(c, "id", "user")
	if !ok {
		return
	}

	var req model.UpdateUserStatusRequest
	if !handler.Bind(c, &req) {
		return
	}

	u, err := h.service.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, u)
}

func (h *Handler) DeleteUser(c *gin.Context) {
	id, ok := handler.ParamID(c, "id", "user")
	if !ok {
		return
	}

	if err := h.service.DeleteUser(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"message": "user deleted successfully"})
}

func (h *Handler) Dashboard(c *gin.Context) {
	viewer, ok := handler.Viewer(c)
	if !ok {
		return
	}

	dashboard, err := h.views.Dashboard(c.Request.Context(), viewer)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, dashboard)
}
