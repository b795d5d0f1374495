package corporate

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/jwalitptl/training-api/internal/handler"
	"github.com/jwalitptl/training-api/internal/model"
	"github.com/jwalitptl/training-api/internal/service/corporate"
	"github.com/jwalitptl/training-api/pkg/httputil"
)

// Teams builds a corporate's roster with its rollup.
type Teams interface {
	CorporateTeam(ctx context.Context, ownerID bson.ObjectID) (*model.Team, error)
}

type Handler struct {
	service corporate.StaffServicer
	teams   Teams
}

func NewHandler(service corporate.StaffServicer, teams Teams) *Handler {
	return &Handler{service: service, teams: teams}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, g handler.Guards) {
	staff := r.Group("/corporate/staff")
	{
		staff.GET("", g.Role(model.RoleCorporate), h.Team)
		staff.POST("", g.Role(model.RoleCorporate), g.Audited("corporate_staff"), h.AddStaff)
		staff.PATCH("/:id", g.Role(model.RoleCorporate, model.RoleAdmin, model.RoleSubAdmin), g.Audited("corporate_staff"), h.UpdateStaff)
	}

	r.PATCH("/admin/staff/:id/approval", g.Role(handler.Admins...), g.Audited("corporate_staff"), h.SetApproval)
}

func (h *Handler) Team(c *gin.Context) {
	viewer, ok := handler.Viewer(c)
	if !ok {
		return
	}

	team, err := h.teams.CorporateTeam(c.Request.Context(), viewer.ID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, team)
}

func (h *Handler) AddStaff(c *gin.Context) {
	viewer, ok := handler.Viewer(c)
	if !ok {
		return
	}
	var req model.AddStaffRequest
	if !handler.Bind(c, &req) {
		return
	}

	staff, err := h.service.AddStaff(c.Request.Context(), viewer, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, staff)
}

func (h *Handler) UpdateStaff(c *gin.Context) {
	viewer, ok := handler.Viewer(c)
	if !ok {
		return
	}
	id, ok := handler.ParamID(c, "id", "staff")
	if !ok {
		return
	}
	var req model.UpdateStaffRequest
	if !handler.Bind(c, &req) {
		return
	}

	staff, err := h.service.UpdateStaff(c.Request.Context(), viewer, id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, staff)
}

func (h *Handler) SetApproval(c *gin.Context) {
	id, ok := handler.ParamID(c, "id", "staff")
	if !ok {
		return
	}
	var req model.StaffApprovalRequest
	if !handler.Bind(c, &req) {
		return
	}

	staff, err := h.service.SetApproval(c.Request.Context(), id, req.ApprovalStatus)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, staff)
}
