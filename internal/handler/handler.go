// Package handler holds the helpers shared by the per-area HTTP handlers.
package handler

import (
	"errors"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	playground "github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/jwalitptl/training-api/internal/middleware"
	"github.com/jwalitptl/training-api/internal/model"
	apperrors "github.com/jwalitptl/training-api/pkg/errors"
	"github.com/jwalitptl/training-api/pkg/httputil"
	"github.com/jwalitptl/training-api/pkg/validator"
)

// Admins are the roles allowed into the back office.
var Admins = []model.Role{model.RoleAdmin, model.RoleSubAdmin}

var registerOnce sync.Once

// Guards are the per-route middlewares handlers attach when registering.
type Guards struct {
	Auth  *middleware.AuthMiddleware
	Audit *middleware.AuditMiddleware
}

func (g Guards) Role(roles ...model.Role) gin.HandlerFunc {
	return g.Auth.RequireRole(roles...)
}

// Audited records mutating calls against entityType. Without an audit
// middleware it is a pass-through.
func (g Guards) Audited(entityType string) gin.HandlerFunc {
	if g.Audit == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return g.Audit.AuditLog(entityType)
}

// UseJSONFieldNames makes binding errors report JSON field names and
// enables the objectid rule on request bodies.
func UseJSONFieldNames() {
	v, ok := binding.Validator.Engine().(*playground.Validate)
	if !ok {
		return
	}
	registerOnce.Do(func() {
		if err := validator.Configure(v); err != nil {
			panic(err)
		}
	})
}

// Bind decodes the JSON body into obj and writes a 400 when that fails.
func Bind(c *gin.Context, obj interface{}) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return true
	}
	var verrs validator.Errors
	if errors.As(validator.Translate(err), &verrs) {
		httputil.RespondWithError(c, apperrors.BadRequest(verrs.Error(), err))
		return false
	}
	httputil.RespondWithError(c, apperrors.BadRequest("invalid request body", err))
	return false
}

// ParamID parses the path parameter name as an ObjectID and writes a 400
// when it is malformed.
func ParamID(c *gin.Context, name, resource string) (bson.ObjectID, bool) {
	id, err := bson.ObjectIDFromHex(c.Param(name))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid "+resource+" ID", err))
		return bson.NilObjectID, false
	}
	return id, true
}

// Viewer returns the authenticated caller, writing a 401 if there is none.
func Viewer(c *gin.Context) (model.Viewer, bool) {
	v, ok := middleware.GetViewer(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(errors.New("no viewer in context")))
	}
	return v, ok
}

// Page reads ?page= and ?pageSize= and normalizes them.
func Page(c *gin.Context) model.Pagination {
	page, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("pageSize"))
	return model.Pagination{Page: page, PageSize: size}.Normalize()
}

// Paginated writes items with the page metadata.
func Paginated(c *gin.Context, items interface{}, p model.Pagination, total int64) {
	httputil.RespondWithPagination(c, items, p.Page, p.PageSize, int(total))
}
