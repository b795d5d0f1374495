package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/training-api/internal/model"
	"github.com/jwalitptl/training-api/internal/service/auth"
	apperrors "github.com/jwalitptl/training-api/pkg/errors"
	"github.com/jwalitptl/training-api/pkg/httputil"
)

const ContextViewer = "viewer"

var (
	errMissingAuthHeader = errors.New("missing authorization header")
	errInvalidAuthFormat = errors.New("invalid authorization format")
)

type AuthMiddleware struct {
	authService auth.AuthServicer
}

func NewAuthMiddleware(authService auth.AuthServicer) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
	}
}

// Authenticate verifies the bearer token and stores the caller in the context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httputil.RespondWithError(c, apperrors.Unauthorized(errMissingAuthHeader))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			httputil.RespondWithError(c, apperrors.Unauthorized(errInvalidAuthFormat))
			return
		}

		viewer, err := m.authService.Authenticate(parts[1])
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}

		c.Set(ContextViewer, *viewer)
		c.Next()
	}
}

// RequireRole lets the request through only when the caller holds one of roles.
func (m *AuthMiddleware) RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		viewer, ok := GetViewer(c)
		if !ok {
			httputil.RespondWithError(c, apperrors.Unauthorized(errMissingAuthHeader))
			return
		}
		for _, role := range roles {
			if viewer.Role == role {
				c.Next()
				return
			}
		}
		httputil.RespondWithError(c, apperrors.Forbidden("permission denied"))
	}
}

// GetViewer returns the caller set by Authenticate.
func GetViewer(c *gin.Context) (model.Viewer, bool) {
	v, ok := c.Get(ContextViewer)
	if !ok {
		return model.Viewer{}, false
	}
	viewer, ok := v.(model.Viewer)
	return viewer, ok
}
