// Package handlertest wires handlers into a gin engine for tests.
package handlertest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/jwalitptl/training-api/internal/handler"
	"github.com/jwalitptl/training-api/internal/middleware"
	"github.com/jwalitptl/training-api/internal/model"
	apperrors "github.com/jwalitptl/training-api/pkg/errors"
)

// Auth resolves bearer tokens from a fixed table.
type Auth struct {
	Viewers map[string]model.Viewer
}

func (a *Auth) Login(context.Context, *model.LoginRequest) (*model.TokenResponse, error) {
	return nil, errors.New("not supported")
}

func (a *Auth) Register(context.Context, *model.RegisterRequest) (*model.TokenResponse, error) {
	return nil, errors.New("not supported")
}

func (a *Auth) Authenticate(token string) (*model.Viewer, error) {
	v, ok := a.Viewers[token]
	if !ok {
		return nil, apperrors.Unauthorized(errors.New("unknown token"))
	}
	return &v, nil
}

// Add registers a viewer under token and returns it.
func (a *Auth) Add(token string, id bson.ObjectID, role model.Role) model.Viewer {
	if a.Viewers == nil {
		a.Viewers = make(map[string]model.Viewer)
	}
	v := model.Viewer{ID: id, Email: token + "@example.com", Role: role}
	a.Viewers[token] = v
	return v
}

type Registrar interface {
	RegisterRoutes(r *gin.RouterGroup, g handler.Guards)
}

// Engine mounts h under an authenticated /api group.
func Engine(auth *Auth, h Registrar) *gin.Engine {
	return EngineWithAudit(auth, nil, h)
}

// EngineWithAudit mounts every handler with audit set on the guards.
func EngineWithAudit(auth *Auth, audit *middleware.AuditMiddleware, hs ...Registrar) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler.UseJSONFieldNames()
	am := middleware.NewAuthMiddleware(auth)
	r := gin.New()
	api := r.Group("/api", am.Authenticate())
	for _, h := range hs {
		h.RegisterRoutes(api, handler.Guards{Auth: am, Audit: audit})
	}
	return r
}

// Envelope is the decoded standard response.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Do performs a request; body is JSON-encoded when not nil.
func Do(t *testing.T, r http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// Decode parses the envelope and, when out is not nil, its data.
func Decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if out != nil {
		require.NoError(t, json.Unmarshal(env.Data, out), string(env.Data))
	}
	return env
}
