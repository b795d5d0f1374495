package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	analyticsHandler "github.com/jwalitptl/training-api/internal/handler/analytics"
	authHandler "github.com/jwalitptl/training-api/internal/handler/auth"
	enrollmentHandler "github.com/jwalitptl/training-api/internal/handler/enrollment"
	"github.com/jwalitptl/training-api/internal/handler/health"
	"github.com/jwalitptl/training-api/internal/handler/prometheus"
	userHandler "github.com/jwalitptl/training-api/internal/handler/user"
	"github.com/jwalitptl/training-api/internal/middleware"
	"github.com/jwalitptl/training-api/internal/model"
	"github.com/jwalitptl/training-api/internal/repository/inmem"
	"github.com/jwalitptl/training-api/internal/service/analytics"
	authService "github.com/jwalitptl/training-api/internal/service/auth"
	"github.com/jwalitptl/training-api/internal/service/enrollment"
	"github.com/jwalitptl/training-api/internal/service/progress"
	"github.com/jwalitptl/training-api/internal/service/user"
	"github.com/jwalitptl/training-api/internal/service/userview"
	"github.com/jwalitptl/training-api/pkg/auth"
	"github.com/jwalitptl/training-api/pkg/messaging"
	"github.com/jwalitptl/training-api/pkg/metrics"
	"github.com/jwalitptl/training-api/pkg/security"
)

type server struct {
	engine *gin.Engine
	jwt    auth.JWTService
	db     *inmem.DB
}

func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := inmem.New()
	users := inmem.NewUserRepository(db)
	profiles := inmem.NewProfileRepository(db)
	courses := inmem.NewCourseRepository(db)
	events := inmem.NewEventRepository(db)
	enrollments := inmem.NewEnrollmentRepository(db)

	reg := prom.NewRegistry()
	m := metrics.NewMetrics("lms", reg)
	jwtSvc := auth.NewJWTService("test-secret", "training-api", time.Hour)
	hasher := security.NewBcryptHasher(4)

	classifier := progress.NewClassifier(courses, events)
	analyticsSvc := analytics.NewService(inmem.NewStatsRepository(db), 0, m)
	views := userview.NewBuilder(userview.Repositories{
		Users:       users,
		Profiles:    profiles,
		Staff:       inmem.NewStaffRepository(db),
		Courses:     courses,
		Events:      events,
		Enrollments: enrollments,
		Memberships: inmem.NewMembershipRepository(db),
		Messages:    inmem.NewMessageRepository(db),
	}, classifier, analyticsSvc)
	authSvc := authService.NewService(users, profiles, jwtSvc, hasher, messaging.NopBroker{})

	r := NewRouter(Deps{
		Auth:     middleware.NewAuthMiddleware(authSvc),
		Activity: middleware.NewActivityTracker(users, time.Minute),
		Metrics:  prometheus.New(reg, "lms"),
		Health:   health.NewHandler(nil),
		Public:   []Handler{authHandler.NewHandler(authSvc)},
		Protected: []Handler{
			userHandler.NewHandler(user.NewService(users, hasher), views),
			analyticsHandler.NewHandler(analyticsSvc),
			enrollmentHandler.NewHandler(enrollment.NewService(enrollments, courses, events, classifier)),
		},
	}, RouterConfig{RequestTimeout: 5 * time.Second})
	r.Setup()

	return &server{engine: r.Engine(), jwt: jwtSvc, db: db}
}

func (s *server) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
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
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *server) adminToken(t *testing.T) string {
	t.Helper()
	admin := &model.User{Email: "root@example.com", Name: "Root", Role: model.RoleAdmin}
	require.NoError(t, inmem.NewUserRepository(s.db).Create(context.Background(), admin))
	token, _, err := s.jwt.GenerateAccessToken(admin.ID.Hex(), admin.Email, string(admin.Role))
	require.NoError(t, err)
	return token
}

func (s *server) register(t *testing.T, email string) (string, string) {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    email,
		"password": "correct-horse",
		"name":     "Learner",
		"role":     "INDIVIDUAL",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Data struct {
			AccessToken string `json:"accessToken"`
			User        struct {
				ID string `json:"id"`
			} `json:"user"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data.AccessToken, resp.Data.User.ID
}

func TestHealthAndMetrics(t *testing.T) {
	s := newServer(t)

	w := s.do(t, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.HeaderXRequestID))

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/health/ready", "", nil).Code)

	w = s.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "lms_http_requests_total")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newServer(t)

	w := s.do(t, http.MethodGet, "/api/enrollments/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/api/enrollments/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterThenUseToken(t *testing.T) {
	s := newServer(t)
	token, _ := s.register(t, "learner@example.com")

	w := s.do(t, http.MethodGet, "/api/enrollments/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Success bool                    `json:"success"`
		Data    model.EnrollmentSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Empty(t, resp.Data.Courses)
	assert.Equal(t, 0, resp.Data.CompletionStats.EnrolledCount)
}

func TestRegister_ValidationError(t *testing.T) {
	s := newServer(t)

	w := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    "not-an-email",
		"password": "short",
		"role":     "ADMIN",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "email")
}

func TestUserDetail(t *testing.T) {
	s := newServer(t)
	learnerToken, learnerID := s.register(t, "learner@example.com")
	adminToken := s.adminToken(t)

	t.Run("forbidden for learners", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/users/"+learnerID, learnerToken, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("flat payload for admins", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/users/"+learnerID, adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var body map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.JSONEq(t, "true", string(body["success"]))
		assert.Contains(t, body, "user")
		assert.Contains(t, body, "completionStats")
		assert.Contains(t, body, "engagement")
		assert.NotContains(t, body, "data")
		assert.NotContains(t, body, "corporateTeam")
	})

	t.Run("malformed id", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/users/not-an-id", adminToken, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown id", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/users/"+bson.NewObjectID().Hex(), adminToken, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestAnalytics(t *testing.T) {
	s := newServer(t)
	adminToken := s.adminToken(t)

	w := s.do(t, http.MethodGet, "/api/admin/analytics?metric=bogus", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/admin/analytics?metric=overview&startDate=yesterday", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/admin/analytics?metric=overview&startDate=2024-01-01&endDate=2024-12-31", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data model.OverviewMetrics `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
}

func TestActivityIsTracked(t *testing.T) {
	s := newServer(t)
	token, id := s.register(t, "learner@example.com")

	s.do(t, http.MethodGet, "/api/enrollments/me", token, nil)

	oid, err := bson.ObjectIDFromHex(id)
	require.NoError(t, err)
	u, err := inmem.NewUserRepository(s.db).Get(context.Background(), oid)
	require.NoError(t, err)
	assert.NotNil(t, u.LastActivity)
}
