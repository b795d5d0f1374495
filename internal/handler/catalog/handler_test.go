package catalog

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/jwalitptl/training-api/internal/handler/handlertest"
	"github.com/jwalitptl/training-api/internal/model"
	"github.com/jwalitptl/training-api/internal/repository/inmem"
	"github.com/jwalitptl/training-api/internal/service/catalog"
	"github.com/jwalitptl/training-api/pkg/httputil"
)

func setup(t *testing.T) (http.Handler, *handlertest.Auth) {
	t.Helper()
	db := inmem.New()
	svc := catalog.NewService(inmem.NewCourseRepository(db), inmem.NewEventRepository(db))
	auth := &handlertest.Auth{}
	auth.Add("admin", bson.NewObjectID(), model.RoleAdmin)
	auth.Add("sub", bson.NewObjectID(), model.RoleSubAdmin)
	auth.Add("learner", bson.NewObjectID(), model.RoleIndividual)
	return handlertest.Engine(auth, NewHandler(svc)), auth
}

func TestCourses_Lifecycle(t *testing.T) {
	r, auth := setup(t)

	w := handlertest.Do(t, r, http.MethodPost, "/api/courses", "sub", map[string]interface{}{
		"title":    "Go Basics",
		"status":   "published",
		"category": "engineering",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created model.Course
	handlertest.Decode(t, w, &created)
	assert.Equal(t, "Go Basics", created.Title)
	assert.Equal(t, auth.Viewers["sub"].ID, created.CreatedBy)

	w = handlertest.Do(t, r, http.MethodGet, "/api/courses/"+created.ID.Hex(), "learner", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = handlertest.Do(t, r, http.MethodGet, "/api/courses?status=published", "learner", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page httputil.PaginatedResponse
	handlertest.Decode(t, w, &page)
	assert.Equal(t, 1, page.Pagination.Total)

	w = handlertest.Do(t, r, http.MethodPut, "/api/courses/"+created.ID.Hex(), "admin", map[string]interface{}{
		"title": "Go Basics II",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = handlertest.Do(t, r, http.MethodDelete, "/api/courses/"+created.ID.Hex(), "admin", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = handlertest.Do(t, r, http.MethodGet, "/api/courses/"+created.ID.Hex(), "learner", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCourses_Errors(t *testing.T) {
	r, _ := setup(t)

	t.Run("learners cannot write", func(t *testing.T) {
		w := handlertest.Do(t, r, http.MethodPost, "/api/courses", "learner", map[string]string{"title": "x"})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("missing title", func(t *testing.T) {
		w := handlertest.Do(t, r, http.MethodPost, "/api/courses", "admin", map[string]string{"category": "x"})
		require.Equal(t, http.StatusBadRequest, w.Code)
		env := handlertest.Decode(t, w, nil)
		require.NotNil(t, env.Error)
		assert.Contains(t, env.Error.Message, "title")
	})

	t.Run("bad status filter", func(t *testing.T) {
		w := handlertest.Do(t, r, http.MethodGet, "/api/courses?status=bogus", "admin", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		w := handlertest.Do(t, r, http.MethodGet, "/api/courses/123", "admin", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestEvents_DateOrder(t *testing.T) {
	r, _ := setup(t)

	w := handlertest.Do(t, r, http.MethodPost, "/api/events", "admin", map[string]interface{}{
		"title":     "Meetup",
		"startDate": "2024-06-02T10:00:00Z",
		"endDate":   "2024-06-01T10:00:00Z",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = handlertest.Do(t, r, http.MethodPost, "/api/events", "admin", map[string]interface{}{
		"title":     "Meetup",
		"startDate": "2024-06-01T10:00:00Z",
		"endDate":   "2024-06-01T12:00:00Z",
	})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}
