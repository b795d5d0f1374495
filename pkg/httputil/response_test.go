package httputil

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/training-api/pkg/errors"
)

func respond(t *testing.T, fn func(c *gin.Context)) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	fn(c)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestRespondWithError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"not found", errors.NotFound("user", nil), http.StatusNotFound, "user not found"},
		{"wrapped bad request", fmt.Errorf("handler: %w", errors.BadRequest("invalid user ID", nil)), http.StatusBadRequest, "invalid user ID"},
		{"plain error hides detail", fmt.Errorf("mongo exploded"), http.StatusInternalServerError, "Internal server error"},
		{"internal hides detail", errors.Internal(fmt.Errorf("boom")), http.StatusInternalServerError, "Internal server error"},
		{"deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, "request timeout"},
		{"rate limit", errors.TooManyRequests(), http.StatusTooManyRequests, "rate limit exceeded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := respond(t, func(c *gin.Context) { RespondWithError(c, tt.err) })

			assert.Equal(t, tt.status, w.Code)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.status, resp.Error.Code)
			assert.Equal(t, tt.message, resp.Error.Message)
		})
	}
}

func TestRespondWithPagination(t *testing.T) {
	w, resp := respond(t, func(c *gin.Context) {
		RespondWithPagination(c, []string{"a", "b"}, 2, 2, 5)
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]interface{})
	pagination := data["pagination"].(map[string]interface{})
	assert.EqualValues(t, 5, pagination["total"])
	assert.EqualValues(t, 3, pagination["total_pages"])
}
