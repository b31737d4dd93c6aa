package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type fakeChecker struct {
	err error
}

func (f fakeChecker) Health(context.Context) error { return f.err }

func newTestRouter(checker HealthChecker) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	SetupHealthRoutes(r.Group("/api"), checker)
	return r
}

func TestHealthHandler_Healthy(t *testing.T) {
	r := newTestRouter(fakeChecker{})

	req := httptest.NewRequest(http.MethodGet, "/api/healthz", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestHealthHandler_Degraded(t *testing.T) {
	r := newTestRouter(fakeChecker{err: errors.New("db unreachable")})

	req := httptest.NewRequest(http.MethodGet, "/api/healthz", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.Contains(t, w.Body.String(), `"status":"degraded"`)
}
