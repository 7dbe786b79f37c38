package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labstock/backend/internal/interfaces/http/dto"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping() error {
	return s.err
}

func newSystemEngine(db Pinger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	h := NewSystemHandler(db, "labstock-backend")
	h.RegisterHealthRoutes(engine)
	h.RegisterRoutes(engine.Group("/api/v1"))
	return engine
}

func TestSystemHandler_Health(t *testing.T) {
	engine := newSystemEngine(stubPinger{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestSystemHandler_Ready(t *testing.T) {
	t.Run("database reachable", func(t *testing.T) {
		engine := newSystemEngine(stubPinger{})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ready", nil)
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("database down returns 503", func(t *testing.T) {
		engine := newSystemEngine(stubPinger{err: errors.New("connection refused")})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ready", nil)
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), "database unreachable")
	})
}

func TestSystemHandler_Info(t *testing.T) {
	engine := newSystemEngine(stubPinger{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/system/info", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "labstock-backend", data["name"])
	assert.NotEmpty(t, data["go_version"])
	assert.NotEmpty(t, data["uptime"])
}
