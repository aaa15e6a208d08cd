package http

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillscope/internal/interfaces/http/handlers"
	"skillscope/internal/shared/config"
	"skillscope/internal/shared/logger"
)

func newTestRouter(t *testing.T, mode string) *Router {
	t.Helper()
	log := logger.NewLogger()
	return NewRouter(
		config.ServerConfig{Mode: mode},
		handlers.NewQueueHandler(nil, log),
		handlers.NewTaxonomyHandler(nil, log),
		handlers.NewReportingHandler(nil, nil, log),
		log,
	)
}

func TestNewRouter_EnvironmentModes(t *testing.T) {
	// Config carries environment names, not gin's mode vocabulary; the
	// router must accept both without panicking.
	for _, env := range []string{"production", "development", "test", ""} {
		t.Run("env "+env, func(t *testing.T) {
			router := newTestRouter(t, env)

			w := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/health", nil)
			router.Handler().ServeHTTP(w, req)
			assert.Equal(t, 200, w.Code)
		})
	}
}

func TestMapEnvToGinMode(t *testing.T) {
	assert.Equal(t, gin.ReleaseMode, mapEnvToGinMode("production"))
	assert.Equal(t, gin.ReleaseMode, mapEnvToGinMode("prod"))
	assert.Equal(t, gin.ReleaseMode, mapEnvToGinMode("release"))
	assert.Equal(t, gin.TestMode, mapEnvToGinMode("test"))
	assert.Equal(t, gin.DebugMode, mapEnvToGinMode("development"))
	assert.Equal(t, gin.DebugMode, mapEnvToGinMode(""))
}

func TestRouter_UnknownRoute(t *testing.T) {
	router := newTestRouter(t, "test")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/nope", nil)
	router.Handler().ServeHTTP(w, req)
	require.Equal(t, 404, w.Code)
}
