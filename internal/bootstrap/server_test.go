package bootstrap

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/Domenick1991/flightinventory/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingHandler struct{}

func (pingHandler) Register(router *gin.RouterGroup) {
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func serve(router http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestNewRouter(t *testing.T) {
	router := NewRouter(config.HTTPConfig{GinMode: gin.TestMode}, quietLogger(), pingHandler{})

	w := serve(router, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = serve(router, "/api/v1/ping")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = serve(router, "/swagger/flightinventory.swagger.json")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNewRouter_ServesSwaggerDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "flightinventory.swagger.json"), []byte(`{"swagger":"2.0"}`), 0o644))

	router := NewRouter(config.HTTPConfig{GinMode: gin.TestMode, SwaggerDir: dir}, quietLogger())

	w := serve(router, "/swagger/flightinventory.swagger.json")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"swagger":"2.0"}`, w.Body.String())
}
