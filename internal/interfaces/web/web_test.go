package web_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"framelink-support/internal/config"
	"framelink-support/internal/interfaces/web"
)

func setupPages(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	pages, err := web.NewPages(&config.Config{ContactStreaming: true, UploadMaxBytes: 512 * 1024 * 1024}, zerolog.Nop())
	require.NoError(t, err)

	router := gin.New()
	pages.Register(router)
	router.GET("/boom", func(c *gin.Context) { pages.Error(c, http.StatusInternalServerError) })
	router.NoRoute(pages.NotFound)
	return router
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestPagesRender(t *testing.T) {
	router := setupPages(t)

	tests := []struct {
		path string
		want string
	}{
		{"/", "Ask a question"},
		{"/about", "Centro Médico de Algés"},
		{"/contact", `data-streaming="true"`},
		{"/upload", "up to 512MB"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := get(router, tt.path)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
			assert.Contains(t, w.Body.String(), tt.want)
			assert.Contains(t, w.Body.String(), "</html>")
		})
	}
}

func TestUploadPageAcceptsAllowedTypes(t *testing.T) {
	w := get(setupPages(t), "/upload")
	assert.Contains(t, w.Body.String(), "application/pdf")
}

func TestNotFound(t *testing.T) {
	router := setupPages(t)

	w := get(router, "/missing")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "does not exist")

	w = get(router, "/api/missing")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Not found"}`, w.Body.String())
}

func TestErrorPage(t *testing.T) {
	w := get(setupPages(t), "/boom")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "(500)")
}

func TestStaticScripts(t *testing.T) {
	w := get(setupPages(t), "/static/contact.js")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "text/event-stream")
	assert.Contains(t, w.Body.String(), "malformed event")
}
