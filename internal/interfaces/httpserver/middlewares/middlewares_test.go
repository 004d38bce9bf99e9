package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"framelink-support/internal/interfaces/httpserver/middlewares"
	"framelink-support/internal/utils/platformerrors"
)

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middlewares.RequestID())
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "%s|%s",
			middlewares.RequestIDFromContext(c),
			platformerrors.RequestIDFromContext(c.Request.Context()))
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-Id", "req-123")
	router.ServeHTTP(w, req)
	assert.Equal(t, "req-123|req-123", w.Body.String())
	assert.Equal(t, "req-123", w.Header().Get("X-Request-Id"))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	generated := w.Header().Get("X-Request-Id")
	require.NotEmpty(t, generated)
	assert.Equal(t, generated+"|"+generated, w.Body.String())
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var pageStatus int
	page := func(c *gin.Context, status int) {
		pageStatus = status
		c.String(status, "error page")
	}

	router := gin.New()
	router.Use(middlewares.RequestID(), middlewares.Recovery(zerolog.Nop(), page))
	router.GET("/api/boom", func(c *gin.Context) { panic("api failure") })
	router.GET("/boom", func(c *gin.Context) { panic("page failure") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"error":"Internal server error"`)
	assert.Zero(t, pageStatus)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "error page", w.Body.String())
	assert.Equal(t, http.StatusInternalServerError, pageStatus)
}

func TestPrepareSSE(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/stream", func(c *gin.Context) {
		flusher, ok := middlewares.PrepareSSE(c)
		require.True(t, ok)
		require.NotNil(t, flusher)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stream", nil))
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	assert.Equal(t, "no", w.Header().Get("X-Accel-Buffering"))
}
