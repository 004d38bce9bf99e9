package middlewares

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ErrorPage renders the global error page.
type ErrorPage func(c *gin.Context, status int)

// Recovery logs panics and answers with JSON for API routes or the error page otherwise.
func Recovery(logger zerolog.Logger, page ErrorPage) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		logger.Error().
			Str("request_id", RequestIDFromContext(c)).
			Str("path", c.Request.URL.Path).
			Str("panic", fmt.Sprint(recovered)).
			Msg("recovered from panic")

		if c.Writer.Written() {
			c.Abort()
			return
		}
		if strings.HasPrefix(c.Request.URL.Path, "/api/") || page == nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":      "Internal server error",
				"request_id": RequestIDFromContext(c),
			})
			return
		}
		page(c, http.StatusInternalServerError)
		c.Abort()
	})
}
