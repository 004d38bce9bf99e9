package v1

import (
	"github.com/gin-gonic/gin"

	"framelink-support/internal/interfaces/httpserver/handlers"
)

// Routes encapsulates API route registration.
type Routes struct {
	handlers *handlers.Provider
}

func NewRoutes(provider *handlers.Provider) *Routes {
	return &Routes{handlers: provider}
}

// Register attaches the API routes under the /api prefix.
func (r *Routes) Register(router gin.IRouter) {
	group := router.Group("/api")
	group.POST("/contact", r.handlers.Contact.Ask)
	group.POST("/upload", r.handlers.Upload.Create)
	group.GET("/upload", r.handlers.Upload.List)
	group.DELETE("/upload", r.handlers.Upload.Delete)
}
