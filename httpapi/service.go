// Package httpapi provides the HTTP API controllers.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Service is the interface that should be registered to the router.
type Service interface {
	// Register registers the service with the given router.
	Register(app gin.IRouter)
}

// Register registers the services with the given router.
func Register(app gin.IRouter, services ...Service) {
	for _, service := range services {
		service.Register(app)
	}
}

// MethodNotAllowed answers requests whose path exists under another method.
//
// It takes effect when the engine has HandleMethodNotAllowed set.
func MethodNotAllowed(c *gin.Context) {
	c.String(http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
}

// Recovery turns a panic into a generic 500 and logs what happened.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		slog.ErrorContext(c.Request.Context(), "panic while handling request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"panic", recovered)

		c.String(http.StatusInternalServerError, "internal server error")
		c.Abort()
	})
}
