// Package httputils provides utilities for HTTP requests.
package httputils

import (
	"context"

	"github.com/gin-gonic/gin"
)

type clientContextKey struct{}

// unknownClient is reported when the request carried no User-Agent.
const unknownClient = "unknown"

// ClientMiddleware records the User-Agent of the request in its context,
// so erasures can be attributed to the app that requested them.
func ClientMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if ua := c.GetHeader("User-Agent"); ua != "" {
			c.Request = c.Request.WithContext(WithClient(c.Request.Context(), ua))
		}
		c.Next()
	}
}

// WithClient returns a context carrying the client name.
func WithClient(ctx context.Context, client string) context.Context {
	return context.WithValue(ctx, clientContextKey{}, client)
}

// ClientName returns the client name from the context.
func ClientName(ctx context.Context) string {
	if client, ok := ctx.Value(clientContextKey{}).(string); ok && client != "" {
		return client
	}

	return unknownClient
}
