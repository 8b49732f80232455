package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader carries the request identifier on responses and may be
	// supplied by upstream proxies.
	RequestIDHeader = "X-Request-ID"

	ctxRequestIDKey = "requestID"
)

// RequestID attaches a unique identifier to every request, reusing the one a
// proxy already assigned when present.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(ctxRequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// RequestIDFromContext returns the request identifier, or "" if RequestID did
// not run.
func RequestIDFromContext(c *gin.Context) string {
	return c.GetString(ctxRequestIDKey)
}
