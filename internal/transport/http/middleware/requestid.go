package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/kipusaplus/kipus-api/internal/requestid"
)

// RequestID keeps a sane incoming X-Request-ID or generates a UUID v4, and
// puts it on the request context and the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := requestid.FromHeader(c.GetHeader(requestid.Header))

		ctx := requestid.WithRequestID(c.Request.Context(), id)
		c.Request = c.Request.WithContext(ctx)
		c.Header(requestid.Header, id)
		c.Next()
	}
}
