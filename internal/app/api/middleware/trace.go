package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/fatflowers/easypay/pkg/logctx"
	"github.com/fatflowers/easypay/pkg/tool"
)

const HeaderRequestID = "X-Request-ID"

// TraceMiddleware stores a trace id under logctx.TraceIDKey in both gin.Context and
// the request context. A client supplied X-Request-ID is reused; Easypay
// does not send one, so webhook deliveries get a fresh UUIDv7.
func TraceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(HeaderRequestID)
		if traceID == "" {
			traceID = tool.GenerateUUIDV7()
		}

		c.Set(logctx.TraceIDKey, traceID)
		c.Request = c.Request.WithContext(logctx.WithTraceID(c.Request.Context(), traceID))

		c.Next()
	}
}
