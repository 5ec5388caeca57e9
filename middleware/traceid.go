package middleware

import (
	"github.com/Regyyyy/gamify-oss-app-sub000/audit"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	TraceIDKey    = "trace_id"
	TraceIDHeader = "X-Trace-ID"
)

// TraceID tags each request with a trace id. A caller-supplied UUID is kept
// in canonical lower-case form; anything else is replaced. The id is echoed
// in the response and carried on the request context so XP ledger rows
// written during the request can be matched to its logs.
func TraceID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.GetHeader(TraceIDHeader))
		if err != nil {
			id = uuid.New()
		}
		traceID := id.String()
		c.Set(TraceIDKey, traceID)
		c.Header(TraceIDHeader, traceID)
		c.Request = c.Request.WithContext(audit.WithTraceID(c.Request.Context(), traceID))
		c.Next()
	}
}

// GetTraceID returns the request's trace id, or "" outside TraceID.
func GetTraceID(c *gin.Context) string {
	return c.GetString(TraceIDKey)
}
