package ctxmanage

import (
	"github.com/gin-gonic/gin"
)

const (
	// TraceIDKey is set by middleware.Logger for every request.
	TraceIDKey = "trace_id"
	// SessionIDKey is set by middleware.Session from the draft session cookie.
	SessionIDKey = "session_id"
)

// GetTraceIdOfRequest returns the trace id minted for the current request,
// or "unknown" when the logger middleware did not run.
func GetTraceIdOfRequest(c *gin.Context) string {
	traceId, ok := c.Value(TraceIDKey).(string)
	if !ok {
		return "unknown"
	}
	return traceId
}

// GetSessionIdOfRequest returns the draft session id for the current request.
// Empty when the session middleware did not run.
func GetSessionIdOfRequest(c *gin.Context) string {
	sessionId, ok := c.Value(SessionIDKey).(string)
	if !ok {
		return ""
	}
	return sessionId
}
