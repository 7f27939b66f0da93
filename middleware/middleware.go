package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"snackbar-web/pkg/ctxmanage"
	"snackbar-web/pkg/logkey"
)

// SessionCookie carries the draft session id. Drafts are keyed by it so two
// browsers can never see each other's in-progress order.
const SessionCookie = "snackbar_session"

// Logger mints a trace id for the request and logs its outcome.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceId := uuid.NewString()
		c.Set(ctxmanage.TraceIDKey, traceId)

		start := time.Now()
		c.Next()

		slog.Info("request served",
			slog.String(logkey.TraceID, traceId),
			slog.String("METHOD", c.Request.Method),
			slog.String("PATH", c.Request.URL.Path),
			slog.Int("STATUS", c.Writer.Status()),
			slog.Int64("DURATION μs", time.Since(start).Microseconds()),
		)
	}
}

// Session ensures every request carries a draft session id, minting one and
// setting the cookie on first contact.
func Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionId, err := c.Cookie(SessionCookie)
		if err != nil || sessionId == "" {
			sessionId = uuid.NewString()
			c.SetCookie(SessionCookie, sessionId, int((30 * 24 * time.Hour).Seconds()), "/", "", false, true)
		}
		c.Set(ctxmanage.SessionIDKey, sessionId)
		c.Next()
	}
}

// NoCache marks a response as non-cacheable, used on the error page.
func NoCache() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}
