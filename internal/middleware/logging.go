package middleware

import (
	"bytes"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxLoggedBody caps how much of an error response is copied into the log
const maxLoggedBody = 2048

// RequestIDMiddleware ensures every request has a request_id available in headers and context
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.Request.Header.Get("X-Request-ID")
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set("request_id", rid)
		c.Writer.Header().Set("X-Request-ID", rid)
		c.Next()
	}
}

// errorBodyWriter keeps the head of the response body for error logging
type errorBodyWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w errorBodyWriter) capture(s string) {
	if room := maxLoggedBody - w.body.Len(); room > 0 {
		if len(s) < room {
			room = len(s)
		}
		w.body.WriteString(s[:room])
	}
}

func (w errorBodyWriter) Write(b []byte) (int, error) {
	w.capture(string(b))
	return w.ResponseWriter.Write(b)
}

func (w errorBodyWriter) WriteString(s string) (int, error) {
	w.capture(s)
	return w.ResponseWriter.WriteString(s)
}

// RequestLoggingMiddleware logs one line per request with its outcome. The
// SSE stream is logged when it closes.
func RequestLoggingMiddleware(logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		w := errorBodyWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = w

		c.Next()

		status := c.Writer.Status()
		fields := []interface{}{
			"request_id", c.GetString("request_id"),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"route", c.FullPath(),
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
			"user_uid", c.GetString("uid"),
		}

		switch {
		case status >= 500:
			logger.Errorw("request completed with server error", append(fields, "response", w.body.String())...)
		case status >= 400:
			logger.Warnw("request completed with client error", append(fields, "response", w.body.String())...)
		default:
			logger.Infow("request completed", fields...)
		}
	}
}

// RecoveryMiddleware converts panics to 500 responses and logs stack traces with context
func RecoveryMiddleware(logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Errorw("panic recovered",
					"request_id", c.GetString("request_id"),
					"panic", r,
					"stack", string(debug.Stack()),
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
					"user_uid", c.GetString("uid"),
				)
				c.AbortWithStatusJSON(500, gin.H{"error": "Internal server error", "request_id": c.GetString("request_id")})
			}
		}()
		c.Next()
	}
}
