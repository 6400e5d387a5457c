package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"io.winapps.starlight/internal/apperr"
)

func requestContextFields(c *gin.Context) []interface{} {
	return []interface{}{
		"request_id", c.GetString("request_id"),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"client_ip", c.ClientIP(),
		"user_uid", c.GetString("uid"),
	}
}

func logWithContext(logger *zap.SugaredLogger, c *gin.Context, level string, msg string, fields ...interface{}) {
	if logger == nil {
		return
	}
	all := append(requestContextFields(c), fields...)
	switch level {
	case "debug":
		logger.Debugw(msg, all...)
	case "warn":
		logger.Warnw(msg, all...)
	case "error":
		logger.Errorw(msg, all...)
	default:
		logger.Infow(msg, all...)
	}
}

// respondError writes err as {"error", "code"} with the status of its kind.
// Store failures are logged; client errors are left to the request logger.
func respondError(logger *zap.SugaredLogger, c *gin.Context, err error, msg string) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindStoreFailure {
		logWithContext(logger, c, "error", msg, "error", err)
	}
	c.JSON(apperr.HTTPStatus(err), gin.H{
		"error": apperr.Message(err),
		"code":  kind.String(),
	})
}

func invalidRequest(c *gin.Context) {
	c.JSON(400, gin.H{"error": "Invalid request format", "code": apperr.KindValidation.String()})
}

// confirmed reports whether a destructive request carries confirm=true
func confirmed(c *gin.Context) bool {
	return c.Query("confirm") == "true"
}
