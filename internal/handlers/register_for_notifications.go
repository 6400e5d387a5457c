package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	notificationsmodels "io.winapps.starlight/internal/models/notifications"
	"io.winapps.starlight/internal/notify"
	"io.winapps.starlight/internal/session"
)

type NotificationsHandler struct {
	registry notify.Registry
	logger   *zap.SugaredLogger
}

func NewNotificationsHandler(registry notify.Registry, logger *zap.SugaredLogger) *NotificationsHandler {
	return &NotificationsHandler{registry: registry, logger: logger}
}

// RegisterPushToken stores the caller's FCM token, replacing any previous one
func (h *NotificationsHandler) RegisterPushToken(c *gin.Context) {
	viewer, err := session.Require(c)
	if err != nil {
		respondError(h.logger, c, err, "")
		return
	}
	var req notificationsmodels.RegisterPushTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.FCMToken) == "" {
		invalidRequest(c)
		return
	}

	platform := req.Platform
	if platform == "" {
		platform = "web"
	}
	tz := req.Timezone
	if _, err := time.LoadLocation(tz); tz == "" || err != nil {
		tz = "UTC"
	}

	id, err := h.registry.Register(c.Request.Context(), notify.PushToken{
		UserID:   viewer.UID,
		FCMToken: strings.TrimSpace(req.FCMToken),
		Platform: platform,
		Timezone: tz,
	})
	if err != nil {
		logWithContext(h.logger, c, "error", "Error saving push token", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Token registered successfully",
		"id":      id,
	})
}
