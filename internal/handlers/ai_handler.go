package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"io.winapps.starlight/internal/ai"
	models "io.winapps.starlight/internal/models/account"
)

type AIHandler struct {
	ai     *ai.Service
	logger *zap.SugaredLogger
}

func NewAIHandler(svc *ai.Service, logger *zap.SugaredLogger) *AIHandler {
	return &AIHandler{ai: svc, logger: logger}
}

type enhanceRequest struct {
	Text   string `json:"text" binding:"required"`
	Target string `json:"target"`
}

type locationInsightRequest struct {
	Location    string              `json:"location"`
	Coordinates *models.Coordinates `json:"coordinates"`
}

// Status tells clients whether to offer the AI actions at all
func (h *AIHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"enabled": h.ai.Enabled()})
}

// Enhance returns the polished text, or the input unchanged when the model
// is unavailable.
func (h *AIHandler) Enhance(c *gin.Context) {
	var req enhanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c)
		return
	}
	text := h.ai.EnhanceEntry(c.Request.Context(), req.Text, req.Target)
	c.JSON(http.StatusOK, gin.H{"text": text, "enhanced": text != req.Text})
}

// LocationInsight returns facts about an observing site; 204 when none
func (h *AIHandler) LocationInsight(c *gin.Context) {
	var req locationInsightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c)
		return
	}
	if strings.TrimSpace(req.Location) == "" && req.Coordinates == nil {
		invalidRequest(c)
		return
	}

	insight, ok := h.ai.LocationInsight(c.Request.Context(), req.Location, req.Coordinates)
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, insight)
}
