package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"io.winapps.starlight/internal/apperr"
	"io.winapps.starlight/internal/calendar"
	models "io.winapps.starlight/internal/models/account"
	"io.winapps.starlight/internal/session"
)

type CalendarHandler struct {
	calendar *calendar.Service
	logger   *zap.SugaredLogger
}

func NewCalendarHandler(svc *calendar.Service, logger *zap.SugaredLogger) *CalendarHandler {
	return &CalendarHandler{calendar: svc, logger: logger}
}

type calendarEventRequest struct {
	Date        string `json:"date"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Time        string `json:"time"`
	Type        string `json:"type"`
}

func (r calendarEventRequest) fields() models.CalendarEventFields {
	return models.CalendarEventFields{
		Date:        r.Date,
		Title:       r.Title,
		Description: r.Description,
		Time:        r.Time,
		Type:        r.Type,
	}
}

// ListEvents returns built-in and user events, optionally for ?month=YYYY-MM
func (h *CalendarHandler) ListEvents(c *gin.Context) {
	events, err := h.calendar.List(c.Request.Context(), c.Query("month"))
	if err != nil {
		respondError(h.logger, c, err, "Failed to load calendar")
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (h *CalendarHandler) CreateEvent(c *gin.Context) {
	viewer, err := session.Require(c)
	if err != nil {
		respondError(h.logger, c, err, "")
		return
	}
	var req calendarEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c)
		return
	}
	ev, err := h.calendar.Create(c.Request.Context(), viewer, req.fields())
	if err != nil {
		respondError(h.logger, c, err, "Failed to create event")
		return
	}
	c.JSON(http.StatusCreated, ev)
}

func (h *CalendarHandler) UpdateEvent(c *gin.Context) {
	viewer, err := session.Require(c)
	if err != nil {
		respondError(h.logger, c, err, "")
		return
	}
	var req calendarEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c)
		return
	}
	ev, err := h.calendar.Update(c.Request.Context(), c.Param("id"), viewer, req.fields())
	if err != nil {
		respondError(h.logger, c, err, "Failed to update event")
		return
	}
	c.JSON(http.StatusOK, ev)
}

// DeleteEvent removes the viewer's own event; requires ?confirm=true
func (h *CalendarHandler) DeleteEvent(c *gin.Context) {
	viewer, err := session.Require(c)
	if err != nil {
		respondError(h.logger, c, err, "")
		return
	}
	if !confirmed(c) {
		respondError(h.logger, c, apperr.Validation("Deletion must be confirmed"), "")
		return
	}
	id := c.Param("id")
	if err := h.calendar.Delete(c.Request.Context(), id, viewer); err != nil {
		respondError(h.logger, c, err, "Failed to delete event")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Event deleted", "id": id})
}
