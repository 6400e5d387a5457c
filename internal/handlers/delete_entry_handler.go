package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"io.winapps.starlight/internal/session"
)

// DeleteEntry removes the viewer's own entry; requires ?confirm=true
func (h *EntryHandler) DeleteEntry(c *gin.Context) {
	viewer, err := session.Require(c)
	if err != nil {
		respondError(h.logger, c, err, "")
		return
	}

	id := c.Param("id")
	if err := h.entries.Delete(c.Request.Context(), id, viewer, confirmed(c)); err != nil {
		respondError(h.logger, c, err, "Failed to delete entry")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Entry deleted", "id": id})
}
