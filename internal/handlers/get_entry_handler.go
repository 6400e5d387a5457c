package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetEntry returns one entry by id, for deep links
func (h *EntryHandler) GetEntry(c *gin.Context) {
	entry, err := h.entries.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(h.logger, c, err, "Failed to load entry")
		return
	}
	c.JSON(http.StatusOK, entry)
}
