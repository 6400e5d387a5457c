package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"io.winapps.starlight/internal/session"
)

// UpdateEntry handles editing the viewer's own entry
func (h *EntryHandler) UpdateEntry(c *gin.Context) {
	viewer, err := session.Require(c)
	if err != nil {
		respondError(h.logger, c, err, "")
		return
	}

	draft, img, closeImage, ok := bindDraft(c)
	defer closeImage()
	if !ok {
		invalidRequest(c)
		return
	}

	entry, err := h.entries.Update(c.Request.Context(), c.Param("id"), viewer, draft, img)
	if err != nil {
		respondError(h.logger, c, err, "Failed to update entry")
		return
	}
	c.JSON(http.StatusOK, entry)
}
