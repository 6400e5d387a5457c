package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"io.winapps.starlight/internal/apperr"
	"io.winapps.starlight/internal/session"
)

type commentRequest struct {
	Text string `json:"text"`
}

// ToggleLike flips the viewer's like on an entry
func (h *EntryHandler) ToggleLike(c *gin.Context) {
	viewer, err := session.Require(c)
	if err != nil {
		respondError(h.logger, c, err, "")
		return
	}
	ctx := c.Request.Context()

	entry, err := h.entries.Get(ctx, c.Param("id"))
	if err != nil {
		respondError(h.logger, c, err, "Failed to load entry")
		return
	}
	liked, err := h.social.ToggleLike(ctx, entry, viewer)
	if err != nil {
		respondError(h.logger, c, err, "Failed to update like")
		return
	}
	c.JSON(http.StatusOK, gin.H{"entryId": entry.ID, "liked": liked})
}

// SubmitComment appends a comment by the viewer
func (h *EntryHandler) SubmitComment(c *gin.Context) {
	viewer, err := session.Require(c)
	if err != nil {
		respondError(h.logger, c, err, "")
		return
	}
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c)
		return
	}
	ctx := c.Request.Context()

	entry, err := h.entries.Get(ctx, c.Param("id"))
	if err != nil {
		respondError(h.logger, c, err, "Failed to load entry")
		return
	}
	comment, err := h.social.SubmitComment(ctx, entry, viewer, req.Text)
	if err != nil {
		respondError(h.logger, c, err, "Failed to add comment")
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// EditComment changes the text of the viewer's own comment
func (h *EntryHandler) EditComment(c *gin.Context) {
	viewer, err := session.Require(c)
	if err != nil {
		respondError(h.logger, c, err, "")
		return
	}
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c)
		return
	}

	comments, err := h.social.EditComment(c.Request.Context(), c.Param("id"), c.Param("commentId"), viewer, req.Text)
	if err != nil {
		respondError(h.logger, c, err, "Failed to edit comment")
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

// DeleteComment removes the viewer's own comment; requires ?confirm=true
func (h *EntryHandler) DeleteComment(c *gin.Context) {
	viewer, err := session.Require(c)
	if err != nil {
		respondError(h.logger, c, err, "")
		return
	}
	if !confirmed(c) {
		respondError(h.logger, c, apperr.Validation("Deletion must be confirmed"), "")
		return
	}

	comments, err := h.social.DeleteComment(c.Request.Context(), c.Param("id"), c.Param("commentId"), viewer)
	if err != nil {
		respondError(h.logger, c, err, "Failed to delete comment")
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}
