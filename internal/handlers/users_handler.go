package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	models "io.winapps.starlight/internal/models/account"
	getdetailsmodels "io.winapps.starlight/internal/models/get_account_details"
	updatemodels "io.winapps.starlight/internal/models/update-account"
	"io.winapps.starlight/internal/profile"
	"io.winapps.starlight/internal/session"
	"io.winapps.starlight/internal/social"
)

type UsersHandler struct {
	profiles *profile.Service
	social   *social.Service
	logger   *zap.SugaredLogger
}

// NewUsersHandler creates a new users handler
func NewUsersHandler(profiles *profile.Service, socialSvc *social.Service, logger *zap.SugaredLogger) *UsersHandler {
	return &UsersHandler{profiles: profiles, social: socialSvc, logger: logger}
}

// GetMe returns the viewer's profile and the editor defaults derived from it
func (h *UsersHandler) GetMe(c *gin.Context) {
	viewer, err := session.Require(c)
	if err != nil {
		respondError(h.logger, c, err, "")
		return
	}
	p, err := h.profiles.Me(c.Request.Context(), viewer)
	if err != nil {
		respondError(h.logger, c, err, "Failed to load profile")
		return
	}
	viewer.Profile = p
	c.JSON(http.StatusOK, getdetailsmodels.GetAccountDetailsResponse{
		Profile:       p,
		EntryDefaults: h.profiles.Defaults(viewer),
	})
}

// UpdateMe edits display name, equipment and region
func (h *UsersHandler) UpdateMe(c *gin.Context) {
	viewer, err := session.Require(c)
	if err != nil {
		respondError(h.logger, c, err, "")
		return
	}
	var req updatemodels.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c)
		return
	}

	p, err := h.profiles.Update(c.Request.Context(), viewer, models.ProfileFields{
		DisplayName: req.DisplayName,
		Equipment:   req.Equipment,
		Region:      req.Region,
	})
	if err != nil {
		respondError(h.logger, c, err, "Failed to update profile")
		return
	}
	c.JSON(http.StatusOK, p)
}

// GetUser returns another user's public profile
func (h *UsersHandler) GetUser(c *gin.Context) {
	p, err := h.profiles.Public(c.Request.Context(), c.Param("uid"))
	if err != nil {
		respondError(h.logger, c, err, "Failed to load profile")
		return
	}
	c.JSON(http.StatusOK, p)
}

// Follow adds the target user to the viewer's following set
func (h *UsersHandler) Follow(c *gin.Context) {
	viewer, err := session.Require(c)
	if err != nil {
		respondError(h.logger, c, err, "")
		return
	}
	target := c.Param("uid")
	if err := h.social.Follow(c.Request.Context(), target, viewer); err != nil {
		respondError(h.logger, c, err, "Failed to follow user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"userId": target, "following": true})
}

// Unfollow removes the target user from the viewer's following set
func (h *UsersHandler) Unfollow(c *gin.Context) {
	viewer, err := session.Require(c)
	if err != nil {
		respondError(h.logger, c, err, "")
		return
	}
	target := c.Param("uid")
	if err := h.social.Unfollow(c.Request.Context(), target, viewer); err != nil {
		respondError(h.logger, c, err, "Failed to unfollow user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"userId": target, "following": false})
}
