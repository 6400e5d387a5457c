package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"io.winapps.starlight/internal/middleware"
	models "io.winapps.starlight/internal/models/login"
	"io.winapps.starlight/internal/session"
)

// Sessions starts and ends viewer sessions; *session.Manager satisfies it
type Sessions interface {
	SignIn(ctx context.Context, token string) (*session.Viewer, error)
	SignOut(ctx context.Context, token string) error
}

type AuthHandler struct {
	sessions Sessions
	logger   *zap.SugaredLogger
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(sessions Sessions, logger *zap.SugaredLogger) *AuthHandler {
	return &AuthHandler{sessions: sessions, logger: logger}
}

// SignIn verifies the ID token, creates the profile on first sign-in and
// returns the merged viewer.
func (h *AuthHandler) SignIn(c *gin.Context) {
	token, err := middleware.BearerToken(c)
	if err != nil {
		respondError(h.logger, c, err, "")
		return
	}

	viewer, err := h.sessions.SignIn(c.Request.Context(), token)
	if err != nil {
		respondError(h.logger, c, err, "Failed to sign in")
		return
	}

	c.JSON(http.StatusOK, models.LoginResponse{
		UID:         viewer.UID,
		Email:       viewer.Email,
		DisplayName: viewer.Name(""),
		PhotoURL:    viewer.PhotoURL,
		Profile:     viewer.Profile,
	})
}

// SignOut evicts the cached session for the presented token
func (h *AuthHandler) SignOut(c *gin.Context) {
	token, err := middleware.BearerToken(c)
	if err != nil {
		respondError(h.logger, c, err, "")
		return
	}
	if err := h.sessions.SignOut(c.Request.Context(), token); err != nil {
		respondError(h.logger, c, err, "Failed to sign out")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
}
