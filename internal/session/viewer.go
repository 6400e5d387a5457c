// Package session holds the signed-in viewer for the lifetime of a request and
// manages the token cache that backs sign-in and sign-out.
package session

import (
	"github.com/gin-gonic/gin"

	"io.winapps.starlight/internal/apperr"
	models "io.winapps.starlight/internal/models/account"
)

const viewerKey = "viewer"

// Viewer is the authenticated actor of a request. Profile is nil when the
// users document has not been created yet.
type Viewer struct {
	UID         string
	Email       string
	DisplayName string
	PhotoURL    string
	Profile     *models.UserProfile
}

// Following returns the viewer's follow list; nil for an absent viewer
func (v *Viewer) Following() []string {
	if v == nil || v.Profile == nil {
		return nil
	}
	return v.Profile.Following
}

// Name returns the profile display name, then the token name, then fallback
func (v *Viewer) Name(fallback string) string {
	if v == nil {
		return fallback
	}
	if v.Profile != nil && v.Profile.DisplayName != "" {
		return v.Profile.DisplayName
	}
	if v.DisplayName != "" {
		return v.DisplayName
	}
	return fallback
}

// Set stores the viewer on the request context
func Set(c *gin.Context, v *Viewer) {
	c.Set(viewerKey, v)
	c.Set("uid", v.UID)
}

// FromContext returns the request's viewer or nil when the request is anonymous
func FromContext(c *gin.Context) *Viewer {
	val, ok := c.Get(viewerKey)
	if !ok {
		return nil
	}
	v, _ := val.(*Viewer)
	return v
}

// Require returns the viewer or an AuthRequired error
func Require(c *gin.Context) (*Viewer, error) {
	v := FromContext(c)
	if v == nil {
		return nil, apperr.AuthRequired("User not authenticated")
	}
	return v, nil
}
