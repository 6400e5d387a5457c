package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"io.winapps.starlight/internal/apperr"
	"io.winapps.starlight/internal/session"
)

const bearerPrefix = "Bearer "

// Authenticator resolves an ID token into a viewer; *session.Manager satisfies it
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*session.Viewer, error)
}

// BearerToken extracts the token from the Authorization header
func BearerToken(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", apperr.AuthRequired("Authorization header is required")
	}
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return "", apperr.AuthRequired("Authorization header must start with 'Bearer '")
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))
	if token == "" {
		return "", apperr.AuthRequired("Token is required")
	}
	return token, nil
}

func abortWithError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(apperr.HTTPStatus(err), gin.H{
		"error": apperr.Message(err),
		"code":  apperr.KindOf(err).String(),
	})
}

// AuthMiddleware verifies the bearer token and stores the viewer on the context
func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := BearerToken(c)
		if err != nil {
			abortWithError(c, err)
			return
		}

		viewer, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			if apperr.KindOf(err) == apperr.KindStoreFailure {
				abortWithError(c, err)
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
				"code":  apperr.KindAuthRequired.String(),
			})
			return
		}

		session.Set(c, viewer)
		c.Next()
	}
}

// OptionalAuth sets the viewer when a valid token is present and lets
// anonymous requests through otherwise.
func OptionalAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		token, err := BearerToken(c)
		if err == nil {
			if viewer, err := auth.Authenticate(c.Request.Context(), token); err == nil {
				session.Set(c, viewer)
			}
		}
		c.Next()
	}
}
