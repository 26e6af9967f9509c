package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/linkshort/linkshort/internal/services"
)

// userIDKey is the gin context key under which middleware stores the
// authenticated caller's user id.
const userIDKey = "userID"

// CallerID returns the authenticated user id from the request context, or an
// empty string for anonymous callers.
func CallerID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header. Returns an empty string when the header is missing or malformed.
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// RequireAuth rejects requests without a valid bearer token and stores the
// caller's user id in the context for the handler.
func RequireAuth(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication token not provided"})
			return
		}

		userID, err := authService.VerifyToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired authentication token"})
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// OptionalAuth stores the caller's user id when a valid bearer token is
// present and lets the request through anonymously otherwise. Used on the
// create endpoint, where anonymous links are allowed.
func OptionalAuth(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if userID, err := authService.VerifyToken(token); err == nil {
				c.Set(userIDKey, userID)
			}
		}
		c.Next()
	}
}
