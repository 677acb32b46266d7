package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/versegallery/versegallery/internal/sessions"
	"github.com/versegallery/versegallery/pkg/logger"
)

// SessionValidator is the minimal interface the middleware depends on: it
// validates a raw session credential and returns the bound username.
type SessionValidator interface {
	Validate(raw string) (string, error)
}

// AuthMiddleware returns a Gin middleware that verifies Bearer session
// credentials. On success the username is stored in the request context for
// downstream handlers; the merge target of the Layer8 callback comes from
// here, never from the request body.
func AuthMiddleware(v SessionValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing Authorization header"})
			return
		}
		// Expect 'Bearer <token>'
		var token string
		if n, _ := fmt.Sscanf(auth, "Bearer %s", &token); n != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid Authorization header"})
			return
		}

		// Fail closed: an unreachable blacklist must not silently re-enable
		// revoked sessions.
		revoked, err := sessions.IsAccessTokenBlacklisted(c.Request.Context(), token)
		if err != nil {
			logger.Errorf("session blacklist check failed: %v", err)
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "session check unavailable"})
			return
		}
		if revoked {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session revoked"})
			return
		}

		username, err := v.Validate(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid session"})
			return
		}

		c.Set("username", username)
		c.Set("session_token", token)
		c.Next()
	}
}

// Username returns the authenticated username set by AuthMiddleware.
func Username(c *gin.Context) (string, bool) {
	v, ok := c.Get("username")
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}
