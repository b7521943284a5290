// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file provides bearer-token authentication. The middleware verifies the
// Authorization header with the injected token parser and stashes the
// authenticated identity in the Gin context under "userID" and "userRole",
// where downstream middleware (rate limiting, idempotency) and handlers read
// it.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/talentscout/talentscout-server/internal/auth"
)

// TokenParser verifies an access token and returns its claims.
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// Auth enforces a valid bearer token on every request it wraps. Failures
// return 401 with the standard error envelope shape.
func Auth(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearer(c.GetHeader("Authorization"))
		if token == "" {
			unauthorized(c, "missing bearer token")
			return
		}
		claims, err := tokens.Parse(token)
		if err != nil {
			unauthorized(c, "invalid or expired token")
			return
		}
		c.Set("userID", claims.UserID)
		c.Set("userRole", claims.Role)
		c.Next()
	}
}

func bearer(header string) string {
	const prefix = "Bearer "
	if strings.HasPrefix(header, prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"request_id": c.Writer.Header().Get("X-Request-ID"),
		"code":       "unauthorized",
		"message":    msg,
	})
}
