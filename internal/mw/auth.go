package mw

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"energy-admin/internal/auth"
)

// TokenParser verifies bearer tokens.
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// JWTAuth requires a valid "Authorization: Bearer <token>" header and stores
// the caller's id and email in the context.
func JWTAuth(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "you must be logged in"})
			return
		}

		claims, err := tokens.Parse(strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.Set(KeyUserID, claims.Subject)
		c.Set(KeyEmail, claims.Email)
		c.Next()
	}
}
