package middleware

import (
	"net/http"
	"strings"

	"catfish/services"

	"github.com/gin-gonic/gin"
)

// Auth resolves the bearer token to a stable uid and stores it on the
// context. Guests and registered users both pass; handlers that need a
// registered account additionally check the "guest" flag.
func Auth(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or malformed Authorization header"})
			return
		}

		uid, guest, err := authService.VerifyToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set("uid", uid)
		c.Set("guest", guest)
		c.Next()
	}
}

// RequireRegistered rejects guest identities. Used for prompt pool
// administration.
func RequireRegistered() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetBool("guest") {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Registered account required"})
			return
		}
		c.Next()
	}
}
