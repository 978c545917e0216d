package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"newsdesk/api/config"
	"newsdesk/api/logger"
	"newsdesk/api/utils"
)

// Context keys set for authenticated requests.
const (
	ContextUserID    = "user_id"
	ContextUserEmail = "user_email"
)

// AuthRequired accepts either the shared X-API-KEY or a dashboard JWT taken
// from the jwt_token cookie or a Bearer Authorization header.
func AuthRequired(cfg config.AuthConfig, log logger.Logger) gin.HandlerFunc {
	secret := []byte(cfg.JWTSecret)

	return func(c *gin.Context) {
		if key := c.GetHeader("X-API-KEY"); cfg.DefaultKey != "" && key != "" &&
			subtle.ConstantTimeCompare([]byte(key), []byte(cfg.DefaultKey)) == 1 {
			c.Next()
			return
		}

		tokenString, err := c.Cookie(utils.TokenCookie)
		if err != nil || tokenString == "" {
			tokenString = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		}
		if tokenString == "" {
			log.Debug("AuthRequired: no token provided", logger.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: No token provided"})
			return
		}

		claims, err := utils.ValidateJWT(tokenString, secret)
		if err != nil {
			log.Debug("AuthRequired: invalid token", logger.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid or expired token"})
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserEmail, claims.Email)
		c.Next()
	}
}
