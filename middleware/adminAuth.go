package middleware

import (
	"net/http"
	"strings"

	"wetech/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminRole is the role claim carried by admin tokens.
const AdminRole = "admin"

// JWTAuthAdminMiddleware admits requests bearing a valid admin token.
func JWTAuthAdminMiddleware(issuer *utils.TokenIssuer, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := issuer.ValidateToken(tokenString)
		if err != nil {
			logger.Warn("Rejected admin token", zap.String("ip", c.ClientIP()), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		if role, _ := claims["role"].(string); role != AdminRole {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Unauthorized admin access"})
			return
		}

		sub, _ := claims["sub"].(string)
		c.Set("adminUser", sub)
		c.Set("isAdmin", true)
		c.Next()
	}
}
