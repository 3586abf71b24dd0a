package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"petchat/internal/auth"
)

const UserIDKey = "auth_user_id"

func AuthRequired(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    40100,
				"message": "missing bearer token",
				"data":    nil,
			})
			return
		}

		uid, err := auth.ParseJWT(strings.TrimSpace(token), secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    40101,
				"message": "invalid token",
				"data":    nil,
			})
			return
		}

		c.Set(UserIDKey, uid)
		c.Next()
	}
}
