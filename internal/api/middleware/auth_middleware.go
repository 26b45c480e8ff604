package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resumeEditor/internal/errcode"
)

const userIDKey = "userID"

// TokenValidator 是中间件依赖的最小鉴权接口，由 auth.AuthService 实现。
type TokenValidator interface {
	ValidateUser(token string) (string, error)
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error":   errcode.Unauthorized,
		"message": "unauthorized",
	})
}

// AuthMiddleware 校验访问令牌并将 userID 注入上下文。
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthorized(c)
			return
		}

		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortUnauthorized(c)
			return
		}

		userID, err := validator.ValidateUser(parts[1])
		if err != nil || userID == "" {
			abortUnauthorized(c)
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// UserID returns the authenticated owner set by AuthMiddleware.
func UserID(c *gin.Context) (string, bool) {
	id := c.GetString(userIDKey)
	return id, id != ""
}
