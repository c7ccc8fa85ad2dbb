package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	UserIdHeader    = "X-USER-ID"
	UserEmailHeader = "X-USER-EMAIL"
)

// UserMiddleware stores the acting user headers in the gin context. Both are optional.
func UserMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("UserId", strings.TrimSpace(c.GetHeader(UserIdHeader)))
		c.Set("UserEmail", strings.ToLower(strings.TrimSpace(c.GetHeader(UserEmailHeader))))
		c.Next()
	}
}
