package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/calcbuilder/adminstack/internal/utils"
)

// CustomContextMiddleware copies the acting user and the :companyId path param into the request context
func CustomContextMiddleware(appSource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := utils.WithCustomContextFromGinRequest(c, appSource)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
