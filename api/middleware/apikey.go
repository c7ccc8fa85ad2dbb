package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const APIKeyHeader = "X-CALCBUILDER-API-KEY"

type APIKeyConfig struct {
	HeaderName  string
	ValidAPIKey string
}

// APIKeyMiddleware rejects requests whose API key header is missing or does not match
func APIKeyMiddleware(config APIKeyConfig) gin.HandlerFunc {
	headerName := config.HeaderName
	if headerName == "" {
		headerName = APIKeyHeader
	}

	return func(c *gin.Context) {
		apiKey := strings.TrimSpace(c.GetHeader(headerName))

		if apiKey == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "Missing API key",
			})
			return
		}

		if config.ValidAPIKey == "" || subtle.ConstantTimeCompare([]byte(apiKey), []byte(config.ValidAPIKey)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "Invalid API key",
			})
			return
		}

		c.Next()
	}
}
