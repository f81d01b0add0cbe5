package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BearerAuth guards the ingestion endpoint with a single shared token.
// An unconfigured token is a server misconfiguration: every request fails
// closed with 500 and the detail is only logged, never returned.
func BearerAuth(token string, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			log.Error("ingestion token is not configured on the server",
				zap.String("request_id", GetRequestID(c)))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"message": "Server configuration error.",
			})
			return
		}

		header := c.GetHeader("Authorization")
		expected := "Bearer " + token
		if subtle.ConstantTimeCompare([]byte(header), []byte(expected)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Unauthorized",
			})
			return
		}

		c.Next()
	}
}
