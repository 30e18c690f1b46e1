package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/attunelabs/attune-backend/internal/platform/logger"
)

const headerServiceKey = "X-Internal-Service-Key"

// RequireServiceKey guards internal endpoints behind a shared key. The key
// value itself is never logged.
func RequireServiceKey(log *logger.Logger, key string) gin.HandlerFunc {
	mlog := log.With("middleware", "RequireServiceKey")
	return func(c *gin.Context) {
		if key == "" {
			mlog.Error("internal service key not configured")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"error": gin.H{"message": "internal endpoints disabled", "code": "unavailable"},
			})
			return
		}
		got := c.GetHeader(headerServiceKey)
		if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			mlog.Warn("internal service key rejected", "path", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"message": "missing or invalid service key", "code": "unauthorized"},
			})
			return
		}
		c.Next()
	}
}
