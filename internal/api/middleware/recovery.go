package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"
	"syscall"

	"podsync/internal/logger"

	"github.com/gin-gonic/gin"
)

// Recovery turns a handler panic into a 500 JSON response. Panics caused by
// the client going away are dropped without a response.
func Recovery(logger *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		if err, ok := recovered.(error); ok {
			if errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ECONNRESET) {
				c.Abort()
				return
			}
		}

		if gin.IsDebugging() {
			logger.Error("Panic recovered on %s %s: %v\n%s", c.Request.Method, c.Request.URL.Path, recovered, debug.Stack())
		} else {
			logger.Error("Panic recovered on %s %s: %v", c.Request.Method, c.Request.URL.Path, recovered)
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	})
}
