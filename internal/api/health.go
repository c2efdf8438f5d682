package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

var startTime = time.Now()

// Health returns a simple health check handler
func Health(env string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":         "ok",
			"env":            env,
			"uptime_seconds": int(time.Since(startTime).Seconds()),
			"time":           time.Now().Format(time.RFC3339),
		})
	}
}
