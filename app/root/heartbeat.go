// Package root contains the liveness endpoints
package root

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Heartbeat answers HEAD /api/heartbeat
func Heartbeat(c *gin.Context) {
	c.Status(http.StatusOK)
}

// Liveness answers GET /
func Liveness(c *gin.Context) {
	c.String(http.StatusOK, "Backend server is running.")
}
