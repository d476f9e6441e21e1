package handlers

import (
	"net/http"

	"hotelbot/utils"

	"github.com/gin-gonic/gin"
)

// Health reports liveness plus the last dependency snapshot. Always 200.
func Health(c *gin.Context) {
	status := utils.GetHealthStatus()
	healthy := (status.Mongo == nil || *status.Mongo) && (status.Redis == nil || *status.Redis)

	state := "ok"
	if !healthy {
		state = "degraded"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":       state,
		"message":      "Hi, I'm the hotel booking bot",
		"dependencies": status,
	})
}
