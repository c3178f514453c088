package handlers

import (
	"net/http"
	"time"

	"voicetable/utils"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports liveness plus the latest dependency snapshot.
func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"services":  utils.GetHealthStatus(),
	})
}
