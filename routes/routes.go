package routes

import (
	"voicetable/handlers"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the voice line endpoints.
func RegisterRoutes(r *gin.Engine, audio *handlers.AudioHandler) {
	r.GET("/health", handlers.HealthHandler)
	r.GET("/audio", audio.Stream)
}
