package routes

import (
	"volumescope/internal/controllers"

	"github.com/gin-gonic/gin"
)

// RegisterAPIRoutes mounts the JSON API under /api. Extra middleware (rate
// limiting) applies to this group only.
func RegisterAPIRoutes(r *gin.Engine, scans *controllers.ScanController, mw ...gin.HandlerFunc) {
	api := r.Group("/api", mw...)
	{
		api.GET("/scan", scans.GetScan)
		api.GET("/volume", scans.GetVolume)
		api.GET("/health", controllers.GetHealth)
	}
}
