package routes

import (
	"volumescope/internal/controllers"
	"volumescope/internal/services"

	"github.com/gin-gonic/gin"
)

// RegisterLiveRoutes registers the live feed and the Prometheus endpoint.
// allowedOrigins restricts which browser origins may open the feed.
func RegisterLiveRoutes(r *gin.Engine, allowedOrigins []string) {
	r.GET("/ws", controllers.NewWebSocketHandler(allowedOrigins))
	r.GET("/metrics", gin.WrapH(services.TelemetryHandler()))
}
