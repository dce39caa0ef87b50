package routes

import (
	"fleet_park/internal/controllers"
	"fleet_park/internal/middleware"
	"github.com/gin-gonic/gin"
)

func TelemetryRoutes(r *gin.Engine) {
	telemetry := r.Group("/telemetry")
	telemetry.Use(middleware.RequireAuth())
	{
		telemetry.POST("/sample", controllers.IngestSample)
		telemetry.POST("/route", controllers.CreateRoute)
		telemetry.GET("/route/:id", controllers.GetRoute)
		telemetry.PUT("/route/:id", controllers.UpdateRoute)
		telemetry.DELETE("/route/:id", controllers.DeleteRoute)
		telemetry.GET("/route/:id/samples", controllers.GetRouteSamples)
	}
}
