package routes

import (
	"fleet_park/internal/controllers"
	"fleet_park/internal/middleware"
	"github.com/gin-gonic/gin"
)

func VehicleRoutes(r *gin.Engine) {
	vehicle := r.Group("/vehicle")
	vehicle.Use(middleware.RequireAuth())
	{
		vehicle.POST("/", controllers.CreateVehicle)
		vehicle.GET("/", controllers.ListVehicles)
		vehicle.GET("/:id", controllers.GetVehicle)
		vehicle.PUT("/:id", controllers.UpdateVehicle)
		vehicle.DELETE("/:id", controllers.DeleteVehicle)
		vehicle.GET("/:id/active-driver", controllers.GetActiveDriver)
		vehicle.GET("/:id/routes", controllers.ListRoutesInWindow)
		vehicle.POST("/:id/mileage-report", controllers.CreateMileageReport)
		vehicle.GET("/:id/mileage-reports", controllers.ListMileageReports)
		vehicle.GET("/:id/samples.csv", controllers.ExportSamplesCSV)
	}
}
