package routes

import (
	"fleet_park/internal/controllers"
	"fleet_park/internal/middleware"
	"github.com/gin-gonic/gin"
)

func DriverRoutes(r *gin.Engine) {
	driver := r.Group("/driver")
	driver.Use(middleware.RequireAuth())
	{
		driver.POST("/", controllers.CreateDriver)
		driver.GET("/", controllers.ListDrivers)
		driver.PUT("/:id", controllers.UpdateDriver)
		driver.DELETE("/:id", controllers.DeleteDriver)
	}
}
