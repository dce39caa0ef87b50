package routes

import (
	"fleet_park/internal/controllers"
	"fleet_park/internal/middleware"
	"github.com/gin-gonic/gin"
)

func CatalogRoutes(r *gin.Engine) {
	catalog := r.Group("/catalog")
	catalog.Use(middleware.RequireAuth())
	{
		catalog.POST("/brand", controllers.CreateBrand)
		catalog.GET("/brand", controllers.ListBrands)
		catalog.POST("/model", controllers.CreateVehicleModel)
		catalog.GET("/model", controllers.ListVehicleModels)
		catalog.POST("/configuration", controllers.CreateConfiguration)
		catalog.GET("/configuration", controllers.ListConfigurations)
	}
}
