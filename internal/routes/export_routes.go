package routes

import (
	"fleet_park/internal/controllers"
	"fleet_park/internal/middleware"
	"github.com/gin-gonic/gin"
)

func ExportRoutes(r *gin.Engine) {
	export := r.Group("/export")
	export.Use(middleware.RequireAuth())
	{
		export.GET("/enterprise/:id", controllers.ExportBundle)
		export.POST("/import", controllers.ImportBundle)
	}
}
