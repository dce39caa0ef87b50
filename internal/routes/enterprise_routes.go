package routes

import (
	"fleet_park/internal/controllers"
	"fleet_park/internal/middleware"
	"github.com/gin-gonic/gin"
)

func EnterpriseRoutes(r *gin.Engine) {
	enterprise := r.Group("/enterprise")
	enterprise.Use(middleware.RequireAuth())
	{
		enterprise.POST("/", controllers.CreateEnterprise)
		enterprise.GET("/", controllers.ListEnterprises)
		enterprise.GET("/:id", controllers.GetEnterprise)
		enterprise.PUT("/:id", controllers.UpdateEnterprise)
		enterprise.DELETE("/:id", controllers.DeleteEnterprise)
	}
}
