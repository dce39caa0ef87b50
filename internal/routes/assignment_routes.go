package routes

import (
	"fleet_park/internal/controllers"
	"fleet_park/internal/middleware"
	"github.com/gin-gonic/gin"
)

func AssignmentRoutes(r *gin.Engine) {
	assignment := r.Group("/assignment")
	assignment.Use(middleware.RequireAuth())
	{
		assignment.POST("/", controllers.SetAssignmentActive)
		assignment.GET("/active", controllers.ListActiveAssignments)
	}
}
