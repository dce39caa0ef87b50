package routes

import (
	"fleet_park/internal/controllers"
	"github.com/gin-gonic/gin"
)

func AuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/signup", controllers.SignupManager)
		auth.POST("/login", controllers.LoginManager)
	}
}
