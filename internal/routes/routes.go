package routes

import (
	"github.com/gin-gonic/gin"
)

func SetupRouter() *gin.Engine {
	r := gin.Default()

	AuthRoutes(r)
	EnterpriseRoutes(r)
	DriverRoutes(r)
	VehicleRoutes(r)
	CatalogRoutes(r)
	AssignmentRoutes(r)
	TelemetryRoutes(r)
	ExportRoutes(r)

	return r
}
