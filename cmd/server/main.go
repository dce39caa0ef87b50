package main

import (
	"log"
	"net/http"

	"fleet_park/internal/config"
	"fleet_park/internal/logger"
	"fleet_park/internal/middleware"
	"fleet_park/internal/routes"

	"github.com/gin-gonic/gin"
)

func main() {
	// Initialize structured logging to file
	logger.Setup()

	// Connect to the database
	config.InitDB()

	// Setup Gin router
	r := routes.SetupRouter()

	// Recovery middleware
	r.Use(gin.Recovery())

	// Wrap with CORS
	handler := middleware.EnableCORS(r)

	log.Println("fleet_park server running at :8080")
	log.Fatal(http.ListenAndServe("0.0.0.0:8080", handler))
}
