package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleet_park/internal/config"
	"fleet_park/internal/models"
)

// CreateBrand registers a vehicle brand.
func CreateBrand(c *gin.Context) {
	var input models.Brand
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := config.DB.Create(&input).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create brand: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"brand": input})
}

// ListBrands lists all brands.
func ListBrands(c *gin.Context) {
	var brands []models.Brand
	if err := config.DB.Find(&brands).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch brands"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": brands})
}

// CreateVehicleModel registers a model under a brand.
func CreateVehicleModel(c *gin.Context) {
	var input models.VehicleModel
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := config.DB.Create(&input).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create model: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"model": input})
}

// ListVehicleModels lists all models with their brands.
func ListVehicleModels(c *gin.Context) {
	var vehicleModels []models.VehicleModel
	if err := config.DB.Preload("Brand").Find(&vehicleModels).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch models"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": vehicleModels})
}

// CreateConfiguration registers a configuration under a model.
func CreateConfiguration(c *gin.Context) {
	var input models.Configuration
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := config.DB.Create(&input).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create configuration: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"configuration": input})
}

// ListConfigurations lists all configurations with model and brand.
func ListConfigurations(c *gin.Context) {
	var configurations []models.Configuration
	if err := config.DB.Preload("VehicleModel").Preload("VehicleModel.Brand").Find(&configurations).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch configurations"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": configurations})
}
