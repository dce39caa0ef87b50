package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"fleet_park/internal/config"
	"fleet_park/internal/models"
)

// CreateVehicle registers a vehicle under one of the manager's
// enterprises.
func CreateVehicle(c *gin.Context) {
	var input struct {
		VIN              string    `json:"vin" binding:"required"`
		Price            float64   `json:"price"`
		ReleaseYear      int       `json:"release_year"`
		Mileage          int       `json:"mileage"`
		Color            string    `json:"color"`
		TransmissionType string    `json:"transmission_type"`
		ConfigurationID  *uint     `json:"configuration_id"`
		EnterpriseID     uint      `json:"enterprise_id" binding:"required"`
		PurchaseDatetime time.Time `json:"purchase_datetime"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle input: " + err.Error()})
		return
	}

	if _, err := enterpriseForManager(c, input.EnterpriseID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Enterprise not found"})
		return
	}

	vehicle := models.Vehicle{
		VIN:              input.VIN,
		Price:            input.Price,
		ReleaseYear:      input.ReleaseYear,
		Mileage:          input.Mileage,
		Color:            input.Color,
		TransmissionType: input.TransmissionType,
		ConfigurationID:  input.ConfigurationID,
		EnterpriseID:     input.EnterpriseID,
		PurchaseDatetime: input.PurchaseDatetime.UTC(),
	}
	if err := config.DB.Create(&vehicle).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create vehicle: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"vehicle": vehicle})
}

// ListVehicles returns vehicles of the manager's enterprises. With
// ?active_only=true only vehicles that currently have an active driver are
// returned.
func ListVehicles(c *gin.Context) {
	ids, err := managerEnterpriseIDs(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Manager not authorized"})
		return
	}

	query := config.DB.Model(&models.Vehicle{}).Where("enterprise_id IN ?", ids)
	if c.Query("active_only") == "true" {
		query = query.
			Joins("JOIN driver_assignments ON driver_assignments.vehicle_id = vehicles.id AND driver_assignments.active AND driver_assignments.deleted_at IS NULL").
			Distinct()
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing vehicles: " + err.Error()})
		return
	}

	limit, offset := pageBounds(c)
	var vehicles []models.Vehicle
	if err := query.Order("vehicles.id asc").Limit(limit).Offset(offset).Find(&vehicles).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing vehicles: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": vehicles, "total": total, "limit": limit, "offset": offset})
}

// GetVehicle returns one vehicle.
func GetVehicle(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)

	vehicle, err := vehicleForManager(c, uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"vehicle": vehicle})
}

// UpdateVehicle modifies vehicle attributes.
func UpdateVehicle(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)

	vehicle, err := vehicleForManager(c, uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
		return
	}

	var input struct {
		VIN              *string    `json:"vin"`
		Price            *float64   `json:"price"`
		ReleaseYear      *int       `json:"release_year"`
		Mileage          *int       `json:"mileage"`
		Color            *string    `json:"color"`
		TransmissionType *string    `json:"transmission_type"`
		ConfigurationID  *uint      `json:"configuration_id"`
		PurchaseDatetime *time.Time `json:"purchase_datetime"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid update"})
		return
	}

	if input.VIN != nil {
		vehicle.VIN = *input.VIN
	}
	if input.Price != nil {
		vehicle.Price = *input.Price
	}
	if input.ReleaseYear != nil {
		vehicle.ReleaseYear = *input.ReleaseYear
	}
	if input.Mileage != nil {
		vehicle.Mileage = *input.Mileage
	}
	if input.Color != nil {
		vehicle.Color = *input.Color
	}
	if input.TransmissionType != nil {
		vehicle.TransmissionType = *input.TransmissionType
	}
	if input.ConfigurationID != nil {
		vehicle.ConfigurationID = input.ConfigurationID
	}
	if input.PurchaseDatetime != nil {
		vehicle.PurchaseDatetime = input.PurchaseDatetime.UTC()
	}

	config.DB.Save(vehicle)
	c.JSON(http.StatusOK, gin.H{"vehicle": vehicle})
}

// DeleteVehicle removes a vehicle and cascades its samples, routes,
// assignments and report snapshots in one transaction.
func DeleteVehicle(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)

	vehicle, err := vehicleForManager(c, uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
		return
	}

	tx := config.DB.Begin()
	if tx.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}

	for _, owned := range []interface{}{
		&models.GPSSample{},
		&models.Route{},
		&models.DriverAssignment{},
		&models.MileageReport{},
	} {
		if err := tx.Where("vehicle_id = ?", vehicle.ID).Delete(owned).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Cascade delete failed: " + err.Error()})
			return
		}
	}

	if err := tx.Delete(vehicle).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete vehicle: " + err.Error()})
		return
	}
	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Transaction commit failed: " + err.Error()})
		return
	}

	logrus.WithField("vehicle_id", vehicle.ID).Info("vehicle deleted with owned telemetry")
	c.JSON(http.StatusOK, gin.H{"message": "Vehicle deleted"})
}
