package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"fleet_park/internal/config"
	"fleet_park/internal/fleet"
)

// SetAssignmentActive creates or updates a (vehicle, driver) assignment
// and flips its active flag. Exclusivity conflicts come back as 409.
func SetAssignmentActive(c *gin.Context) {
	var input struct {
		VehicleID uint  `json:"vehicle_id" binding:"required"`
		DriverID  uint  `json:"driver_id" binding:"required"`
		Active    *bool `json:"active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignment input: " + err.Error()})
		return
	}

	if _, err := vehicleForManager(c, input.VehicleID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
		return
	}

	ledger := fleet.NewLedger(config.DB)
	assignment, err := ledger.SetActive(input.VehicleID, input.DriverID, *input.Active)
	switch {
	case errors.Is(err, fleet.ErrDriverAlreadyActive), errors.Is(err, fleet.ErrVehicleAlreadyActive):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case errors.Is(err, fleet.ErrVehicleNotFound), errors.Is(err, fleet.ErrDriverNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	case err != nil:
		logrus.WithError(err).Error("SetAssignmentActive: ledger write failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"assignment": assignment})
}

// GetActiveDriver returns the driver currently active on a vehicle.
func GetActiveDriver(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)

	vehicle, err := vehicleForManager(c, uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
		return
	}

	driver, err := fleet.NewLedger(config.DB).ActiveDriver(vehicle.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No active driver for this vehicle"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"driver": driver})
}

// ListActiveAssignments lists active vehicle-driver pairs across the
// manager's enterprises.
func ListActiveAssignments(c *gin.Context) {
	ids, err := managerEnterpriseIDs(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Manager not authorized"})
		return
	}

	assignments, err := fleet.NewLedger(config.DB).ActiveAssignments(ids)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching assignments"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": assignments})
}
