package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"fleet_park/internal/config"
	"fleet_park/internal/models"
)

// CreateDriver adds a driver to one of the manager's enterprises.
func CreateDriver(c *gin.Context) {
	var input struct {
		Name         string  `json:"name" binding:"required"`
		Salary       float64 `json:"salary"`
		EnterpriseID uint    `json:"enterprise_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid driver input: " + err.Error()})
		return
	}

	if _, err := enterpriseForManager(c, input.EnterpriseID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Enterprise not found"})
		return
	}

	driver := models.Driver{
		Name:         input.Name,
		Salary:       input.Salary,
		EnterpriseID: input.EnterpriseID,
	}
	if err := config.DB.Create(&driver).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create driver: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"driver": driver})
}

// ListDrivers returns all drivers of the manager's enterprises.
func ListDrivers(c *gin.Context) {
	ids, err := managerEnterpriseIDs(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Manager not authorized"})
		return
	}

	query := config.DB.Model(&models.Driver{}).Where("enterprise_id IN ?", ids)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching drivers"})
		return
	}

	limit, offset := pageBounds(c)
	var drivers []models.Driver
	if err := query.Order("id asc").Limit(limit).Offset(offset).Find(&drivers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching drivers"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": drivers, "total": total, "limit": limit, "offset": offset})
}

// UpdateDriver modifies name or salary of a driver.
func UpdateDriver(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)

	ids, err := managerEnterpriseIDs(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Manager not authorized"})
		return
	}

	var driver models.Driver
	if err := config.DB.Where("id = ? AND enterprise_id IN ?", id, ids).First(&driver).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Driver not found"})
		return
	}

	var input struct {
		Name   *string  `json:"name"`
		Salary *float64 `json:"salary"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Name != nil {
		driver.Name = *input.Name
	}
	if input.Salary != nil {
		driver.Salary = *input.Salary
	}

	config.DB.Save(&driver)
	c.JSON(http.StatusOK, gin.H{"driver": driver})
}

// DeleteDriver removes a driver and their assignments.
func DeleteDriver(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)

	ids, err := managerEnterpriseIDs(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Manager not authorized"})
		return
	}

	var driver models.Driver
	if err := config.DB.Where("id = ? AND enterprise_id IN ?", id, ids).First(&driver).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Driver not found"})
		return
	}

	tx := config.DB.Begin()
	if err := tx.Where("driver_id = ?", driver.ID).Delete(&models.DriverAssignment{}).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete assignments: " + err.Error()})
		return
	}
	if err := tx.Delete(&driver).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete driver: " + err.Error()})
		return
	}
	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Transaction commit failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Driver deleted"})
}
