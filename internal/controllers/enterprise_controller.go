package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"fleet_park/internal/config"
	"fleet_park/internal/models"
)

// CreateEnterprise registers a new enterprise and links it to the
// authenticated manager.
func CreateEnterprise(c *gin.Context) {
	var input struct {
		Name          string `json:"name" binding:"required"`
		City          string `json:"city"`
		LocalTimezone string `json:"local_timezone"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid enterprise input: " + err.Error()})
		return
	}

	manager, err := currentManager(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Manager not authorized"})
		return
	}

	enterprise := models.Enterprise{
		Name:          input.Name,
		City:          input.City,
		LocalTimezone: input.LocalTimezone,
	}

	tx := config.DB.Begin()
	if tx.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}
	if err := tx.Create(&enterprise).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, models.ErrInvalidTimezone) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Create enterprise failed: " + err.Error()})
		return
	}
	if err := tx.Model(manager).Association("Enterprises").Append(&enterprise); err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Link enterprise failed: " + err.Error()})
		return
	}
	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Transaction commit failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"enterprise": enterprise})
}

// ListEnterprises returns the enterprises the manager has access to.
func ListEnterprises(c *gin.Context) {
	manager, err := currentManager(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Manager not authorized"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": manager.Enterprises})
}

// GetEnterprise returns one enterprise with its vehicles and drivers.
func GetEnterprise(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)

	enterprise, err := enterpriseForManager(c, uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Enterprise not found"})
		return
	}

	config.DB.Preload("Vehicles").Preload("Drivers").First(enterprise, enterprise.ID)
	c.JSON(http.StatusOK, gin.H{"enterprise": enterprise})
}

// UpdateEnterprise modifies name, city or timezone of an enterprise.
func UpdateEnterprise(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)

	enterprise, err := enterpriseForManager(c, uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Enterprise not found"})
		return
	}

	var input struct {
		Name          *string `json:"name"`
		City          *string `json:"city"`
		LocalTimezone *string `json:"local_timezone"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Name != nil {
		enterprise.Name = *input.Name
	}
	if input.City != nil {
		enterprise.City = *input.City
	}
	if input.LocalTimezone != nil {
		enterprise.LocalTimezone = *input.LocalTimezone
	}

	if err := config.DB.Save(enterprise).Error; err != nil {
		if errors.Is(err, models.ErrInvalidTimezone) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logrus.WithError(err).Error("UpdateEnterprise: save failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Update failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"enterprise": enterprise})
}

// DeleteEnterprise removes an enterprise.
func DeleteEnterprise(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)

	enterprise, err := enterpriseForManager(c, uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Enterprise not found"})
		return
	}

	if err := config.DB.Delete(enterprise).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete enterprise"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Enterprise deleted"})
}
