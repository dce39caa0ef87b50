package controllers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"fleet_park/internal/config"
	"fleet_park/internal/middleware"
	"fleet_park/internal/models"
)

var errAccessDenied = errors.New("enterprise not found or access denied")

const (
	defaultPageSize = 20
	maxPageSize     = 50
)

// pageBounds reads limit/offset query params for list endpoints. Limit is
// clamped to maxPageSize so no list answer is unbounded.
func pageBounds(c *gin.Context) (limit, offset int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
	if err != nil || limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset, err = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

// currentManager loads the authenticated manager with their enterprises.
func currentManager(c *gin.Context) (*models.Manager, error) {
	var manager models.Manager
	err := config.DB.Preload("Enterprises").First(&manager, middleware.ManagerID(c)).Error
	if err != nil {
		return nil, err
	}
	return &manager, nil
}

// managerEnterpriseIDs returns the ids of enterprises the authenticated
// manager may see. Every enterprise-scoped query filters on this set.
func managerEnterpriseIDs(c *gin.Context) ([]uint, error) {
	manager, err := currentManager(c)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(manager.Enterprises))
	for _, e := range manager.Enterprises {
		ids = append(ids, e.ID)
	}
	return ids, nil
}

// enterpriseForManager fetches one enterprise if the manager has access.
func enterpriseForManager(c *gin.Context, enterpriseID uint) (*models.Enterprise, error) {
	ids, err := managerEnterpriseIDs(c)
	if err != nil {
		return nil, err
	}
	var enterprise models.Enterprise
	err = config.DB.Where("id = ? AND id IN ?", enterpriseID, ids).First(&enterprise).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errAccessDenied
	}
	if err != nil {
		return nil, err
	}
	return &enterprise, nil
}

// vehicleForManager fetches one vehicle if it belongs to an enterprise the
// manager may see.
func vehicleForManager(c *gin.Context, vehicleID uint) (*models.Vehicle, error) {
	ids, err := managerEnterpriseIDs(c)
	if err != nil {
		return nil, err
	}
	var vehicle models.Vehicle
	err = config.DB.Where("id = ? AND enterprise_id IN ?", vehicleID, ids).First(&vehicle).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errAccessDenied
	}
	if err != nil {
		return nil, err
	}
	return &vehicle, nil
}
