package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"fleet_park/internal/config"
	"fleet_park/internal/geo"
	"fleet_park/internal/geocode"
	"fleet_park/internal/models"
	"fleet_park/internal/telemetry"
	"fleet_park/internal/timewindow"
)

// IngestSample appends one GPS reading for a vehicle.
func IngestSample(c *gin.Context) {
	var input struct {
		VehicleID uint      `json:"vehicle_id" binding:"required"`
		Timestamp time.Time `json:"timestamp" binding:"required"`
		Longitude float64   `json:"longitude"`
		Latitude  float64   `json:"latitude"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sample input: " + err.Error()})
		return
	}

	if _, err := vehicleForManager(c, input.VehicleID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
		return
	}

	sample, err := telemetry.NewStore(config.DB).Append(input.VehicleID, input.Timestamp, input.Latitude, input.Longitude)
	if err != nil {
		if errors.Is(err, telemetry.ErrVehicleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
			return
		}
		logrus.WithError(err).Error("IngestSample: store append failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store sample: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"sample": sample})
}

type routeInput struct {
	VehicleID     uint      `json:"vehicle_id" binding:"required"`
	StartTime     time.Time `json:"start_time" binding:"required"`
	EndTime       time.Time `json:"end_time" binding:"required"`
	StartLocation []float64 `json:"start_location"`
	EndLocation   []float64 `json:"end_location"`
}

// routeResponse mirrors models.Route with the WKB endpoints rendered as
// GeoJSON strings, plus an optional reverse-geocoded address per endpoint.
type routeResponse struct {
	ID              uint      `json:"id"`
	VehicleID       uint      `json:"vehicle_id"`
	ExternalID      string    `json:"external_id"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	DurationSeconds int64     `json:"duration_seconds"`
	StartPoint      string    `json:"start_point,omitempty"`
	EndPoint        string    `json:"end_point,omitempty"`
	StartAddress    string    `json:"start_address,omitempty"`
	EndAddress      string    `json:"end_address,omitempty"`
}

func toRouteResponse(route *models.Route) routeResponse {
	startJSON, _ := geo.PointToGeoJSON(route.StartPoint)
	endJSON, _ := geo.PointToGeoJSON(route.EndPoint)
	return routeResponse{
		ID:              route.ID,
		VehicleID:       route.VehicleID,
		ExternalID:      route.ExternalID.String(),
		StartTime:       route.StartTime.UTC(),
		EndTime:         route.EndTime.UTC(),
		DurationSeconds: route.DurationSeconds,
		StartPoint:      startJSON,
		EndPoint:        endJSON,
	}
}

func pointFromInput(location []float64) ([]byte, error) {
	if location == nil {
		return nil, nil
	}
	if len(location) != 2 {
		return nil, errors.New("location must be [lon, lat]")
	}
	return geo.PointToWKB(location[0], location[1])
}

// CreateRoute registers a trip window for a vehicle.
func CreateRoute(c *gin.Context) {
	var input routeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid route input: " + err.Error()})
		return
	}

	if _, err := vehicleForManager(c, input.VehicleID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
		return
	}

	startPoint, err := pointFromInput(input.StartLocation)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid start_location: " + err.Error()})
		return
	}
	endPoint, err := pointFromInput(input.EndLocation)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid end_location: " + err.Error()})
		return
	}

	route := models.Route{
		VehicleID:  input.VehicleID,
		StartTime:  input.StartTime.UTC(),
		EndTime:    input.EndTime.UTC(),
		StartPoint: startPoint,
		EndPoint:   endPoint,
	}
	if err := config.DB.Create(&route).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Create route failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"route": toRouteResponse(&route)})
}

// UpdateRoute rewrites the window or endpoints of a trip. Duration is
// recomputed on save.
func UpdateRoute(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)

	var route models.Route
	if err := config.DB.First(&route, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
		return
	}
	if _, err := vehicleForManager(c, route.VehicleID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
		return
	}

	var input struct {
		StartTime     *time.Time `json:"start_time"`
		EndTime       *time.Time `json:"end_time"`
		StartLocation []float64  `json:"start_location"`
		EndLocation   []float64  `json:"end_location"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.StartTime != nil {
		route.StartTime = input.StartTime.UTC()
	}
	if input.EndTime != nil {
		route.EndTime = input.EndTime.UTC()
	}
	if input.StartLocation != nil {
		startPoint, err := pointFromInput(input.StartLocation)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid start_location: " + err.Error()})
			return
		}
		route.StartPoint = startPoint
	}
	if input.EndLocation != nil {
		endPoint, err := pointFromInput(input.EndLocation)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid end_location: " + err.Error()})
			return
		}
		route.EndPoint = endPoint
	}

	if err := config.DB.Save(&route).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Update failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"route": toRouteResponse(&route)})
}

// DeleteRoute removes a trip window. Samples are untouched: they belong to
// the vehicle, not the route.
func DeleteRoute(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)

	var route models.Route
	if err := config.DB.First(&route, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
		return
	}
	if _, err := vehicleForManager(c, route.VehicleID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
		return
	}

	if err := config.DB.Delete(&route).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete route"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Route deleted"})
}

// ListRoutesInWindow selects a vehicle's routes fully contained in a local
// wall-clock window, interpreted in the vehicle's enterprise timezone.
// Query params: from, to (YYYY-MM-DDTHH:MM).
func ListRoutesInWindow(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)

	vehicle, err := vehicleForManager(c, uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
		return
	}

	var enterprise models.Enterprise
	if err := config.DB.First(&enterprise, vehicle.EnterpriseID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Enterprise lookup failed"})
		return
	}

	utcStart, utcEnd, err := timewindow.ToUTCRange(c.Query("from"), c.Query("to"), enterprise.LocalTimezone)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	routes, err := telemetry.NewSelector(config.DB).SelectRoutes(vehicle.ID, utcStart, utcEnd)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Route selection failed: " + err.Error()})
		return
	}

	responses := make([]routeResponse, 0, len(routes))
	for i := range routes {
		responses = append(responses, toRouteResponse(&routes[i]))
	}
	c.JSON(http.StatusOK, gin.H{"routes": responses, "utc_start": utcStart, "utc_end": utcEnd})
}

// GetRouteSamples returns the ordered samples bound to one route by its
// time window.
func GetRouteSamples(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)

	var route models.Route
	if err := config.DB.First(&route, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
		return
	}
	if _, err := vehicleForManager(c, route.VehicleID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
		return
	}

	samples, err := telemetry.NewSelector(config.DB).SamplesForRoute(&route)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Sample lookup failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"route": toRouteResponse(&route), "samples": samples})
}

// GetRoute returns one route enriched with reverse-geocoded endpoint
// addresses. Geocoding is presentation only: lookups that fail leave the
// address fields empty.
func GetRoute(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)

	var route models.Route
	if err := config.DB.First(&route, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
		return
	}
	if _, err := vehicleForManager(c, route.VehicleID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
		return
	}

	response := toRouteResponse(&route)

	geocoder := geocode.NewClient(config.ORSAPIKey())
	if lon, lat, ok, _ := geo.PointFromWKB(route.StartPoint); ok {
		response.StartAddress = geocoder.ReverseGeocode(c.Request.Context(), lat, lon)
	}
	if lon, lat, ok, _ := geo.PointFromWKB(route.EndPoint); ok {
		response.EndAddress = geocoder.ReverseGeocode(c.Request.Context(), lat, lon)
	}

	c.JSON(http.StatusOK, gin.H{"route": response})
}
