package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"fleet_park/internal/config"
	"fleet_park/internal/mileage"
	"fleet_park/internal/models"
)

const dateLayout = "2006-01-02"

// CreateMileageReport aggregates a vehicle's mileage over a date range
// and persists the result as a snapshot.
// Query params: from, to (YYYY-MM-DD), period (day|month|year).
func CreateMileageReport(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)

	vehicle, err := vehicleForManager(c, uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
		return
	}

	dateStart, err := time.Parse(dateLayout, c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from must be YYYY-MM-DD"})
		return
	}
	dateEnd, err := time.Parse(dateLayout, c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to must be YYYY-MM-DD"})
		return
	}

	period := c.DefaultQuery("period", mileage.PeriodDay)
	switch period {
	case mileage.PeriodDay, mileage.PeriodMonth, mileage.PeriodYear:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "period must be day, month or year"})
		return
	}

	report, totals, err := mileage.NewAggregator(config.DB).Snapshot(vehicle.ID, dateStart, dateEnd, period)
	if err != nil {
		if errors.Is(err, mileage.ErrVehicleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
			return
		}
		logrus.WithError(err).Error("CreateMileageReport: aggregation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Aggregation failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"report_id": report.ID, "period": period, "mileage_km": totals})
}

// ListMileageReports returns persisted snapshots for a vehicle, newest
// first, with the stored result decoded.
func ListMileageReports(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)

	vehicle, err := vehicleForManager(c, uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
		return
	}

	query := config.DB.Model(&models.MileageReport{}).Where("vehicle_id = ?", vehicle.ID)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching reports"})
		return
	}

	limit, offset := pageBounds(c)
	var reports []models.MileageReport
	if err := query.Order("created_at desc").Limit(limit).Offset(offset).Find(&reports).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching reports"})
		return
	}

	type reportResponse struct {
		ID        uint               `json:"id"`
		DateStart time.Time          `json:"date_start"`
		DateEnd   time.Time          `json:"date_end"`
		Period    string             `json:"period"`
		MileageKm map[string]float64 `json:"mileage_km"`
	}
	responses := make([]reportResponse, 0, len(reports))
	for _, report := range reports {
		totals := map[string]float64{}
		if len(report.Result) > 0 {
			if err := json.Unmarshal(report.Result, &totals); err != nil {
				logrus.WithError(err).WithField("report_id", report.ID).Warn("skipping undecodable report snapshot")
				continue
			}
		}
		responses = append(responses, reportResponse{
			ID:        report.ID,
			DateStart: report.DateStart,
			DateEnd:   report.DateEnd,
			Period:    report.Period,
			MileageKm: totals,
		})
	}
	c.JSON(http.StatusOK, gin.H{"data": responses, "total": total, "limit": limit, "offset": offset})
}
