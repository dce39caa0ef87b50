package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"fleet_park/internal/config"
	"fleet_park/internal/exportbundle"
)

// ExportBundle serializes one enterprise's vehicles, contained routes and
// samples to the portable bundle format.
// Query params: from, to (RFC3339, UTC).
func ExportBundle(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)

	enterprise, err := enterpriseForManager(c, uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Enterprise not found"})
		return
	}

	utcStart, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from must be RFC3339"})
		return
	}
	utcEnd, err := time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to must be RFC3339"})
		return
	}

	bundle, err := exportbundle.NewCodec(config.DB).Export(enterprise.ID, utcStart.UTC(), utcEnd.UTC())
	if err != nil {
		logrus.WithError(err).Error("ExportBundle: export failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Export failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, bundle)
}

// ImportBundle rebuilds a bundle's graph. The whole bundle imports in one
// transaction: any failure rolls everything back.
func ImportBundle(c *gin.Context) {
	var bundle exportbundle.Bundle
	if err := c.ShouldBindJSON(&bundle); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid bundle: " + err.Error()})
		return
	}

	summary, err := exportbundle.NewCodec(config.DB).Import(&bundle)
	if err != nil {
		var importErr *exportbundle.ImportError
		if errors.As(err, &importErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":       importErr.Error(),
				"entity":      importErr.Entity,
				"external_id": importErr.ExternalID,
			})
			return
		}
		logrus.WithError(err).Error("ImportBundle: import failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Import failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// ExportSamplesCSV streams a vehicle's full sample log as CSV.
func ExportSamplesCSV(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)

	vehicle, err := vehicleForManager(c, uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=samples_"+strconv.FormatUint(uint64(vehicle.ID), 10)+".csv")
	if err := exportbundle.NewCodec(config.DB).WriteSamplesCSV(c.Writer, vehicle.ID); err != nil {
		logrus.WithError(err).Error("ExportSamplesCSV: write failed")
	}
}
