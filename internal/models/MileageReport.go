package models

import (
	"time"

	"gorm.io/gorm"
)

// MileageReport is a persisted snapshot of one aggregation run. Result
// holds the period-key -> distance-km mapping as JSON; it is written once
// when the report is computed and never auto-refreshed.
type MileageReport struct {
	gorm.Model
	VehicleID uint      `json:"vehicle_id" gorm:"index"`
	DateStart time.Time `json:"date_start"`
	DateEnd   time.Time `json:"date_end"`
	Period    string    `json:"period"` // "day", "month" or "year"
	Result    []byte    `json:"result" gorm:"type:bytea"`
}
