package models

import (
	"time"

	"gorm.io/gorm"
)

// GPSSample is one timestamped position reading for a vehicle. Samples are
// append-only and immutable once written; within a vehicle they are always
// read back in non-decreasing timestamp order regardless of insertion
// order (composite index below backs that access path).
type GPSSample struct {
	gorm.Model
	VehicleID uint      `json:"vehicle_id" gorm:"index:idx_vehicle_ts,priority:1"`
	Timestamp time.Time `json:"timestamp" gorm:"index:idx_vehicle_ts,priority:2"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
}
