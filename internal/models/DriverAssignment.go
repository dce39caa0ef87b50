package models

import (
	"gorm.io/gorm"
)

// DriverAssignment links a driver to a vehicle. The (vehicle, driver) pair
// is unique; at most one assignment per vehicle and one per driver may be
// active at any time. The exclusivity check lives in internal/fleet and is
// additionally backed by partial unique indexes (see config.InitDB).
type DriverAssignment struct {
	gorm.Model
	VehicleID uint `json:"vehicle_id" gorm:"uniqueIndex:idx_vehicle_driver"`
	DriverID  uint `json:"driver_id" gorm:"uniqueIndex:idx_vehicle_driver"`
	Active    bool `json:"active"`

	Vehicle Vehicle `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
	Driver  Driver  `gorm:"foreignKey:DriverID" json:"driver,omitempty"`
}
