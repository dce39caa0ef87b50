package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Route is a logical trip: a UTC start/end window for one vehicle. It does
// not own GPS samples; samples belonging to the trip are selected at query
// time by timestamp range (see internal/telemetry). Start and end points
// are optional and stored as WKB, the same way route geometry is kept in
// PostGIS-backed columns.
type Route struct {
	gorm.Model

	VehicleID uint      `json:"vehicle_id" gorm:"index:idx_route_vehicle_window,priority:1"`
	StartTime time.Time `json:"start_time" gorm:"index:idx_route_vehicle_window,priority:2"`
	EndTime   time.Time `json:"end_time" gorm:"index:idx_route_vehicle_window,priority:3"`

	// DurationSeconds is derived from the window bounds and recomputed on
	// every write.
	DurationSeconds int64 `json:"duration_seconds"`

	// WKB-encoded points (SRID 4326), nil when unknown.
	StartPoint []byte `gorm:"type:bytea" json:"-"`
	EndPoint   []byte `gorm:"type:bytea" json:"-"`

	ExternalID uuid.UUID `json:"external_id" gorm:"type:text;uniqueIndex"`
}

func (r *Route) BeforeSave(tx *gorm.DB) error {
	r.DurationSeconds = int64(r.EndTime.Sub(r.StartTime).Seconds())
	if r.ExternalID == uuid.Nil {
		r.ExternalID = uuid.New()
	}
	return nil
}
