package telemetry

import (
	"time"

	"gorm.io/gorm"

	"fleet_park/internal/models"
)

// Selector picks trip routes inside a UTC window and binds samples to them.
type Selector struct {
	db    *gorm.DB
	store *Store
}

func NewSelector(db *gorm.DB) *Selector {
	return &Selector{db: db, store: NewStore(db)}
}

// SelectRoutes returns the vehicle's routes fully contained in the window:
// start_time >= utcStart AND end_time <= utcEnd. A trip overlapping a
// window edge is excluded; only whole trips are reported. No match is an
// empty slice, not an error.
func (s *Selector) SelectRoutes(vehicleID uint, utcStart, utcEnd time.Time) ([]models.Route, error) {
	var routes []models.Route
	err := s.db.
		Where("vehicle_id = ? AND start_time >= ? AND end_time <= ?", vehicleID, utcStart, utcEnd).
		Order("start_time asc").
		Find(&routes).Error
	return routes, err
}

// SamplesForRoute joins the route's samples at query time: all samples of
// the same vehicle whose timestamp falls inside the route window, ascending.
// Routes may overlap, so a sample can belong to more than one route.
func (s *Selector) SamplesForRoute(route *models.Route) ([]models.GPSSample, error) {
	return s.store.SamplesInRange(route.VehicleID, route.StartTime, route.EndTime)
}
