// Package telemetry stores raw GPS samples and selects trip routes over
// them. Samples are an append-only log per vehicle; routes are UTC windows
// that bind samples at query time, never through a stored relation.
package telemetry

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"fleet_park/internal/models"
)

var ErrVehicleNotFound = errors.New("vehicle not found")

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Append writes one sample for the vehicle. Samples are immutable once
// written; there is no update path.
func (s *Store) Append(vehicleID uint, timestamp time.Time, lat, lon float64) (*models.GPSSample, error) {
	if err := s.requireVehicle(vehicleID); err != nil {
		return nil, err
	}
	sample := models.GPSSample{
		VehicleID: vehicleID,
		Timestamp: timestamp.UTC(),
		Latitude:  lat,
		Longitude: lon,
	}
	if err := s.db.Create(&sample).Error; err != nil {
		return nil, err
	}
	return &sample, nil
}

// SamplesInRange returns the vehicle's samples with
// utcStart <= timestamp <= utcEnd, ascending by timestamp. Insertion order
// does not matter; ordering comes from the query.
func (s *Store) SamplesInRange(vehicleID uint, utcStart, utcEnd time.Time) ([]models.GPSSample, error) {
	var samples []models.GPSSample
	err := s.db.
		Where("vehicle_id = ? AND timestamp >= ? AND timestamp <= ?", vehicleID, utcStart, utcEnd).
		Order("timestamp asc").
		Find(&samples).Error
	return samples, err
}

// AllSamples returns every sample of the vehicle, ascending by timestamp.
func (s *Store) AllSamples(vehicleID uint) ([]models.GPSSample, error) {
	var samples []models.GPSSample
	err := s.db.
		Where("vehicle_id = ?", vehicleID).
		Order("timestamp asc").
		Find(&samples).Error
	return samples, err
}

func (s *Store) requireVehicle(vehicleID uint) error {
	var vehicle models.Vehicle
	if err := s.db.Select("id").First(&vehicle, vehicleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrVehicleNotFound
		}
		return err
	}
	return nil
}
