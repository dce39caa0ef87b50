// Package mileage walks a vehicle's ordered GPS samples and buckets
// point-to-point great-circle distance by day, month or year.
package mileage

import (
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"

	"fleet_park/internal/geo"
	"fleet_park/internal/models"
	"fleet_park/internal/telemetry"
)

const (
	PeriodDay   = "day"
	PeriodMonth = "month"
	PeriodYear  = "year"
)

var ErrVehicleNotFound = errors.New("vehicle not found")

// PeriodKey derives the bucket label for a timestamp. Unknown period
// values fall back to day keys.
func PeriodKey(t time.Time, period string) string {
	t = t.UTC()
	switch period {
	case PeriodMonth:
		return t.Format("2006-01")
	case PeriodYear:
		return t.Format("2006")
	default:
		return t.Format("2006-01-02")
	}
}

type Aggregator struct {
	db    *gorm.DB
	store *telemetry.Store
}

func NewAggregator(db *gorm.DB) *Aggregator {
	return &Aggregator{db: db, store: telemetry.NewStore(db)}
}

// Aggregate sums haversine distance over consecutive sample pairs whose
// timestamps fall on dates within [dateStart, dateEnd], keyed by the
// period key of each pair's second point (the destination of the
// movement). The first sample in range has no predecessor and contributes
// nothing. Zero or one sample yields an empty mapping. Distances stay
// unrounded floating-point kilometers; formatting is the caller's concern.
func (a *Aggregator) Aggregate(vehicleID uint, dateStart, dateEnd time.Time, period string) (map[string]float64, error) {
	var vehicle models.Vehicle
	if err := a.db.Select("id").First(&vehicle, vehicleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVehicleNotFound
		}
		return nil, err
	}

	utcStart := dayFloor(dateStart)
	utcEnd := dayFloor(dateEnd).Add(24*time.Hour - time.Nanosecond)

	samples, err := a.store.SamplesInRange(vehicleID, utcStart, utcEnd)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]float64)
	for i := 1; i < len(samples); i++ {
		prev, curr := samples[i-1], samples[i]
		delta := geo.DistanceKm(prev.Latitude, prev.Longitude, curr.Latitude, curr.Longitude)
		totals[PeriodKey(curr.Timestamp, period)] += delta
	}
	return totals, nil
}

// Snapshot runs Aggregate and persists the result as a MileageReport row.
// Snapshots are never refreshed; a later run writes a new row.
func (a *Aggregator) Snapshot(vehicleID uint, dateStart, dateEnd time.Time, period string) (*models.MileageReport, map[string]float64, error) {
	totals, err := a.Aggregate(vehicleID, dateStart, dateEnd, period)
	if err != nil {
		return nil, nil, err
	}

	raw, err := json.Marshal(totals)
	if err != nil {
		return nil, nil, err
	}
	report := models.MileageReport{
		VehicleID: vehicleID,
		DateStart: dayFloor(dateStart),
		DateEnd:   dayFloor(dateEnd),
		Period:    period,
		Result:    raw,
	}
	if err := a.db.Create(&report).Error; err != nil {
		return nil, nil, err
	}
	return &report, totals, nil
}

func dayFloor(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
