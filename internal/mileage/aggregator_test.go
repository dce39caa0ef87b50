package mileage

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"fleet_park/internal/models"
	"fleet_park/internal/telemetry"
	"fleet_park/internal/testsupport"
)

func seedVehicle(t *testing.T, db *gorm.DB) *models.Vehicle {
	t.Helper()
	enterprise := models.Enterprise{Name: "Taxi Nord", City: "Moscow", LocalTimezone: "Europe/Moscow"}
	require.NoError(t, db.Create(&enterprise).Error)
	vehicle := models.Vehicle{VIN: "XTA210600N0000001", EnterpriseID: enterprise.ID}
	require.NoError(t, db.Create(&vehicle).Error)
	return &vehicle
}

func TestPeriodKey(t *testing.T) {
	ts := time.Date(2024, 6, 1, 11, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-06-01", PeriodKey(ts, PeriodDay))
	assert.Equal(t, "2024-06", PeriodKey(ts, PeriodMonth))
	assert.Equal(t, "2024", PeriodKey(ts, PeriodYear))
	assert.Equal(t, "2024-06-01", PeriodKey(ts, "whatever"))
}

func TestAggregateEmptyAndSingleSample(t *testing.T) {
	db := testsupport.OpenTestDB(t)
	vehicle := seedVehicle(t, db)
	aggregator := NewAggregator(db)

	dateStart := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	dateEnd := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

	totals, err := aggregator.Aggregate(vehicle.ID, dateStart, dateEnd, PeriodDay)
	require.NoError(t, err)
	assert.Empty(t, totals)

	_, err = telemetry.NewStore(db).Append(vehicle.ID, time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC), 55.0, 37.0)
	require.NoError(t, err)

	totals, err = aggregator.Aggregate(vehicle.ID, dateStart, dateEnd, PeriodDay)
	require.NoError(t, err)
	assert.Empty(t, totals)
}

func TestAggregateTwoSamplesOneBucket(t *testing.T) {
	db := testsupport.OpenTestDB(t)
	vehicle := seedVehicle(t, db)
	store := telemetry.NewStore(db)

	t0 := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	_, err := store.Append(vehicle.ID, t0, 55.0, 37.0)
	require.NoError(t, err)
	_, err = store.Append(vehicle.ID, t0.Add(time.Hour), 55.1, 37.0)
	require.NoError(t, err)

	totals, err := NewAggregator(db).Aggregate(vehicle.ID,
		time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		PeriodDay)
	require.NoError(t, err)

	// One bucket, keyed by the second sample's date, holding the
	// haversine distance between the two points.
	require.Len(t, totals, 1)
	assert.InDelta(t, 11.1, totals["2024-06-01"], 0.1)
}

func TestAggregateKeysByDestinationSample(t *testing.T) {
	db := testsupport.OpenTestDB(t)
	vehicle := seedVehicle(t, db)
	store := telemetry.NewStore(db)

	// A pair straddling midnight: the delta lands on the second day.
	_, err := store.Append(vehicle.ID, time.Date(2024, 6, 1, 23, 50, 0, 0, time.UTC), 55.0, 37.0)
	require.NoError(t, err)
	_, err = store.Append(vehicle.ID, time.Date(2024, 6, 2, 0, 10, 0, 0, time.UTC), 55.1, 37.0)
	require.NoError(t, err)

	totals, err := NewAggregator(db).Aggregate(vehicle.ID,
		time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC),
		PeriodDay)
	require.NoError(t, err)

	require.Len(t, totals, 1)
	_, ok := totals["2024-06-02"]
	assert.True(t, ok)
}

func TestAggregateMonthAndYearBuckets(t *testing.T) {
	db := testsupport.OpenTestDB(t)
	vehicle := seedVehicle(t, db)
	store := telemetry.NewStore(db)

	times := []time.Time{
		time.Date(2024, 5, 31, 10, 0, 0, 0, time.UTC),
		time.Date(2024, 5, 31, 11, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
	}
	lats := []float64{55.0, 55.1, 55.2}
	for i, ts := range times {
		_, err := store.Append(vehicle.ID, ts, lats[i], 37.0)
		require.NoError(t, err)
	}

	dateStart := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	dateEnd := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

	totals, err := NewAggregator(db).Aggregate(vehicle.ID, dateStart, dateEnd, PeriodMonth)
	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.InDelta(t, 11.1, totals["2024-05"], 0.1)
	assert.InDelta(t, 11.1, totals["2024-06"], 0.1)

	totals, err = NewAggregator(db).Aggregate(vehicle.ID, dateStart, dateEnd, PeriodYear)
	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.InDelta(t, 22.2, totals["2024"], 0.2)
}

func TestAggregateDateRangeFiltersSamples(t *testing.T) {
	db := testsupport.OpenTestDB(t)
	vehicle := seedVehicle(t, db)
	store := telemetry.NewStore(db)

	// Only the middle pair falls inside the requested dates.
	times := []time.Time{
		time.Date(2024, 5, 30, 10, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 1, 11, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC),
	}
	lats := []float64{54.8, 55.0, 55.1, 55.3}
	for i, ts := range times {
		_, err := store.Append(vehicle.ID, ts, lats[i], 37.0)
		require.NoError(t, err)
	}

	totals, err := NewAggregator(db).Aggregate(vehicle.ID,
		time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		PeriodDay)
	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.InDelta(t, 11.1, totals["2024-06-01"], 0.1)
}

func TestAggregateInvertedRangeIsEmpty(t *testing.T) {
	db := testsupport.OpenTestDB(t)
	vehicle := seedVehicle(t, db)
	store := telemetry.NewStore(db)

	_, err := store.Append(vehicle.ID, time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC), 55.0, 37.0)
	require.NoError(t, err)
	_, err = store.Append(vehicle.ID, time.Date(2024, 6, 1, 11, 0, 0, 0, time.UTC), 55.1, 37.0)
	require.NoError(t, err)

	totals, err := NewAggregator(db).Aggregate(vehicle.ID,
		time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		PeriodDay)
	require.NoError(t, err)
	assert.Empty(t, totals)
}

func TestAggregateUnknownVehicle(t *testing.T) {
	db := testsupport.OpenTestDB(t)
	seedVehicle(t, db)

	_, err := NewAggregator(db).Aggregate(9999,
		time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC),
		PeriodDay)
	assert.ErrorIs(t, err, ErrVehicleNotFound)
}

func TestSnapshotPersistsReport(t *testing.T) {
	db := testsupport.OpenTestDB(t)
	vehicle := seedVehicle(t, db)
	store := telemetry.NewStore(db)

	t0 := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	_, err := store.Append(vehicle.ID, t0, 55.0, 37.0)
	require.NoError(t, err)
	_, err = store.Append(vehicle.ID, t0.Add(time.Hour), 55.1, 37.0)
	require.NoError(t, err)

	report, totals, err := NewAggregator(db).Snapshot(vehicle.ID,
		time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		PeriodDay)
	require.NoError(t, err)
	require.NotZero(t, report.ID)

	var stored models.MileageReport
	require.NoError(t, db.First(&stored, report.ID).Error)
	assert.Equal(t, PeriodDay, stored.Period)

	decoded := map[string]float64{}
	require.NoError(t, json.Unmarshal(stored.Result, &decoded))
	assert.Equal(t, totals, decoded)
}
