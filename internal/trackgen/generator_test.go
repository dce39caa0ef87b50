package trackgen

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"fleet_park/internal/geo"
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

type stubPath struct {
	coords [][]float64
	err    error
	calls  int
}

func (s *stubPath) Directions(ctx context.Context, startLon, startLat, endLon, endLat float64) ([][]float64, error) {
	s.calls++
	return s.coords, s.err
}

func TestGenerateSyntheticWalk(t *testing.T) {
	db := testsupport.OpenTestDB(t)
	vehicle := seedVehicle(t, db)

	opts := Options{
		StartLat:   55.7558,
		StartLon:   37.6173,
		DistanceKm: 1,
		StepKm:     0.25,
		DelaySec:   10,
		Seed:       42,
		StartTime:  time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
	}
	track, err := NewGenerator(db, nil).Generate(context.Background(), vehicle.ID, opts)
	require.NoError(t, err)

	// ceil(1/0.25) steps plus the start point.
	assert.Equal(t, 5, track.Samples)
	assert.True(t, track.EndTime.After(track.StartTime))

	samples, err := telemetry.NewStore(db).AllSamples(vehicle.ID)
	require.NoError(t, err)
	require.Len(t, samples, 5)

	for i := 1; i < len(samples); i++ {
		// Every hop covers exactly one step of ground.
		hop := geo.DistanceKm(samples[i-1].Latitude, samples[i-1].Longitude,
			samples[i].Latitude, samples[i].Longitude)
		assert.InDelta(t, 0.25, hop, 1e-6)

		// Pseudo-time moves forward by a jittered delay.
		gap := samples[i].Timestamp.Sub(samples[i-1].Timestamp)
		assert.Greater(t, gap, time.Duration(0))
		assert.GreaterOrEqual(t, gap, 5*time.Second)
		assert.LessOrEqual(t, gap, 15*time.Second)
	}

	assert.Equal(t, samples[0].Latitude, opts.StartLat)
	assert.Equal(t, samples[0].Longitude, opts.StartLon)
}

func TestGenerateIsDeterministicPerSeed(t *testing.T) {
	opts := Options{StartLat: 55.0, StartLon: 37.0, DistanceKm: 1, StepKm: 0.5, Seed: 7,
		StartTime: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)}

	var trails [2][]models.GPSSample
	for i := range trails {
		db := testsupport.OpenTestDB(t)
		vehicle := seedVehicle(t, db)
		_, err := NewGenerator(db, nil).Generate(context.Background(), vehicle.ID, opts)
		require.NoError(t, err)
		trails[i], err = telemetry.NewStore(db).AllSamples(vehicle.ID)
		require.NoError(t, err)
	}

	require.Equal(t, len(trails[0]), len(trails[1]))
	for i := range trails[0] {
		assert.Equal(t, trails[0][i].Latitude, trails[1][i].Latitude)
		assert.Equal(t, trails[0][i].Longitude, trails[1][i].Longitude)
	}
}

func TestGenerateFollowsPathSource(t *testing.T) {
	db := testsupport.OpenTestDB(t)
	vehicle := seedVehicle(t, db)

	source := &stubPath{coords: [][]float64{
		{37.6173, 55.7558},
		{37.6200, 55.7570},
		{37.6250, 55.7590},
	}}
	track, err := NewGenerator(db, source).Generate(context.Background(), vehicle.ID, Options{
		StartLat: 55.7558, StartLon: 37.6173, DistanceKm: 2, Seed: 1,
		StartTime: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, source.calls)
	assert.Equal(t, 3, track.Samples)

	samples, err := telemetry.NewStore(db).AllSamples(vehicle.ID)
	require.NoError(t, err)
	require.Len(t, samples, 3)
	// Coordinates ride as [lon, lat] and land as (lat, lon).
	assert.Equal(t, 55.7570, samples[1].Latitude)
	assert.Equal(t, 37.6200, samples[1].Longitude)
}

func TestGenerateFallsBackWhenSourceFails(t *testing.T) {
	db := testsupport.OpenTestDB(t)
	vehicle := seedVehicle(t, db)

	source := &stubPath{err: errors.New("service unreachable")}
	track, err := NewGenerator(db, source).Generate(context.Background(), vehicle.ID, Options{
		StartLat: 55.0, StartLon: 37.0, DistanceKm: 1, StepKm: 0.5, Seed: 3,
		StartTime: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, source.calls)
	assert.Equal(t, 3, track.Samples) // 2 steps + start
}

func TestGenerateRejectsBadInput(t *testing.T) {
	db := testsupport.OpenTestDB(t)
	vehicle := seedVehicle(t, db)
	generator := NewGenerator(db, nil)

	_, err := generator.Generate(context.Background(), vehicle.ID, Options{DistanceKm: -1})
	assert.ErrorIs(t, err, ErrInvalidDistance)

	_, err = generator.Generate(context.Background(), 9999, Options{DistanceKm: 1, StepKm: 0.5, Seed: 1})
	assert.ErrorIs(t, err, telemetry.ErrVehicleNotFound)
}
