// Package trackgen synthesizes a plausible GPS trail for a vehicle: pick a
// random bearing, solve the direct geodesic for the trip's end point, fetch
// a driving path between the two (or walk one synthetically when no path
// service is available), then append the points through the telemetry store
// with jittered pseudo-time.
package trackgen

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"fleet_park/internal/geo"
	"fleet_park/internal/telemetry"
)

var ErrInvalidDistance = errors.New("track distance must be positive")

// PathSource resolves a driving path between two points as [lon, lat]
// coordinate pairs. geocode.Client satisfies it.
type PathSource interface {
	Directions(ctx context.Context, startLon, startLat, endLon, endLat float64) ([][]float64, error)
}

// Options shape one generated track. Zero values fall back to the
// defaults below.
type Options struct {
	StartLat   float64
	StartLon   float64
	DistanceKm float64 // trip length, default 5
	DelaySec   float64 // base seconds between points, jittered x0.5..x1.5, default 10
	StepKm     float64 // synthetic-walk step when no path source answers, default 0.1
	Seed       int64   // 0 seeds from the clock
	StartTime  time.Time
}

// Track summarizes what Generate wrote.
type Track struct {
	Samples    int       `json:"samples"`
	BearingDeg float64   `json:"bearing_deg"`
	EndLat     float64   `json:"end_lat"`
	EndLon     float64   `json:"end_lon"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
}

type Generator struct {
	store  *telemetry.Store
	source PathSource
}

// NewGenerator builds a generator over the given database. source may be
// nil; the synthetic walk then always supplies the path.
func NewGenerator(db *gorm.DB, source PathSource) *Generator {
	return &Generator{store: telemetry.NewStore(db), source: source}
}

// Generate appends one synthetic track for the vehicle and reports what it
// wrote. The path comes from the source when one answers; otherwise the
// walk below fills in. Unknown vehicles fail with
// telemetry.ErrVehicleNotFound.
func (g *Generator) Generate(ctx context.Context, vehicleID uint, opts Options) (*Track, error) {
	if opts.DistanceKm == 0 {
		opts.DistanceKm = 5
	}
	if opts.DistanceKm < 0 {
		return nil, ErrInvalidDistance
	}
	if opts.DelaySec <= 0 {
		opts.DelaySec = 10
	}
	if opts.StepKm <= 0 {
		opts.StepKm = 0.1
	}
	if opts.StartTime.IsZero() {
		opts.StartTime = time.Now().UTC()
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	bearing := rng.Float64() * 360
	endLat, endLon := geo.Destination(opts.StartLat, opts.StartLon, bearing, opts.DistanceKm)

	coords := g.resolvePath(ctx, rng, opts, endLat, endLon)

	current := opts.StartTime
	track := &Track{BearingDeg: bearing, EndLat: endLat, EndLon: endLon, StartTime: opts.StartTime}
	for _, point := range coords {
		jitter := opts.DelaySec * (0.5 + rng.Float64())
		current = current.Add(time.Duration(jitter * float64(time.Second)))
		if _, err := g.store.Append(vehicleID, current, point[1], point[0]); err != nil {
			return nil, err
		}
		track.Samples++
		track.EndTime = current
	}
	return track, nil
}

func (g *Generator) resolvePath(ctx context.Context, rng *rand.Rand, opts Options, endLat, endLon float64) [][]float64 {
	if g.source != nil {
		coords, err := g.source.Directions(ctx, opts.StartLon, opts.StartLat, endLon, endLat)
		if err == nil && len(coords) > 0 {
			return coords
		}
		if err != nil {
			logrus.WithError(err).Warn("trackgen: path lookup failed, walking synthetically")
		}
	}
	return syntheticWalk(rng, opts, endLat, endLon)
}

// syntheticWalk steps from the start toward the end point, re-aiming each
// step at the destination with a little bearing jitter so the trail wanders
// like a street route instead of a ruler line.
func syntheticWalk(rng *rand.Rand, opts Options, endLat, endLon float64) [][]float64 {
	steps := int(math.Ceil(opts.DistanceKm / opts.StepKm))
	lat, lon := opts.StartLat, opts.StartLon
	coords := [][]float64{{lon, lat}}
	for i := 0; i < steps; i++ {
		heading := geo.Bearing(lat, lon, endLat, endLon) + (rng.Float64()-0.5)*30
		lat, lon = geo.Destination(lat, lon, heading, opts.StepKm)
		coords = append(coords, []float64{lon, lat})
	}
	return coords
}
