// Command generate_track seeds the database with a synthetic GPS trail for
// one vehicle. Useful for demoing route selection and mileage reports
// without live telemetry.
//
//	generate_track -vehicle 1 -distance 5 -start-lat 55.7558 -start-lng 37.6173 -delay 10
package main

import (
	"context"
	"flag"
	"log"

	"fleet_park/internal/config"
	"fleet_park/internal/geocode"
	"fleet_park/internal/trackgen"
)

func main() {
	vehicleID := flag.Uint("vehicle", 0, "vehicle id to generate a track for")
	distance := flag.Float64("distance", 5, "track length in km")
	startLat := flag.Float64("start-lat", 55.7558, "start latitude")
	startLng := flag.Float64("start-lng", 37.6173, "start longitude")
	delay := flag.Float64("delay", 10, "base seconds between points (jittered)")
	seed := flag.Int64("seed", 0, "rng seed, 0 uses the clock")
	flag.Parse()

	if *vehicleID == 0 {
		log.Fatal("-vehicle is required")
	}

	config.InitDB()

	// With an ORS key the track follows real roads; without one the
	// generator walks the geodesic itself.
	var source trackgen.PathSource
	if key := config.ORSAPIKey(); key != "" {
		source = geocode.NewClient(key)
	}

	track, err := trackgen.NewGenerator(config.DB, source).Generate(context.Background(), *vehicleID, trackgen.Options{
		StartLat:   *startLat,
		StartLon:   *startLng,
		DistanceKm: *distance,
		DelaySec:   *delay,
		Seed:       *seed,
	})
	if err != nil {
		log.Fatalf("generating track: %v", err)
	}

	log.Printf("wrote %d samples for vehicle %d (bearing %.1f°, end %.5f,%.5f, %s .. %s)",
		track.Samples, *vehicleID, track.BearingDeg, track.EndLat, track.EndLon,
		track.StartTime.Format("15:04:05"), track.EndTime.Format("15:04:05"))
}
