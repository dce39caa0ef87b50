// Package geo holds the spherical-earth math used by mileage aggregation
// and track generation, plus WKB/GeoJSON point codecs for geometry columns.
package geo

import (
	"encoding/binary"
	"math"

	"github.com/twpayne/go-geom"
	gjson "github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/encoding/wkb"
)

// EarthRadiusKm is the mean Earth radius used by all great-circle math.
const EarthRadiusKm = 6371.0

// DistanceKm returns the great-circle (haversine) distance in kilometers
// between two points.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// Bearing returns the initial bearing (degrees, 0..360) from the first
// point to the second.
func Bearing(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := toRadians(lat1)
	lat2Rad := toRadians(lat2)
	deltaLon := toRadians(lon2 - lon1)

	y := math.Sin(deltaLon) * math.Cos(lat2Rad)
	x := math.Cos(lat1Rad)*math.Sin(lat2Rad) -
		math.Sin(lat1Rad)*math.Cos(lat2Rad)*math.Cos(deltaLon)

	return math.Mod(toDegrees(math.Atan2(y, x))+360, 360)
}

// Destination solves the direct geodesic problem: the point reached by
// travelling distanceKm from (lat, lon) along the given bearing.
func Destination(lat, lon, bearingDeg, distanceKm float64) (destLat, destLon float64) {
	latRad := toRadians(lat)
	lonRad := toRadians(lon)
	bearingRad := toRadians(bearingDeg)
	distFrac := distanceKm / EarthRadiusKm

	lat2 := math.Asin(math.Sin(latRad)*math.Cos(distFrac) +
		math.Cos(latRad)*math.Sin(distFrac)*math.Cos(bearingRad))
	lon2 := lonRad + math.Atan2(
		math.Sin(bearingRad)*math.Sin(distFrac)*math.Cos(latRad),
		math.Cos(distFrac)-math.Sin(latRad)*math.Sin(lat2),
	)

	return toDegrees(lat2), toDegrees(lon2)
}

// PointToWKB encodes a lon/lat pair as a little-endian WKB point
// (SRID 4326 by convention of the geometry columns).
func PointToWKB(lon, lat float64) ([]byte, error) {
	p := geom.NewPointFlat(geom.XY, []float64{lon, lat})
	return wkb.Marshal(p, binary.LittleEndian)
}

// PointFromWKB decodes a WKB point back into a lon/lat pair. The second
// return value is false for empty input.
func PointFromWKB(raw []byte) (lon, lat float64, ok bool, err error) {
	if len(raw) == 0 {
		return 0, 0, false, nil
	}
	g, err := wkb.Unmarshal(raw)
	if err != nil {
		return 0, 0, false, err
	}
	p, isPoint := g.(*geom.Point)
	if !isPoint {
		return 0, 0, false, nil
	}
	c := p.Coords()
	return c.X(), c.Y(), true, nil
}

// PointToGeoJSON renders a WKB point as a GeoJSON string for API output.
// Empty input yields an empty string.
func PointToGeoJSON(raw []byte) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}
	g, err := wkb.Unmarshal(raw)
	if err != nil {
		return "", err
	}
	b, err := gjson.Marshal(g)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

func toDegrees(rad float64) float64 {
	return rad * 180 / math.Pi
}
