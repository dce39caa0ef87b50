// Package exportbundle serializes an enterprise's telemetry graph
// (enterprise -> vehicles -> routes -> samples) to a portable JSON bundle
// and rebuilds it on import. Entities are keyed by their stable external
// UUIDs, never by storage ids, so a bundle can move between installations
// and re-import without duplicating rows.
package exportbundle

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fleet_park/internal/geo"
	"fleet_park/internal/models"
	"fleet_park/internal/telemetry"
)

var (
	ErrEnterpriseNotFound = errors.New("enterprise not found")
	ErrMissingExternalID  = errors.New("missing external identifier")
	ErrMalformedBundle    = errors.New("malformed bundle")
)

// ImportError reports which entity of a bundle failed, with enough context
// to fix and resubmit. It wraps ErrMissingExternalID, ErrMalformedBundle,
// or the model validation error that rejected the record.
type ImportError struct {
	Entity     string
	ExternalID string
	Err        error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("import %s %q: %v", e.Entity, e.ExternalID, e.Err)
}

func (e *ImportError) Unwrap() error { return e.Err }

// Bundle is the wire format. Nesting mirrors ownership: the enterprise
// owns vehicles, a vehicle owns routes, a route carries the samples
// selected by its window at export time. Locations are [lon, lat].
type Bundle struct {
	Enterprise EnterpriseRecord `json:"enterprise"`
	Vehicles   []VehicleRecord  `json:"vehicles"`
}

type EnterpriseRecord struct {
	ExternalID    uuid.UUID `json:"external_id"`
	Name          string    `json:"name"`
	City          string    `json:"city"`
	LocalTimezone string    `json:"local_timezone"`
}

type VehicleRecord struct {
	ExternalID       uuid.UUID     `json:"external_id"`
	VIN              string        `json:"vin"`
	Price            float64       `json:"price"`
	ReleaseYear      int           `json:"release_year"`
	Mileage          int           `json:"mileage"`
	Color            string        `json:"color"`
	TransmissionType string        `json:"transmission_type"`
	PurchaseDatetime time.Time     `json:"purchase_datetime"`
	Routes           []RouteRecord `json:"routes"`
}

type RouteRecord struct {
	ExternalID    uuid.UUID      `json:"external_id"`
	StartTime     time.Time      `json:"start_time"`
	EndTime       time.Time      `json:"end_time"`
	StartLocation []float64      `json:"start_location,omitempty"`
	EndLocation   []float64      `json:"end_location,omitempty"`
	GPSPoints     []SampleRecord `json:"gps_points"`
}

type SampleRecord struct {
	Timestamp time.Time `json:"timestamp"`
	Location  []float64 `json:"location"`
}

// ImportSummary counts what an import actually did, per entity kind.
type ImportSummary struct {
	EnterprisesCreated int `json:"enterprises_created"`
	EnterprisesUpdated int `json:"enterprises_updated"`
	VehiclesCreated    int `json:"vehicles_created"`
	VehiclesUpdated    int `json:"vehicles_updated"`
	RoutesCreated      int `json:"routes_created"`
	RoutesUpdated      int `json:"routes_updated"`
	SamplesCreated     int `json:"samples_created"`
	SamplesSkipped     int `json:"samples_skipped"`
}

type Codec struct {
	db       *gorm.DB
	selector *telemetry.Selector
}

func NewCodec(db *gorm.DB) *Codec {
	return &Codec{db: db, selector: telemetry.NewSelector(db)}
}

// Export builds the bundle for one enterprise: every vehicle, each
// vehicle's routes fully contained in [utcStart, utcEnd], and each route's
// samples in window order. Only external identifiers are emitted.
func (c *Codec) Export(enterpriseID uint, utcStart, utcEnd time.Time) (*Bundle, error) {
	var enterprise models.Enterprise
	if err := c.db.First(&enterprise, enterpriseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEnterpriseNotFound
		}
		return nil, err
	}

	bundle := &Bundle{
		Enterprise: EnterpriseRecord{
			ExternalID:    enterprise.ExternalID,
			Name:          enterprise.Name,
			City:          enterprise.City,
			LocalTimezone: enterprise.LocalTimezone,
		},
	}

	var vehicles []models.Vehicle
	if err := c.db.Where("enterprise_id = ?", enterprise.ID).Order("id asc").Find(&vehicles).Error; err != nil {
		return nil, err
	}

	for _, vehicle := range vehicles {
		record := VehicleRecord{
			ExternalID:       vehicle.ExternalID,
			VIN:              vehicle.VIN,
			Price:            vehicle.Price,
			ReleaseYear:      vehicle.ReleaseYear,
			Mileage:          vehicle.Mileage,
			Color:            vehicle.Color,
			TransmissionType: vehicle.TransmissionType,
			PurchaseDatetime: vehicle.PurchaseDatetime.UTC(),
			Routes:           []RouteRecord{},
		}

		routes, err := c.selector.SelectRoutes(vehicle.ID, utcStart, utcEnd)
		if err != nil {
			return nil, err
		}
		for i := range routes {
			routeRecord, err := c.exportRoute(&routes[i])
			if err != nil {
				return nil, err
			}
			record.Routes = append(record.Routes, *routeRecord)
		}
		bundle.Vehicles = append(bundle.Vehicles, record)
	}
	return bundle, nil
}

func (c *Codec) exportRoute(route *models.Route) (*RouteRecord, error) {
	record := RouteRecord{
		ExternalID: route.ExternalID,
		StartTime:  route.StartTime.UTC(),
		EndTime:    route.EndTime.UTC(),
		GPSPoints:  []SampleRecord{},
	}

	if lon, lat, ok, err := geo.PointFromWKB(route.StartPoint); err != nil {
		return nil, err
	} else if ok {
		record.StartLocation = []float64{lon, lat}
	}
	if lon, lat, ok, err := geo.PointFromWKB(route.EndPoint); err != nil {
		return nil, err
	} else if ok {
		record.EndLocation = []float64{lon, lat}
	}

	samples, err := c.selector.SamplesForRoute(route)
	if err != nil {
		return nil, err
	}
	for _, sample := range samples {
		record.GPSPoints = append(record.GPSPoints, SampleRecord{
			Timestamp: sample.Timestamp.UTC(),
			Location:  []float64{sample.Longitude, sample.Latitude},
		})
	}
	return &record, nil
}

// Import rebuilds the bundle's graph inside one transaction. Entities are
// upserted by external id (re-importing an unchanged bundle changes
// nothing); samples dedupe on (vehicle, timestamp) since they carry no
// external id of their own. Any failure rolls the whole bundle back.
func (c *Codec) Import(bundle *Bundle) (*ImportSummary, error) {
	summary := &ImportSummary{}

	txErr := c.db.Transaction(func(tx *gorm.DB) error {
		enterpriseID, err := importEnterprise(tx, &bundle.Enterprise, summary)
		if err != nil {
			return err
		}
		for i := range bundle.Vehicles {
			vehicleID, err := importVehicle(tx, enterpriseID, &bundle.Vehicles[i], summary)
			if err != nil {
				return err
			}
			for j := range bundle.Vehicles[i].Routes {
				if err := importRoute(tx, vehicleID, &bundle.Vehicles[i].Routes[j], summary); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return summary, nil
}

func importEnterprise(tx *gorm.DB, record *EnterpriseRecord, summary *ImportSummary) (uint, error) {
	if record.ExternalID == uuid.Nil {
		return 0, &ImportError{Entity: "enterprise", Err: ErrMissingExternalID}
	}

	var enterprise models.Enterprise
	err := tx.Where("external_id = ?", record.ExternalID).First(&enterprise).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		enterprise = models.Enterprise{
			Name:          record.Name,
			City:          record.City,
			LocalTimezone: record.LocalTimezone,
			ExternalID:    record.ExternalID,
		}
		if err := tx.Create(&enterprise).Error; err != nil {
			return 0, wrapEnterpriseWrite(record, err)
		}
		summary.EnterprisesCreated++
	case err != nil:
		return 0, err
	default:
		enterprise.Name = record.Name
		enterprise.City = record.City
		enterprise.LocalTimezone = record.LocalTimezone
		if err := tx.Save(&enterprise).Error; err != nil {
			return 0, wrapEnterpriseWrite(record, err)
		}
		summary.EnterprisesUpdated++
	}
	return enterprise.ID, nil
}

// wrapEnterpriseWrite keeps model validation failures (a bad timezone in
// the bundle) inside the ImportError contract so callers get the entity
// and external id instead of a bare storage error.
func wrapEnterpriseWrite(record *EnterpriseRecord, err error) error {
	if errors.Is(err, models.ErrInvalidTimezone) {
		return &ImportError{Entity: "enterprise", ExternalID: record.ExternalID.String(), Err: err}
	}
	return err
}

func importVehicle(tx *gorm.DB, enterpriseID uint, record *VehicleRecord, summary *ImportSummary) (uint, error) {
	if record.ExternalID == uuid.Nil {
		return 0, &ImportError{Entity: "vehicle", Err: ErrMissingExternalID}
	}

	var vehicle models.Vehicle
	err := tx.Where("external_id = ?", record.ExternalID).First(&vehicle).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		vehicle = models.Vehicle{
			VIN:              record.VIN,
			Price:            record.Price,
			ReleaseYear:      record.ReleaseYear,
			Mileage:          record.Mileage,
			Color:            record.Color,
			TransmissionType: record.TransmissionType,
			EnterpriseID:     enterpriseID,
			PurchaseDatetime: record.PurchaseDatetime,
			ExternalID:       record.ExternalID,
		}
		if err := tx.Create(&vehicle).Error; err != nil {
			return 0, err
		}
		summary.VehiclesCreated++
	case err != nil:
		return 0, err
	default:
		// An existing vehicle must stay under its enterprise; a bundle
		// that re-parents it is referentially broken.
		if vehicle.EnterpriseID != enterpriseID {
			return 0, &ImportError{
				Entity:     "vehicle",
				ExternalID: record.ExternalID.String(),
				Err:        ErrMalformedBundle,
			}
		}
		vehicle.VIN = record.VIN
		vehicle.Price = record.Price
		vehicle.ReleaseYear = record.ReleaseYear
		vehicle.Mileage = record.Mileage
		vehicle.Color = record.Color
		vehicle.TransmissionType = record.TransmissionType
		vehicle.PurchaseDatetime = record.PurchaseDatetime
		if err := tx.Save(&vehicle).Error; err != nil {
			return 0, err
		}
		summary.VehiclesUpdated++
	}
	return vehicle.ID, nil
}

func importRoute(tx *gorm.DB, vehicleID uint, record *RouteRecord, summary *ImportSummary) error {
	if record.ExternalID == uuid.Nil {
		return &ImportError{Entity: "route", Err: ErrMissingExternalID}
	}

	startPoint, err := locationToWKB(record.StartLocation, "route", record.ExternalID)
	if err != nil {
		return err
	}
	endPoint, err := locationToWKB(record.EndLocation, "route", record.ExternalID)
	if err != nil {
		return err
	}

	var route models.Route
	err = tx.Where("external_id = ?", record.ExternalID).First(&route).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		route = models.Route{
			VehicleID:  vehicleID,
			StartTime:  record.StartTime,
			EndTime:    record.EndTime,
			StartPoint: startPoint,
			EndPoint:   endPoint,
			ExternalID: record.ExternalID,
		}
		if err := tx.Create(&route).Error; err != nil {
			return err
		}
		summary.RoutesCreated++
	case err != nil:
		return err
	default:
		if route.VehicleID != vehicleID {
			return &ImportError{
				Entity:     "route",
				ExternalID: record.ExternalID.String(),
				Err:        ErrMalformedBundle,
			}
		}
		route.StartTime = record.StartTime
		route.EndTime = record.EndTime
		route.StartPoint = startPoint
		route.EndPoint = endPoint
		if err := tx.Save(&route).Error; err != nil {
			return err
		}
		summary.RoutesUpdated++
	}

	return importSamples(tx, vehicleID, record, summary)
}

func importSamples(tx *gorm.DB, vehicleID uint, record *RouteRecord, summary *ImportSummary) error {
	for _, point := range record.GPSPoints {
		if len(point.Location) != 2 {
			return &ImportError{
				Entity:     "gps_point",
				ExternalID: record.ExternalID.String(),
				Err:        ErrMalformedBundle,
			}
		}

		var n int64
		if err := tx.Model(&models.GPSSample{}).
			Where("vehicle_id = ? AND timestamp = ?", vehicleID, point.Timestamp).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			summary.SamplesSkipped++
			continue
		}
		sample := models.GPSSample{
			VehicleID: vehicleID,
			Timestamp: point.Timestamp,
			Longitude: point.Location[0],
			Latitude:  point.Location[1],
		}
		if err := tx.Create(&sample).Error; err != nil {
			return err
		}
		summary.SamplesCreated++
	}
	return nil
}

func locationToWKB(location []float64, entity string, externalID uuid.UUID) ([]byte, error) {
	if location == nil {
		return nil, nil
	}
	if len(location) != 2 {
		return nil, &ImportError{Entity: entity, ExternalID: externalID.String(), Err: ErrMalformedBundle}
	}
	return geo.PointToWKB(location[0], location[1])
}

// WriteSamplesCSV streams every sample of the vehicle as CSV rows of
// (timestamp, longitude, latitude), oldest first.
func (c *Codec) WriteSamplesCSV(w io.Writer, vehicleID uint) error {
	samples, err := telemetry.NewStore(c.db).AllSamples(vehicleID)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"timestamp", "longitude", "latitude"}); err != nil {
		return err
	}
	for _, sample := range samples {
		row := []string{
			sample.Timestamp.UTC().Format(time.RFC3339Nano),
			strconv.FormatFloat(sample.Longitude, 'f', -1, 64),
			strconv.FormatFloat(sample.Latitude, 'f', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
