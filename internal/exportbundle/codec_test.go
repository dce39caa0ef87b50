package exportbundle

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"fleet_park/internal/geo"
	"fleet_park/internal/models"
	"fleet_park/internal/telemetry"
	"fleet_park/internal/testsupport"
)

type fixture struct {
	enterprise models.Enterprise
	vehicles   []models.Vehicle
	route      models.Route
}

func seedGraph(t *testing.T, db *gorm.DB) fixture {
	t.Helper()

	enterprise := models.Enterprise{Name: "Taxi Nord", City: "Moscow", LocalTimezone: "Europe/Moscow"}
	require.NoError(t, db.Create(&enterprise).Error)

	vehicles := []models.Vehicle{
		{VIN: "XTA210600N0000001", Color: "white", Price: 900000, ReleaseYear: 2020, EnterpriseID: enterprise.ID, PurchaseDatetime: time.Date(2021, 3, 15, 12, 0, 0, 0, time.UTC)},
		{VIN: "XTA210600N0000002", Color: "red", Price: 1200000, ReleaseYear: 2022, EnterpriseID: enterprise.ID, PurchaseDatetime: time.Date(2023, 1, 10, 9, 0, 0, 0, time.UTC)},
	}
	require.NoError(t, db.Create(&vehicles).Error)

	startPoint, err := geo.PointToWKB(37.6173, 55.7558)
	require.NoError(t, err)
	endPoint, err := geo.PointToWKB(37.7, 55.8)
	require.NoError(t, err)

	route := models.Route{
		VehicleID:  vehicles[0].ID,
		StartTime:  time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
		EndTime:    time.Date(2024, 6, 1, 11, 0, 0, 0, time.UTC),
		StartPoint: startPoint,
		EndPoint:   endPoint,
	}
	require.NoError(t, db.Create(&route).Error)

	store := telemetry.NewStore(db)
	for i, offset := range []time.Duration{0, 20 * time.Minute, 40 * time.Minute, time.Hour} {
		_, err := store.Append(vehicles[0].ID, route.StartTime.Add(offset), 55.7558+float64(i)*0.01, 37.6173)
		require.NoError(t, err)
	}
	// Outside the route window; must not travel with the bundle.
	_, err = store.Append(vehicles[0].ID, route.EndTime.Add(time.Hour), 55.9, 37.6)
	require.NoError(t, err)

	return fixture{enterprise: enterprise, vehicles: vehicles, route: route}
}

func exportWindow() (time.Time, time.Time) {
	return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)
}

func TestExportShape(t *testing.T) {
	db := testsupport.OpenTestDB(t)
	fix := seedGraph(t, db)
	utcStart, utcEnd := exportWindow()

	bundle, err := NewCodec(db).Export(fix.enterprise.ID, utcStart, utcEnd)
	require.NoError(t, err)

	assert.Equal(t, fix.enterprise.ExternalID, bundle.Enterprise.ExternalID)
	assert.Equal(t, "Europe/Moscow", bundle.Enterprise.LocalTimezone)
	require.Len(t, bundle.Vehicles, 2)

	first := bundle.Vehicles[0]
	assert.Equal(t, fix.vehicles[0].ExternalID, first.ExternalID)
	require.Len(t, first.Routes, 1)
	assert.Equal(t, []float64{37.6173, 55.7558}, first.Routes[0].StartLocation)
	require.Len(t, first.Routes[0].GPSPoints, 4)
	// Samples ride as [lon, lat], oldest first.
	assert.Equal(t, []float64{37.6173, 55.7558}, first.Routes[0].GPSPoints[0].Location)

	// Vehicle without routes still exports, with an empty route list.
	assert.Empty(t, bundle.Vehicles[1].Routes)
}

func TestExportUnknownEnterprise(t *testing.T) {
	db := testsupport.OpenTestDB(t)
	utcStart, utcEnd := exportWindow()

	_, err := NewCodec(db).Export(9999, utcStart, utcEnd)
	assert.ErrorIs(t, err, ErrEnterpriseNotFound)
}

func TestBundleJSONRoundTrip(t *testing.T) {
	db := testsupport.OpenTestDB(t)
	fix := seedGraph(t, db)
	utcStart, utcEnd := exportWindow()

	bundle, err := NewCodec(db).Export(fix.enterprise.ID, utcStart, utcEnd)
	require.NoError(t, err)

	raw, err := json.Marshal(bundle)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"gps_points"`)
	assert.Contains(t, string(raw), `"external_id"`)

	var decoded Bundle
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, bundle.Enterprise, decoded.Enterprise)
	require.Len(t, decoded.Vehicles, 2)
	assert.Equal(t, bundle.Vehicles[0].Routes[0].ExternalID, decoded.Vehicles[0].Routes[0].ExternalID)
	assert.Len(t, decoded.Vehicles[0].Routes[0].GPSPoints, 4)
}

func TestImportIntoEmptyStoreAndIdempotence(t *testing.T) {
	source := testsupport.OpenTestDB(t)
	fix := seedGraph(t, source)
	utcStart, utcEnd := exportWindow()

	bundle, err := NewCodec(source).Export(fix.enterprise.ID, utcStart, utcEnd)
	require.NoError(t, err)

	target := testsupport.OpenTestDB(t)
	summary, err := NewCodec(target).Import(bundle)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.EnterprisesCreated)
	assert.Equal(t, 2, summary.VehiclesCreated)
	assert.Equal(t, 1, summary.RoutesCreated)
	assert.Equal(t, 4, summary.SamplesCreated)

	// The imported graph is equivalent: same external ids, same fields.
	var enterprise models.Enterprise
	require.NoError(t, target.Where("external_id = ?", fix.enterprise.ExternalID).First(&enterprise).Error)
	assert.Equal(t, fix.enterprise.Name, enterprise.Name)
	assert.Equal(t, fix.enterprise.LocalTimezone, enterprise.LocalTimezone)

	var vehicle models.Vehicle
	require.NoError(t, target.Where("external_id = ?", fix.vehicles[0].ExternalID).First(&vehicle).Error)
	assert.Equal(t, enterprise.ID, vehicle.EnterpriseID)
	assert.Equal(t, fix.vehicles[0].VIN, vehicle.VIN)

	var route models.Route
	require.NoError(t, target.Where("external_id = ?", fix.route.ExternalID).First(&route).Error)
	assert.Equal(t, vehicle.ID, route.VehicleID)
	assert.EqualValues(t, 3600, route.DurationSeconds)
	lon, lat, ok, err := geo.PointFromWKB(route.StartPoint)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 37.6173, lon)
	assert.Equal(t, 55.7558, lat)

	// Re-running the same bundle changes nothing: no creates, no new rows.
	again, err := NewCodec(target).Import(bundle)
	require.NoError(t, err)
	assert.Zero(t, again.EnterprisesCreated)
	assert.Zero(t, again.VehiclesCreated)
	assert.Zero(t, again.RoutesCreated)
	assert.Zero(t, again.SamplesCreated)
	assert.Equal(t, 4, again.SamplesSkipped)

	var samples int64
	target.Model(&models.GPSSample{}).Count(&samples)
	assert.EqualValues(t, 4, samples)
	var routes int64
	target.Model(&models.Route{}).Count(&routes)
	assert.EqualValues(t, 1, routes)
}

func TestImportUpdatesInPlace(t *testing.T) {
	source := testsupport.OpenTestDB(t)
	fix := seedGraph(t, source)
	utcStart, utcEnd := exportWindow()

	bundle, err := NewCodec(source).Export(fix.enterprise.ID, utcStart, utcEnd)
	require.NoError(t, err)

	target := testsupport.OpenTestDB(t)
	_, err = NewCodec(target).Import(bundle)
	require.NoError(t, err)

	bundle.Enterprise.City = "Kazan"
	bundle.Vehicles[0].Color = "black"

	summary, err := NewCodec(target).Import(bundle)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.EnterprisesUpdated)
	assert.Equal(t, 2, summary.VehiclesUpdated)

	var enterprise models.Enterprise
	require.NoError(t, target.Where("external_id = ?", bundle.Enterprise.ExternalID).First(&enterprise).Error)
	assert.Equal(t, "Kazan", enterprise.City)

	var vehicle models.Vehicle
	require.NoError(t, target.Where("external_id = ?", bundle.Vehicles[0].ExternalID).First(&vehicle).Error)
	assert.Equal(t, "black", vehicle.Color)
}

func TestImportMissingExternalID(t *testing.T) {
	target := testsupport.OpenTestDB(t)

	bundle := &Bundle{
		Enterprise: EnterpriseRecord{Name: "No ID", LocalTimezone: "UTC"},
	}
	_, err := NewCodec(target).Import(bundle)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingExternalID)

	var importErr *ImportError
	require.ErrorAs(t, err, &importErr)
	assert.Equal(t, "enterprise", importErr.Entity)

	bundle = &Bundle{
		Enterprise: EnterpriseRecord{ExternalID: uuid.New(), Name: "Has ID", LocalTimezone: "UTC"},
		Vehicles:   []VehicleRecord{{VIN: "XTA210600N0000009"}},
	}
	_, err = NewCodec(target).Import(bundle)
	assert.ErrorIs(t, err, ErrMissingExternalID)
}

func TestImportReparentingIsMalformedAndRollsBack(t *testing.T) {
	source := testsupport.OpenTestDB(t)
	fix := seedGraph(t, source)
	utcStart, utcEnd := exportWindow()

	bundle, err := NewCodec(source).Export(fix.enterprise.ID, utcStart, utcEnd)
	require.NoError(t, err)

	target := testsupport.OpenTestDB(t)
	_, err = NewCodec(target).Import(bundle)
	require.NoError(t, err)

	// Same vehicles under a brand-new enterprise: referentially broken.
	rogue := *bundle
	rogue.Enterprise.ExternalID = uuid.New()
	rogue.Enterprise.Name = "Hijack Fleet"

	_, err = NewCodec(target).Import(&rogue)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedBundle)

	var importErr *ImportError
	require.ErrorAs(t, err, &importErr)
	assert.Equal(t, "vehicle", importErr.Entity)
	assert.Equal(t, bundle.Vehicles[0].ExternalID.String(), importErr.ExternalID)

	// The whole bundle rolled back: the rogue enterprise never landed.
	var n int64
	target.Model(&models.Enterprise{}).Where("name = ?", "Hijack Fleet").Count(&n)
	assert.Zero(t, n)
}

func TestImportInvalidTimezoneIsImportError(t *testing.T) {
	target := testsupport.OpenTestDB(t)

	externalID := uuid.New()
	bundle := &Bundle{
		Enterprise: EnterpriseRecord{ExternalID: externalID, Name: "Bad Zone", LocalTimezone: "Not/AZone"},
	}
	_, err := NewCodec(target).Import(bundle)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInvalidTimezone)

	var importErr *ImportError
	require.ErrorAs(t, err, &importErr)
	assert.Equal(t, "enterprise", importErr.Entity)
	assert.Equal(t, externalID.String(), importErr.ExternalID)

	var n int64
	target.Model(&models.Enterprise{}).Where("name = ?", "Bad Zone").Count(&n)
	assert.Zero(t, n)
}

func TestImportMalformedLocation(t *testing.T) {
	target := testsupport.OpenTestDB(t)

	bundle := &Bundle{
		Enterprise: EnterpriseRecord{ExternalID: uuid.New(), Name: "Loc Test", LocalTimezone: "UTC"},
		Vehicles: []VehicleRecord{{
			ExternalID: uuid.New(),
			VIN:        "XTA210600N0000010",
			Routes: []RouteRecord{{
				ExternalID: uuid.New(),
				StartTime:  time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
				EndTime:    time.Date(2024, 6, 1, 11, 0, 0, 0, time.UTC),
				GPSPoints: []SampleRecord{{
					Timestamp: time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC),
					Location:  []float64{37.6},
				}},
			}},
		}},
	}

	_, err := NewCodec(target).Import(bundle)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedBundle)

	// Rolled back: not even the enterprise row survives.
	var n int64
	target.Model(&models.Enterprise{}).Where("name = ?", "Loc Test").Count(&n)
	assert.Zero(t, n)
}

func TestWriteSamplesCSV(t *testing.T) {
	db := testsupport.OpenTestDB(t)
	fix := seedGraph(t, db)

	var buf bytes.Buffer
	require.NoError(t, NewCodec(db).WriteSamplesCSV(&buf, fix.vehicles[0].ID))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 6) // header + 5 samples
	assert.Equal(t, "timestamp,longitude,latitude", lines[0])
	assert.Contains(t, lines[1], "2024-06-01T10:00:00Z")
}
