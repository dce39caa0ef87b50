// Package testsupport opens throwaway in-memory databases for
// package-level tests. Schema and indexes mirror what config.InitDB
// creates against postgres.
package testsupport

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"fleet_park/internal/models"
)

// OpenTestDB returns a migrated in-memory database. The connection pool is
// pinned to one connection so every query sees the same :memory: store.
func OpenTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap test db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.Manager{},
		&models.Enterprise{},
		&models.Brand{},
		&models.VehicleModel{},
		&models.Configuration{},
		&models.Vehicle{},
		&models.Driver{},
		&models.DriverAssignment{},
		&models.GPSSample{},
		&models.Route{},
		&models.MileageReport{},
	)
	if err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	// Same partial unique indexes config.InitDB creates in postgres.
	db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_one_active_per_driver ON driver_assignments (driver_id) WHERE active AND deleted_at IS NULL;")
	db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_one_active_per_vehicle ON driver_assignments (vehicle_id) WHERE active AND deleted_at IS NULL;")

	return db
}
