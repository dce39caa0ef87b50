package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"fleet_park/internal/models"
)

var (
	// DB is the globally accessible database handle
	DB *gorm.DB
)

// InitDB initializes the database connection using environment variables,
// migrates the schema and creates the partial unique indexes backing the
// active-assignment invariant.
func InitDB() {
	// 1) Load .env (if present)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found – relying on env vars")
	}

	// Load environment variables (with defaults)
	host := getEnv("DB_HOST", "localhost")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "postgres")
	password := getEnv("DB_PASSWORD", "password")
	dbname := getEnv("DB_NAME", "fleet_park")
	sslmode := getEnv("DB_SSLMODE", "disable")
	timezone := getEnv("DB_TIMEZONE", "UTC")

	// Build Data Source Name
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		host, user, password, dbname, port, sslmode, timezone,
	)

	// Open GORM connection
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

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
		log.Fatalf("auto-migration failed: %v", err)
	}

	// At most one active assignment per driver and per vehicle. These
	// indexes hold the invariant even against writers that race past the
	// ledger's transactional check.
	db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_one_active_per_driver ON driver_assignments (driver_id) WHERE active AND deleted_at IS NULL;")
	db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_one_active_per_vehicle ON driver_assignments (vehicle_id) WHERE active AND deleted_at IS NULL;")

	// Assign to global
	DB = db
}

// getEnv reads an environment variable or returns the provided default
func getEnv(key, defaultValue string) string {
	if v, exists := os.LookupEnv(key); exists {
		return v
	}
	return defaultValue
}

// GetDB returns the initialized DB handle
func GetDB() *gorm.DB {
	return DB
}

// ORSAPIKey returns the OpenRouteService key for the geocoding
// collaborator. There is no baked-in default: an empty key disables
// reverse geocoding without affecting anything else.
func ORSAPIKey() string {
	return os.Getenv("ORS_API_KEY")
}
