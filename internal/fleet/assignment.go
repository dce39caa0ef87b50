// Package fleet owns the vehicle<->driver assignment ledger and its
// exclusivity invariant: at most one active assignment per vehicle and at
// most one per driver, at all times, including under concurrent writers.
package fleet

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"fleet_park/internal/models"
)

var (
	ErrDriverAlreadyActive  = errors.New("driver is already active on another vehicle")
	ErrVehicleAlreadyActive = errors.New("vehicle already has an active driver")
	ErrVehicleNotFound      = errors.New("vehicle not found")
	ErrDriverNotFound       = errors.New("driver not found")
)

// A writer that loses a serialization race gets its transaction re-run;
// the fresh check then reports the real conflict instead of a bare abort.
const maxConflictRetries = 3

type Ledger struct {
	db *gorm.DB
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// SetActive creates or updates the (vehicle, driver) assignment and flips
// its active flag. The read-check-write sequence runs inside a serializable
// transaction; the partial unique indexes on (driver_id) and (vehicle_id)
// WHERE active (created in config.InitDB) reject whatever a racing writer
// slips past the check, so concurrent double-activation cannot commit.
func (l *Ledger) SetActive(vehicleID, driverID uint, active bool) (*models.DriverAssignment, error) {
	var vehicle models.Vehicle
	if err := l.db.First(&vehicle, vehicleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVehicleNotFound
		}
		return nil, err
	}
	var driver models.Driver
	if err := l.db.First(&driver, driverID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDriverNotFound
		}
		return nil, err
	}

	var assignment models.DriverAssignment

	run := func() error {
		return l.db.Transaction(func(tx *gorm.DB) error {
			// The conflict check only matters when activating. Deactivation
			// never conflicts.
			if active {
				var n int64
				if err := tx.Model(&models.DriverAssignment{}).
					Where("driver_id = ? AND vehicle_id <> ? AND active", driverID, vehicleID).
					Count(&n).Error; err != nil {
					return err
				}
				if n > 0 {
					return ErrDriverAlreadyActive
				}
				if err := tx.Model(&models.DriverAssignment{}).
					Where("vehicle_id = ? AND driver_id <> ? AND active", vehicleID, driverID).
					Count(&n).Error; err != nil {
					return err
				}
				if n > 0 {
					return ErrVehicleAlreadyActive
				}
			}

			// The pair is unique: re-submitting updates in place.
			err := tx.Where("vehicle_id = ? AND driver_id = ?", vehicleID, driverID).
				First(&assignment).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				assignment = models.DriverAssignment{
					VehicleID: vehicleID,
					DriverID:  driverID,
					Active:    active,
				}
				return tx.Create(&assignment).Error
			case err != nil:
				return err
			default:
				return tx.Model(&assignment).Update("active", active).Error
			}
		}, &sql.TxOptions{Isolation: sql.LevelSerializable})
	}

	for attempt := 0; ; attempt++ {
		txErr := run()
		switch {
		case txErr == nil:
			return &assignment, nil
		case errors.Is(txErr, ErrDriverAlreadyActive), errors.Is(txErr, ErrVehicleAlreadyActive):
			return nil, txErr
		}
		if active {
			if conflict := activationConflict(txErr); conflict != nil {
				return nil, conflict
			}
		}
		// Serialization aborts (and a lost race on the pair index) carry
		// no intent of their own; re-run so the check sees the winner's
		// row and reports the true outcome.
		if attempt < maxConflictRetries && (isSerializationFailure(txErr) || isUniqueViolation(txErr)) {
			continue
		}
		return nil, txErr
	}
}

// ActiveDriver returns the driver currently active on the vehicle, or
// gorm.ErrRecordNotFound when there is none.
func (l *Ledger) ActiveDriver(vehicleID uint) (*models.Driver, error) {
	var assignment models.DriverAssignment
	if err := l.db.Preload("Driver").
		Where("vehicle_id = ? AND active", vehicleID).
		First(&assignment).Error; err != nil {
		return nil, err
	}
	return &assignment.Driver, nil
}

// ActiveAssignments lists active assignments for vehicles of the given
// enterprises.
func (l *Ledger) ActiveAssignments(enterpriseIDs []uint) ([]models.DriverAssignment, error) {
	var assignments []models.DriverAssignment
	err := l.db.Preload("Vehicle").Preload("Driver").
		Joins("JOIN vehicles ON vehicles.id = driver_assignments.vehicle_id").
		Where("driver_assignments.active AND vehicles.enterprise_id IN ?", enterpriseIDs).
		Find(&assignments).Error
	return assignments, err
}

// activationConflict maps a unique violation on one of the partial
// exclusivity indexes to the matching conflict sentinel. Which index fired
// decides the sentinel: a driver collision and a vehicle collision are
// different rejections. Returns nil for anything else.
func activationConflict(err error) error {
	var pgErr *pq.Error
	if errors.As(err, &pgErr) {
		if pgErr.Code != "23505" {
			return nil
		}
		switch pgErr.Constraint {
		case "idx_one_active_per_driver":
			return ErrDriverAlreadyActive
		case "idx_one_active_per_vehicle":
			return ErrVehicleAlreadyActive
		}
		return nil
	}

	// Drivers that don't surface *pq.Error (and sqlite) put the index or
	// column name in the message.
	msg := err.Error()
	if !isUniqueViolation(err) {
		return nil
	}
	switch {
	case strings.Contains(msg, "idx_one_active_per_driver"),
		strings.Contains(msg, "driver_assignments.driver_id"):
		return ErrDriverAlreadyActive
	case strings.Contains(msg, "idx_one_active_per_vehicle"),
		strings.Contains(msg, "driver_assignments.vehicle_id"):
		return ErrVehicleAlreadyActive
	}
	return nil
}

// isSerializationFailure reports SQLSTATE 40001: the database aborted one
// of two overlapping serializable transactions.
func isSerializationFailure(err error) bool {
	var pgErr *pq.Error
	if errors.As(err, &pgErr) && pgErr.Code == "40001" {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "40001") ||
		strings.Contains(msg, "could not serialize access")
}

func isUniqueViolation(err error) bool {
	var pgErr *pq.Error
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "23505") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
