package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrInvalidTimezone is returned when an enterprise carries a timezone
// identifier that is not a recognized IANA zone name.
var ErrInvalidTimezone = errors.New("invalid IANA timezone identifier")

// Enterprise is a fleet-owning organization. All vehicles and drivers
// belong to exactly one enterprise, and every range query against its
// telemetry is interpreted in the enterprise's local timezone.
type Enterprise struct {
	gorm.Model

	Name          string    `json:"name" gorm:"unique" binding:"required"`
	City          string    `json:"city"`
	LocalTimezone string    `json:"local_timezone" gorm:"default:UTC"`
	ExternalID    uuid.UUID `json:"external_id" gorm:"type:text;uniqueIndex"`

	Vehicles []Vehicle `gorm:"foreignKey:EnterpriseID" json:"vehicles,omitempty"`
	Drivers  []Driver  `gorm:"foreignKey:EnterpriseID" json:"drivers,omitempty"`
}

// BeforeSave validates the timezone identifier and assigns an external id
// to rows that were created without one.
func (e *Enterprise) BeforeSave(tx *gorm.DB) error {
	if e.LocalTimezone == "" {
		e.LocalTimezone = "UTC"
	}
	if _, err := time.LoadLocation(e.LocalTimezone); err != nil {
		return ErrInvalidTimezone
	}
	if e.ExternalID == uuid.Nil {
		e.ExternalID = uuid.New()
	}
	return nil
}

// Location resolves the enterprise's timezone. The BeforeSave hook
// guarantees stored rows always resolve.
func (e *Enterprise) Location() (*time.Location, error) {
	return time.LoadLocation(e.LocalTimezone)
}
