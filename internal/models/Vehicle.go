// internal/models/vehicle.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Vehicle struct {
	gorm.Model
	VIN              string    `json:"vin" gorm:"column:vin;unique;size:17" binding:"required"`
	Price            float64   `json:"price"`
	ReleaseYear      int       `json:"release_year"`
	Mileage          int       `json:"mileage"`
	Color            string    `json:"color"`
	TransmissionType string    `json:"transmission_type"`
	ConfigurationID  *uint     `json:"configuration_id"`
	EnterpriseID     uint      `json:"enterprise_id" gorm:"index"`
	PurchaseDatetime time.Time `json:"purchase_datetime"`
	ExternalID       uuid.UUID `json:"external_id" gorm:"type:text;uniqueIndex"`
}

func (v *Vehicle) BeforeSave(tx *gorm.DB) error {
	if v.ExternalID == uuid.Nil {
		v.ExternalID = uuid.New()
	}
	return nil
}
