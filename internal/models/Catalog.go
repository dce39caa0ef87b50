package models

import (
	"gorm.io/gorm"
)

// Catalog entities: brand -> model -> configuration. A vehicle optionally
// references one configuration.

type Brand struct {
	gorm.Model
	Name    string `json:"name" gorm:"unique" binding:"required"`
	Country string `json:"country"`
}

type VehicleModel struct {
	gorm.Model
	Name        string `json:"name" binding:"required"`
	BrandID     uint   `json:"brand_id"`
	VehicleType string `json:"vehicle_type"` // "Passenger", "Truck", "Bus", "SUV", "Van"

	Brand Brand `gorm:"foreignKey:BrandID" json:"brand,omitempty"`
}

type Configuration struct {
	gorm.Model
	VehicleModelID uint    `json:"vehicle_model_id"`
	Name           string  `json:"name" binding:"required"`
	TankCapacity   float64 `json:"tank_capacity"`
	Payload        int     `json:"payload"`
	SeatsNumber    int     `json:"seats_number"`

	VehicleModel VehicleModel `gorm:"foreignKey:VehicleModelID" json:"vehicle_model,omitempty"`
}
