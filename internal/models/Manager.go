// internal/models/manager.go
package models

import "gorm.io/gorm"

// Manager is the authenticated principal of the API. A manager only sees
// the enterprises linked to them, and everything owned by those
// enterprises.
type Manager struct {
	gorm.Model
	Name     string `json:"name"`
	Email    string `json:"email" gorm:"unique"`
	Password string `json:"-"`

	Enterprises []Enterprise `gorm:"many2many:manager_enterprises;" json:"enterprises,omitempty"`
}
