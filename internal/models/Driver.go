// internal/models/driver.go
package models

import (
	"gorm.io/gorm"
)

type Driver struct {
	gorm.Model
	Name         string  `json:"name" binding:"required"`
	Salary       float64 `json:"salary"`
	EnterpriseID uint    `json:"enterprise_id" gorm:"index"`
}
