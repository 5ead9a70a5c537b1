package model

import (
	"time"

	"gorm.io/gorm"
)

// Specialty is a named medical category referenced by doctors.
type Specialty struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Name        string `json:"name" gorm:"column:name;uniqueIndex;not null" example:"Cardiologie"`
	Description string `json:"description" gorm:"column:description;type:text"`
	Icon        string `json:"icon" gorm:"column:icon"`
}
