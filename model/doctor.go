package model

import (
	"time"

	"gorm.io/gorm"
)

// Doctor extends a User with the clinic-owned practitioner profile.
// A doctor row is created when an admin promotes a user.
//
// ID and timestamps are tagged explicitly so the JSON keys match the rest of
// the API surface (lowercase "id", "created_at").
// @Description Doctor profile information
type Doctor struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	UserID            uint    `json:"user_id" gorm:"column:user_id;uniqueIndex;not null"`
	SpecialtyID       uint    `json:"specialty_id" gorm:"column:specialty_id;index"`
	LicenseNumber     string  `json:"license_number" gorm:"column:license_number;not null" example:"FR-75-12345"`
	Bio               string  `json:"bio" gorm:"column:bio;type:text"`
	ConsultationPrice float64 `json:"consultation_price" gorm:"column:consultation_price" example:"25.00"`
	IsAvailable       bool    `json:"is_available" gorm:"column:is_available;default:true" example:"true"`
	// AvailableDays is a comma-joined list of weekday names on which the
	// doctor accepts appointments, e.g. "Monday,Tuesday,Wednesday".
	// Empty means the clinic default of Monday through Friday.
	AvailableDays string `json:"available_days" gorm:"column:available_days" example:"Monday,Tuesday,Friday"`

	User      User      `json:"user" gorm:"foreignKey:UserID"`
	Specialty Specialty `json:"specialty" gorm:"foreignKey:SpecialtyID"`
}
