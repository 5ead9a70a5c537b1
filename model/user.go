package model

import (
	"time"

	"gorm.io/gorm"
)

// User is the identity record shared by patients, doctors, and admins.
// Doctors additionally carry a Doctor profile row linked by UserID.
type User struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	FirstName    string     `json:"first_name" gorm:"column:first_name;not null"`
	LastName     string     `json:"last_name" gorm:"column:last_name;not null"`
	Email        string     `json:"email" gorm:"column:email;uniqueIndex;not null"`
	Password     string     `json:"-" gorm:"column:password;not null"`
	PasswordSalt string     `json:"-" gorm:"column:password_salt"`
	Phone        string     `json:"phone" gorm:"column:phone"`
	RoleID       uint32     `json:"role_id" gorm:"column:role_id;not null"`
	FailedLogins int        `json:"-" gorm:"column:failed_logins;default:0"`
	LockedUntil  *time.Time `json:"-" gorm:"column:locked_until"`
}
