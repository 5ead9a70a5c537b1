package model

import (
	"fmt"

	"gorm.io/gorm"
)

type Role struct {
	gorm.Model
	ID   uint32 `gorm:"primary_key;auto_increment" json:"id"`
	Name string `gorm:"type:varchar(100);not null" json:"name"`
}

// Role names are reference data; every user row points at one of these.
const (
	RoleNamePatient = "patient"
	RoleNameDoctor  = "doctor"
	RoleNameAdmin   = "admin"
)

// SeedRoles inserts the fixed role set if not already present.
func SeedRoles(db *gorm.DB) error {
	roles := []Role{
		{Name: RoleNamePatient},
		{Name: RoleNameDoctor},
		{Name: RoleNameAdmin},
	}

	for _, role := range roles {
		var existingRole Role
		err := db.Where("name = ?", role.Name).First(&existingRole).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		if err := db.Create(&role).Error; err != nil {
			return fmt.Errorf("failed to seed role %s: %w", role.Name, err)
		}
	}
	return nil
}
