package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func setupDoctorTestDB(t *testing.T) *gorm.DB {
	return setupTestDB(t, "doctor", &User{}, &Specialty{}, &Doctor{})
}

func TestDoctorModel_CreateWithUserAndSpecialty(t *testing.T) {
	db := setupDoctorTestDB(t)

	user := User{FirstName: "Martin", LastName: "Dubois", Email: "martin.dubois@test.com", Password: "hashed", RoleID: 2}
	assert.NoError(t, db.Create(&user).Error)

	specialty := Specialty{Name: "Cardiologie"}
	assert.NoError(t, db.Create(&specialty).Error)

	doctor := Doctor{
		UserID:            user.ID,
		SpecialtyID:       specialty.ID,
		LicenseNumber:     "FR-75-12345",
		ConsultationPrice: 25.00,
		IsAvailable:       true,
		AvailableDays:     "Monday,Tuesday,Wednesday",
	}
	assert.NoError(t, db.Create(&doctor).Error)
	assert.NotZero(t, doctor.ID)

	var found Doctor
	err := db.Preload("User").Preload("Specialty").First(&found, doctor.ID).Error
	assert.NoError(t, err)
	assert.Equal(t, "Martin", found.User.FirstName)
	assert.Equal(t, "Cardiologie", found.Specialty.Name)
}

// The frontend reads lowercase keys (doctor.id, doctor.specialty.name), so
// the identifier and timestamp fields must not fall back to Go field names.
func TestDoctorModel_JSONUsesLowercaseKeys(t *testing.T) {
	doctor := Doctor{
		ID:            3,
		LicenseNumber: "FR-75-12345",
		User:          User{ID: 7, FirstName: "Martin", Email: "martin.dubois@test.com"},
		Specialty:     Specialty{ID: 2, Name: "Cardiologie"},
	}

	raw, err := json.Marshal(doctor)
	assert.NoError(t, err)

	var decoded map[string]interface{}
	assert.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, float64(3), decoded["id"])
	assert.NotContains(t, decoded, "ID")
	assert.Contains(t, decoded, "created_at")

	user := decoded["user"].(map[string]interface{})
	assert.Equal(t, float64(7), user["id"])

	specialty := decoded["specialty"].(map[string]interface{})
	assert.Equal(t, float64(2), specialty["id"])
}

func TestDoctorModel_OneProfilePerUser(t *testing.T) {
	db := setupDoctorTestDB(t)

	user := User{FirstName: "Sophie", LastName: "Leroy", Email: "sophie.leroy@test.com", Password: "hashed", RoleID: 2}
	assert.NoError(t, db.Create(&user).Error)

	first := Doctor{UserID: user.ID, LicenseNumber: "FR-75-00001"}
	assert.NoError(t, db.Create(&first).Error)

	second := Doctor{UserID: user.ID, LicenseNumber: "FR-75-00002"}
	err := db.Create(&second).Error
	assert.Error(t, err)
}

func TestDoctorModel_Update(t *testing.T) {
	db := setupDoctorTestDB(t)

	doctor := Doctor{UserID: 1, LicenseNumber: "FR-75-11111", IsAvailable: true}
	assert.NoError(t, db.Create(&doctor).Error)

	doctor.IsAvailable = false
	doctor.AvailableDays = "Monday,Friday"
	assert.NoError(t, db.Save(&doctor).Error)

	var updated Doctor
	db.First(&updated, doctor.ID)
	assert.False(t, updated.IsAvailable)
	assert.Equal(t, "Monday,Friday", updated.AvailableDays)
}
