package booking

import (
	"fmt"
	"testing"
	"time"

	"github.com/clinicdesk/clinic-booking/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupBookingTestDB creates an in-memory SQLite database with every model
// the booking core touches. TranslateError is on so unique-index violations
// surface as gorm.ErrDuplicatedKey, matching the production configuration.
func setupBookingTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:bookingdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&model.User{}, &model.Role{}, &model.Specialty{}, &model.Doctor{}, &model.Appointment{}); err != nil {
		t.Fatalf("failed to auto-migrate models: %v", err)
	}
	return db
}

// createTestDoctor seeds a user and doctor profile. availableDays may be
// empty to use the clinic default (Monday through Friday).
func createTestDoctor(t *testing.T, db *gorm.DB, availableDays string) model.Doctor {
	t.Helper()
	user := model.User{
		FirstName: "Martin",
		LastName:  "Dubois",
		Email:     fmt.Sprintf("doctor_%d@test.com", time.Now().UnixNano()),
		Password:  "hashed",
		RoleID:    2,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create doctor user: %v", err)
	}
	doctor := model.Doctor{
		UserID:            user.ID,
		LicenseNumber:     "FR-75-12345",
		ConsultationPrice: 25.00,
		IsAvailable:       true,
		AvailableDays:     availableDays,
	}
	if err := db.Create(&doctor).Error; err != nil {
		t.Fatalf("failed to create doctor: %v", err)
	}
	return doctor
}

func createTestPatient(t *testing.T, db *gorm.DB) model.User {
	t.Helper()
	patient := model.User{
		FirstName: "Claire",
		LastName:  "Moreau",
		Email:     fmt.Sprintf("patient_%d@test.com", time.Now().UnixNano()),
		Password:  "hashed",
		RoleID:    1,
	}
	if err := db.Create(&patient).Error; err != nil {
		t.Fatalf("failed to create patient: %v", err)
	}
	return patient
}

// nextDate returns the soonest future date (at least tomorrow) falling on
// the given weekday, formatted as YYYY-MM-DD.
func nextDate(weekday time.Weekday) string {
	d := time.Now().AddDate(0, 0, 1)
	for d.Weekday() != weekday {
		d = d.AddDate(0, 0, 1)
	}
	return d.Format("2006-01-02")
}
