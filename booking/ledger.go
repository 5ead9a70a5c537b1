package booking

import (
	"errors"
	"time"

	"github.com/clinicdesk/clinic-booking/model"
	"gorm.io/gorm"
)

// ReserveRequest is a validated booking attempt for a single slot.
type ReserveRequest struct {
	PatientID uint
	DoctorID  uint
	Date      string // YYYY-MM-DD
	Time      string // HH:MM, must be a candidate slot
	Reason    string
}

// Reserve claims the (doctor, date, time) slot for a patient and returns the
// created appointment in pending status with the doctor's current
// consultation price snapshotted onto it.
//
// The uniqueness check and the insert are atomic relative to concurrent
// reservation attempts: the composite unique index on the appointments table
// serializes them, so of two racing calls for the same triple exactly one
// succeeds and the other gets ErrSlotTaken. The pre-check inside the
// transaction only exists to answer the common case without burning an
// insert.
func Reserve(db *gorm.DB, req ReserveRequest) (model.Appointment, error) {
	if req.PatientID == 0 || req.DoctorID == 0 || req.Date == "" || req.Time == "" {
		return model.Appointment{}, ErrMissingFields
	}

	day, err := ParseDate(req.Date)
	if err != nil {
		return model.Appointment{}, err
	}
	if day.Before(today()) {
		return model.Appointment{}, ErrPastDate
	}
	if !IsCandidateSlot(req.Time) {
		return model.Appointment{}, ErrSlotNotOffered
	}

	var doctor model.Doctor
	if err := db.First(&doctor, req.DoctorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Appointment{}, ErrDoctorNotFound
		}
		return model.Appointment{}, err
	}
	if !IsAvailable(doctor, day) {
		return model.Appointment{}, ErrDoctorOffDuty
	}

	// Patients book for themselves, but admins book on behalf of an arbitrary
	// patient id, so the patient row has to be verified too.
	var patient model.User
	if err := db.First(&patient, req.PatientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Appointment{}, ErrPatientNotFound
		}
		return model.Appointment{}, err
	}

	active := true
	appointment := model.Appointment{
		PatientID:       req.PatientID,
		DoctorID:        req.DoctorID,
		AppointmentDate: req.Date,
		AppointmentTime: req.Time,
		Status:          model.StatusPending,
		Reason:          req.Reason,
		Price:           doctor.ConsultationPrice,
		Active:          &active,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Appointment{}).
			Where("doctor_id = ? AND appointment_date = ? AND appointment_time = ? AND status <> ?",
				req.DoctorID, req.Date, req.Time, model.StatusCancelled).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrSlotTaken
		}
		return tx.Create(&appointment).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return model.Appointment{}, ErrSlotTaken
		}
		return model.Appointment{}, err
	}

	// Echo the appointment back with resolved doctor and patient records.
	if err := db.Preload("Doctor.User").Preload("Doctor.Specialty").Preload("Patient").
		First(&appointment, appointment.ID).Error; err != nil {
		return model.Appointment{}, err
	}
	return appointment, nil
}

// today returns the current date truncated to midnight local time.
func today() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
