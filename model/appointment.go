package model

import "time"

// Appointment statuses. Lifecycle transitions are enforced by the booking
// package; these are the values persisted in the status column.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

// Appointment is the booking record. Unlike the other entities it has no
// soft-delete column: deleting an appointment removes it permanently.
//
// The composite unique index over (doctor_id, appointment_date,
// appointment_time, active) is the double-booking guard. Active is non-NULL
// for every live appointment and set to NULL on cancellation, so cancelled
// rows stop colliding and the slot can be claimed again while two live rows
// for the same triple can never coexist.
type Appointment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	PatientID       uint    `json:"patient_id" gorm:"column:patient_id;index;not null"`
	DoctorID        uint    `json:"doctor_id" gorm:"column:doctor_id;not null;uniqueIndex:uniq_doctor_slot"`
	AppointmentDate string  `json:"appointment_date" gorm:"column:appointment_date;type:varchar(10);not null;uniqueIndex:uniq_doctor_slot" example:"2026-09-14"`
	AppointmentTime string  `json:"appointment_time" gorm:"column:appointment_time;type:varchar(5);not null;uniqueIndex:uniq_doctor_slot" example:"09:00"`
	Status          string  `json:"status" gorm:"column:status;type:varchar(16);default:pending" example:"pending"`
	Reason          string  `json:"reason" gorm:"column:reason;type:text"`
	Notes           string  `json:"notes" gorm:"column:notes;type:text"`
	Price           float64 `json:"price" gorm:"column:price" example:"25.00"`
	Active          *bool   `json:"-" gorm:"column:active;uniqueIndex:uniq_doctor_slot"`

	Doctor  Doctor `json:"doctor" gorm:"foreignKey:DoctorID"`
	Patient User   `json:"patient" gorm:"foreignKey:PatientID"`
}

// IsTerminal reports whether the appointment can no longer change status.
func (a *Appointment) IsTerminal() bool {
	return a.Status == StatusCancelled || a.Status == StatusCompleted
}
