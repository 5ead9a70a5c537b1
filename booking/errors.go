package booking

import "errors"

// Sentinel errors for the booking core. Callers inspect these with errors.Is
// and map them to HTTP statuses; none are fatal to the process.
var (
	// ErrSlotTaken means the (doctor, date, time) triple is already claimed
	// by a live appointment. Not retried automatically: the caller has to
	// pick a different slot.
	ErrSlotTaken = errors.New("slot already booked")

	// ErrInvalidTransition means the requested status change is not allowed
	// from the appointment's current status.
	ErrInvalidTransition = errors.New("invalid status transition")

	ErrDoctorNotFound      = errors.New("doctor not found")
	ErrPatientNotFound     = errors.New("patient not found")
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrValidation covers malformed or incomplete booking requests. The
	// specific cause is wrapped so errors.Is(err, ErrValidation) holds for
	// all of them.
	ErrValidation = errors.New("invalid booking request")
)

// Validation causes, each wrapping ErrValidation.
var (
	ErrMissingFields  = wrapValidation("missing required booking fields")
	ErrBadDate        = wrapValidation("appointment_date must be formatted as YYYY-MM-DD")
	ErrPastDate       = wrapValidation("appointment_date cannot be in the past")
	ErrSlotNotOffered = wrapValidation("appointment_time is not one of the clinic's slots")
	ErrDoctorOffDuty  = wrapValidation("doctor does not accept appointments on that day")
)

type validationError struct{ msg string }

func wrapValidation(msg string) error { return &validationError{msg: msg} }

func (e *validationError) Error() string { return e.msg }

func (e *validationError) Unwrap() error { return ErrValidation }
