package booking

import (
	"strings"
	"time"

	"github.com/clinicdesk/clinic-booking/model"
	"gorm.io/gorm"
)

// defaultWorkingDays is the clinic default applied when a doctor has no
// configured weekday set.
var defaultWorkingDays = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
}

// WorkingDays returns the set of weekdays on which the doctor accepts
// appointments, parsed from the comma-joined AvailableDays column. Unknown
// names are ignored; an empty or fully invalid value falls back to the
// clinic default of Monday through Friday.
func WorkingDays(doctor model.Doctor) []time.Weekday {
	raw := strings.TrimSpace(doctor.AvailableDays)
	if raw == "" {
		return defaultWorkingDays
	}

	byName := map[string]time.Weekday{}
	for d := time.Sunday; d <= time.Saturday; d++ {
		byName[strings.ToLower(d.String())] = d
	}

	var days []time.Weekday
	seen := map[time.Weekday]bool{}
	for _, part := range strings.Split(raw, ",") {
		d, ok := byName[strings.ToLower(strings.TrimSpace(part))]
		if !ok || seen[d] {
			continue
		}
		seen[d] = true
		days = append(days, d)
	}
	if len(days) == 0 {
		return defaultWorkingDays
	}
	return days
}

// IsAvailable reports whether the doctor accepts appointments on the given
// date: the availability flag is set and the date's weekday is in the
// doctor's configured set. Holidays and leaves of absence are not modelled.
func IsAvailable(doctor model.Doctor, date time.Time) bool {
	if !doctor.IsAvailable {
		return false
	}
	for _, d := range WorkingDays(doctor) {
		if date.Weekday() == d {
			return true
		}
	}
	return false
}

// OccupiedSlots returns every time-of-day already claimed by a non-cancelled
// appointment for the doctor on the given date, in slot order.
func OccupiedSlots(db *gorm.DB, doctorID uint, date string) ([]string, error) {
	var times []string
	err := db.Model(&model.Appointment{}).
		Where("doctor_id = ? AND appointment_date = ? AND status <> ?", doctorID, date, model.StatusCancelled).
		Order("appointment_time ASC").
		Pluck("appointment_time", &times).Error
	if err != nil {
		return nil, err
	}
	return times, nil
}

// AvailableSlots computes the bookable slots for a doctor on a date: the
// candidate template minus occupied slots, in template order. The result is
// empty (not an error) when the doctor is fully booked or does not work that
// weekday.
func AvailableSlots(db *gorm.DB, doctor model.Doctor, date string) ([]string, error) {
	day, err := ParseDate(date)
	if err != nil {
		return nil, err
	}

	available := []string{}
	if !IsAvailable(doctor, day) {
		return available, nil
	}

	occupied, err := OccupiedSlots(db, doctor.ID, date)
	if err != nil {
		return nil, err
	}
	taken := make(map[string]bool, len(occupied))
	for _, t := range occupied {
		taken[t] = true
	}

	for _, slot := range CandidateSlots() {
		if !taken[slot] {
			available = append(available, slot)
		}
	}
	return available, nil
}
