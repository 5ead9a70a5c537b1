package booking

import "time"

// The clinic runs one fixed daily slot template shared by all doctors:
// a morning block and an afternoon block in 30-minute increments. The
// template does not vary by doctor, specialty, or date.
type slotWindow struct {
	start string // first slot, inclusive
	end   string // last slot, inclusive
}

var dailyTemplate = []slotWindow{
	{start: "09:00", end: "11:30"},
	{start: "14:00", end: "17:00"},
}

const slotInterval = 30 * time.Minute

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// CandidateSlots enumerates the full daily template in order: every
// time-of-day at which an appointment could start, before any bookings are
// subtracted. The result is the same for every call.
func CandidateSlots() []string {
	var slots []string
	for _, w := range dailyTemplate {
		start, _ := time.Parse(timeLayout, w.start)
		end, _ := time.Parse(timeLayout, w.end)
		for t := start; !t.After(end); t = t.Add(slotInterval) {
			slots = append(slots, t.Format(timeLayout))
		}
	}
	return slots
}

// IsCandidateSlot reports whether timeOfDay ("HH:MM") is part of the daily
// template.
func IsCandidateSlot(timeOfDay string) bool {
	for _, s := range CandidateSlots() {
		if s == timeOfDay {
			return true
		}
	}
	return false
}

// ParseDate parses an appointment date in YYYY-MM-DD form.
func ParseDate(value string) (time.Time, error) {
	d, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, ErrBadDate
	}
	return d, nil
}
