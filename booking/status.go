package booking

import (
	"github.com/clinicdesk/clinic-booking/model"
	"gorm.io/gorm"
)

// Allowed lifecycle edges. Cancelled and completed are terminal: they have
// no outgoing edges, so any transition away from them is rejected —
// including re-cancelling an already cancelled appointment.
var transitions = map[string][]string{
	model.StatusPending:   {model.StatusConfirmed, model.StatusCancelled},
	model.StatusConfirmed: {model.StatusCompleted, model.StatusCancelled},
}

// CanTransition reports whether the status graph allows moving from one
// status to another.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition moves an appointment to the next status and persists it.
// Cancelling clears the active slot claim so the slot drops out of
// OccupiedSlots and can be reserved again.
func Transition(db *gorm.DB, appointment *model.Appointment, next string) error {
	if !CanTransition(appointment.Status, next) {
		return ErrInvalidTransition
	}

	updates := map[string]interface{}{"status": next}
	if next == model.StatusCancelled {
		updates["active"] = nil
	}

	if err := db.Model(appointment).Updates(updates).Error; err != nil {
		return err
	}
	appointment.Status = next
	if next == model.StatusCancelled {
		appointment.Active = nil
	}
	return nil
}
