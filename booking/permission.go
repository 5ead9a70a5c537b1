package booking

import "github.com/clinicdesk/clinic-booking/model"

// Role is the enumerated actor role. Handlers resolve it once from the
// user's role record and pass it explicitly; authorization never dispatches
// on raw strings scattered through handlers.
type Role string

const (
	RolePatient Role = model.RoleNamePatient
	RoleDoctor  Role = model.RoleNameDoctor
	RoleAdmin   Role = model.RoleNameAdmin
)

// RoleFromName maps a role record name to a Role.
func RoleFromName(name string) (Role, bool) {
	switch name {
	case model.RoleNamePatient:
		return RolePatient, true
	case model.RoleNameDoctor:
		return RoleDoctor, true
	case model.RoleNameAdmin:
		return RoleAdmin, true
	}
	return "", false
}

// Action is a permission-checked operation on the booking domain.
type Action string

const (
	ActionReserve           Action = "reserve"
	ActionDeleteAppointment Action = "delete_appointment"
	ActionManageDoctors     Action = "manage_doctors"
	ActionManageSpecialties Action = "manage_specialties"
	ActionManageUsers       Action = "manage_users"
)

// Allowed answers whether a role may perform an action that does not depend
// on resource ownership. Status transitions go through CanChangeStatus
// instead because they do.
func Allowed(role Role, action Action) bool {
	switch action {
	case ActionReserve:
		// Admins may book on a patient's behalf over the phone.
		return role == RolePatient || role == RoleAdmin
	case ActionDeleteAppointment, ActionManageDoctors, ActionManageSpecialties, ActionManageUsers:
		return role == RoleAdmin
	}
	return false
}

// CanChangeStatus answers whether the actor may move the appointment to the
// next status. Doctors and admins may confirm, cancel, and complete; a
// doctor only on their own calendar. A patient may only cancel their own
// appointment while it is still pending.
func CanChangeStatus(role Role, actorUserID uint, appointment model.Appointment, next string) bool {
	switch role {
	case RoleAdmin:
		return true
	case RoleDoctor:
		return appointment.Doctor.UserID == actorUserID
	case RolePatient:
		return next == model.StatusCancelled &&
			appointment.PatientID == actorUserID &&
			appointment.Status == model.StatusPending
	}
	return false
}

// CanViewAppointment answers whether the actor may read the appointment.
func CanViewAppointment(role Role, actorUserID uint, appointment model.Appointment) bool {
	switch role {
	case RoleAdmin:
		return true
	case RoleDoctor:
		return appointment.Doctor.UserID == actorUserID
	case RolePatient:
		return appointment.PatientID == actorUserID
	}
	return false
}
