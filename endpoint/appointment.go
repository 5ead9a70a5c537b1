package endpoint

import (
	"errors"
	"fmt"

	"github.com/clinicdesk/clinic-booking/booking"
	"github.com/clinicdesk/clinic-booking/model"
	"github.com/clinicdesk/clinic-booking/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CreateAppointmentRequest struct {
	DoctorID        uint   `json:"doctor_id" binding:"required" example:"2"`
	AppointmentDate string `json:"appointment_date" binding:"required" example:"2026-09-14"`
	AppointmentTime string `json:"appointment_time" binding:"required" example:"09:00"`
	Reason          string `json:"reason" example:"Annual check-up"`
	// PatientID lets an admin book on a patient's behalf; ignored for
	// patient callers, who always book for themselves.
	PatientID uint `json:"patient_id,omitempty" example:"7"`
}

type UpdateAppointmentStatusRequest struct {
	Status string `json:"status" binding:"required" example:"confirmed"`
}

// ListAppointments godoc
// @Summary      List appointments
// @Description  Role-scoped listing: patients see their own bookings, doctors their calendar, admins everything
// @Tags         Appointments
// @Produce      json
// @Security     SessionToken
// @Param        date query string false "Filter by date (YYYY-MM-DD)"
// @Param        status query string false "Filter by status"
// @Success      200 {object} util.APIResponse{data=[]model.Appointment} "Appointments retrieved"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /appointment [get]
func ListAppointments(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	act, ok := actorFromContext(c)
	if !ok {
		return
	}

	query := db.Model(&model.Appointment{}).
		Preload("Doctor.User").Preload("Doctor.Specialty").Preload("Patient")

	switch act.Role {
	case booking.RolePatient:
		query = query.Where("patient_id = ?", act.UserID)
	case booking.RoleDoctor:
		doctor, ok := fetchDoctorProfile(c, db, act.UserID)
		if !ok {
			return
		}
		query = query.Where("doctor_id = ?", doctor.ID)
	case booking.RoleAdmin:
		// Admins see the full ledger.
	}

	if date := c.Query("date"); date != "" {
		query = query.Where("appointment_date = ?", date)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var appointments []model.Appointment
	if err := query.Order("appointment_date ASC, appointment_time ASC").Find(&appointments).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve appointments", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Appointments retrieved", Data: appointments})
}

// CreateAppointment godoc
// @Summary      Book an appointment
// @Description  Reserve a slot on a doctor's calendar; the slot must be in the clinic template, in the future, and not already claimed
// @Tags         Appointments
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        request body CreateAppointmentRequest true "Booking details"
// @Success      201 {object} util.APIResponse{data=model.Appointment} "Appointment booked"
// @Failure      400 {object} util.APIResponse "Invalid booking request"
// @Failure      403 {object} util.APIResponse "Role may not book appointments"
// @Failure      404 {object} util.APIResponse "Doctor or patient not found"
// @Failure      409 {object} util.APIResponse "Slot already booked"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /appointment [post]
func CreateAppointment(c *gin.Context) {
	var req CreateAppointmentRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	act, ok := actorFromContext(c)
	if !ok {
		return
	}

	if !booking.Allowed(act.Role, booking.ActionReserve) {
		util.CallUserForbidden(c, util.APIErrorParams{
			Msg: "Role may not book appointments",
			Err: fmt.Errorf("reserve not allowed for role %s", act.Role),
		})
		return
	}

	patientID := act.UserID
	if act.Role == booking.RoleAdmin && req.PatientID != 0 {
		patientID = req.PatientID
	}

	appointment, err := booking.Reserve(db, booking.ReserveRequest{
		PatientID: patientID,
		DoctorID:  req.DoctorID,
		Date:      req.AppointmentDate,
		Time:      req.AppointmentTime,
		Reason:    req.Reason,
	})
	if err != nil {
		respondReserveError(c, db, act, req, err)
		return
	}

	util.LogBookingEvent(db, util.EventAppointmentBooked, act.UserID, c.ClientIP(),
		"appointment booked", map[string]interface{}{
			"appointment_id": appointment.ID,
			"doctor_id":      appointment.DoctorID,
			"date":           appointment.AppointmentDate,
			"time":           appointment.AppointmentTime,
		})

	util.CallSuccessCreated(c, util.APISuccessParams{Msg: "Appointment booked", Data: appointment})
}

// GetAppointment godoc
// @Summary      Get an appointment
// @Description  Retrieve a single appointment; patients and doctors only see their own
// @Tags         Appointments
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Appointment ID"
// @Success      200 {object} util.APIResponse{data=model.Appointment} "Appointment retrieved"
// @Failure      400 {object} util.APIResponse "Invalid appointment id"
// @Failure      403 {object} util.APIResponse "Not the caller's appointment"
// @Failure      404 {object} util.APIResponse "Appointment not found"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /appointment/{id} [get]
func GetAppointment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	act, ok := actorFromContext(c)
	if !ok {
		return
	}

	appointment, ok := fetchAppointmentByID(c, db, id)
	if !ok {
		return
	}

	if !booking.CanViewAppointment(act.Role, act.UserID, *appointment) {
		util.CallUserForbidden(c, util.APIErrorParams{
			Msg: "Not allowed to view this appointment",
			Err: fmt.Errorf("appointment belongs to another user"),
		})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Appointment retrieved", Data: appointment})
}

// UpdateAppointmentStatus godoc
// @Summary      Change an appointment's status
// @Description  Move the appointment along its lifecycle; cancelling frees the slot for rebooking
// @Tags         Appointments
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Appointment ID"
// @Param        request body UpdateAppointmentStatusRequest true "Target status"
// @Success      200 {object} util.APIResponse{data=model.Appointment} "Status updated"
// @Failure      400 {object} util.APIResponse "Unknown status or transition not allowed"
// @Failure      403 {object} util.APIResponse "Actor may not change this appointment"
// @Failure      404 {object} util.APIResponse "Appointment not found"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /appointment/{id}/status [patch]
func UpdateAppointmentStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateAppointmentStatusRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}
	if !isKnownStatus(req.Status) {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Unknown status",
			Err: fmt.Errorf("status must be one of confirmed, cancelled, completed"),
		})
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	act, ok := actorFromContext(c)
	if !ok {
		return
	}

	appointment, ok := fetchAppointmentByID(c, db, id)
	if !ok {
		return
	}

	if !booking.CanChangeStatus(act.Role, act.UserID, *appointment, req.Status) {
		util.CallUserForbidden(c, util.APIErrorParams{
			Msg: "Not allowed to change this appointment",
			Err: fmt.Errorf("status change denied for role %s", act.Role),
		})
		return
	}

	previous := appointment.Status
	if err := booking.Transition(db, appointment, req.Status); err != nil {
		if errors.Is(err, booking.ErrInvalidTransition) {
			util.CallUserError(c, util.APIErrorParams{
				Msg: fmt.Sprintf("Cannot move appointment from %s to %s", appointment.Status, req.Status),
				Err: err,
			})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to update status", Err: err})
		return
	}

	util.LogBookingEvent(db, util.EventAppointmentStatus, act.UserID, c.ClientIP(),
		"appointment status changed", map[string]interface{}{
			"appointment_id": appointment.ID,
			"from":           previous,
			"to":             appointment.Status,
		})

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Status updated", Data: appointment})
}

// DeleteAppointment godoc
// @Summary      Delete an appointment (admin only)
// @Description  Permanently remove an appointment record; the slot becomes bookable again
// @Tags         Appointments
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Appointment ID"
// @Success      200 {object} util.APIResponse "Appointment deleted"
// @Failure      400 {object} util.APIResponse "Invalid appointment id"
// @Failure      404 {object} util.APIResponse "Appointment not found"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /appointment/{id} [delete]
func DeleteAppointment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	act, ok := actorFromContext(c)
	if !ok {
		return
	}

	var appointment model.Appointment
	if err := db.First(&appointment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Appointment not found", Err: err})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve appointment", Err: err})
		return
	}

	// Appointment has no soft-delete column, so this removes the row.
	if err := db.Delete(&appointment).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to delete appointment", Err: err})
		return
	}

	util.LogBookingEvent(db, util.EventAppointmentDeleted, act.UserID, c.ClientIP(),
		"appointment deleted", map[string]interface{}{
			"appointment_id": appointment.ID,
			"doctor_id":      appointment.DoctorID,
			"date":           appointment.AppointmentDate,
			"time":           appointment.AppointmentTime,
		})

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Appointment deleted"})
}

func isKnownStatus(status string) bool {
	switch status {
	case model.StatusPending, model.StatusConfirmed, model.StatusCancelled, model.StatusCompleted:
		return true
	}
	return false
}

func respondReserveError(c *gin.Context, db *gorm.DB, act actor, req CreateAppointmentRequest, err error) {
	switch {
	case errors.Is(err, booking.ErrSlotTaken):
		util.LogBookingEvent(db, util.EventBookingConflict, act.UserID, c.ClientIP(),
			"booking conflict", map[string]interface{}{
				"doctor_id": req.DoctorID,
				"date":      req.AppointmentDate,
				"time":      req.AppointmentTime,
			})
		util.CallConflictError(c, util.APIErrorParams{Msg: "Slot already booked", Err: err})
	case errors.Is(err, booking.ErrDoctorNotFound):
		util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Doctor not found", Err: err})
	case errors.Is(err, booking.ErrPatientNotFound):
		util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Patient not found", Err: err})
	case errors.Is(err, booking.ErrValidation):
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid booking request", Err: err})
	default:
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to book appointment", Err: err})
	}
}

// fetchDoctorProfile resolves the doctor row owned by a user account.
func fetchDoctorProfile(c *gin.Context, db *gorm.DB, userID uint) (*model.Doctor, bool) {
	var doctor model.Doctor
	if err := db.Where("user_id = ?", userID).First(&doctor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.CallErrorNotFound(c, util.APIErrorParams{
				Msg: "No doctor profile for this account",
				Err: err,
			})
			return nil, false
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve doctor profile", Err: err})
		return nil, false
	}
	return &doctor, true
}

func fetchAppointmentByID(c *gin.Context, db *gorm.DB, id uint) (*model.Appointment, bool) {
	var appointment model.Appointment
	err := db.Preload("Doctor.User").Preload("Doctor.Specialty").Preload("Patient").
		First(&appointment, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Appointment not found", Err: err})
			return nil, false
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve appointment", Err: err})
		return nil, false
	}
	return &appointment, true
}
