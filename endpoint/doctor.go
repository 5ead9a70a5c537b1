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

type CreateDoctorRequest struct {
	UserID            uint    `json:"user_id" binding:"required" example:"4"`
	SpecialtyID       uint    `json:"specialty_id" binding:"required" example:"1"`
	LicenseNumber     string  `json:"license_number" binding:"required" example:"FR-75-12345"`
	Bio               string  `json:"bio" example:"Cardiologist with 12 years of practice"`
	ConsultationPrice float64 `json:"consultation_price" example:"25.00"`
	AvailableDays     string  `json:"available_days" example:"Monday,Tuesday,Friday"`
}

type UpdateDoctorRequest struct {
	SpecialtyID       *uint    `json:"specialty_id"`
	LicenseNumber     *string  `json:"license_number"`
	Bio               *string  `json:"bio"`
	ConsultationPrice *float64 `json:"consultation_price"`
	IsAvailable       *bool    `json:"is_available"`
	AvailableDays     *string  `json:"available_days"`
}

// ListDoctors godoc
// @Summary      List available doctors
// @Description  Public list of doctors accepting appointments, with user and specialty resolved
// @Tags         Doctors
// @Produce      json
// @Success      200 {object} util.APIResponse{data=[]model.Doctor} "Doctors retrieved"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /doctor [get]
func ListDoctors(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	query := db.Model(&model.Doctor{}).Preload("User").Preload("Specialty")
	if specialtyID := parseUintQuery(c, "specialty_id"); specialtyID > 0 {
		query = query.Where("specialty_id = ?", specialtyID)
	}
	if c.Query("all") == "" {
		query = query.Where("is_available = ?", true)
	}

	var doctors []model.Doctor
	if err := query.Order("id ASC").Find(&doctors).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve doctors", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Doctors retrieved", Data: doctors})
}

// GetDoctor godoc
// @Summary      Get a doctor
// @Description  Retrieve a doctor profile by ID with user and specialty resolved
// @Tags         Doctors
// @Produce      json
// @Param        id path int true "Doctor ID"
// @Success      200 {object} util.APIResponse{data=model.Doctor} "Doctor retrieved"
// @Failure      400 {object} util.APIResponse "Invalid doctor id"
// @Failure      404 {object} util.APIResponse "Doctor not found"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /doctor/{id} [get]
func GetDoctor(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	doctor, ok := fetchDoctorByID(c, db, id)
	if !ok {
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Doctor retrieved", Data: doctor})
}

// CreateDoctor godoc
// @Summary      Create a doctor profile (admin only)
// @Description  Promote an existing user to doctor by attaching a practitioner profile
// @Tags         Doctors
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        request body CreateDoctorRequest true "Doctor profile"
// @Success      201 {object} util.APIResponse{data=model.Doctor} "Doctor created"
// @Failure      400 {object} util.APIResponse "Invalid request or user already a doctor"
// @Failure      404 {object} util.APIResponse "User or specialty not found"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /doctor [post]
func CreateDoctor(c *gin.Context) {
	var req CreateDoctorRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var user model.User
	if err := db.First(&user, req.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.CallErrorNotFound(c, util.APIErrorParams{Msg: "User not found", Err: err})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve user", Err: err})
		return
	}

	var specialty model.Specialty
	if err := db.First(&specialty, req.SpecialtyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Specialty not found", Err: err})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve specialty", Err: err})
		return
	}

	doctorRole, err := roleByName(db, model.RoleNameDoctor)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Role lookup failed", Err: err})
		return
	}

	doctor := model.Doctor{
		UserID:            req.UserID,
		SpecialtyID:       req.SpecialtyID,
		LicenseNumber:     req.LicenseNumber,
		Bio:               req.Bio,
		ConsultationPrice: req.ConsultationPrice,
		IsAvailable:       true,
		AvailableDays:     req.AvailableDays,
	}

	// Profile creation and the role switch commit together.
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&doctor).Error; err != nil {
			return err
		}
		return tx.Model(&user).Update("role_id", doctorRole.ID).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			util.CallUserError(c, util.APIErrorParams{Msg: "User already has a doctor profile", Err: err})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to create doctor", Err: err})
		return
	}

	// The role change invalidates cached sessions carrying the old role.
	_ = db.Where("user_id = ?", user.ID).Delete(&model.Session{}).Error
	_ = util.InvalidateUserSessions(user.ID)

	doctor.User = user
	doctor.Specialty = specialty
	util.CallSuccessCreated(c, util.APISuccessParams{Msg: "Doctor created", Data: doctor})
}

// UpdateDoctor godoc
// @Summary      Update a doctor profile (admin only)
// @Description  Update profile fields of an existing doctor
// @Tags         Doctors
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Doctor ID"
// @Param        request body UpdateDoctorRequest true "Fields to update"
// @Success      200 {object} util.APIResponse{data=model.Doctor} "Doctor updated"
// @Failure      400 {object} util.APIResponse "Invalid request"
// @Failure      404 {object} util.APIResponse "Doctor not found"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /doctor/{id} [patch]
func UpdateDoctor(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateDoctorRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	doctor, ok := fetchDoctorByID(c, db, id)
	if !ok {
		return
	}

	updates := map[string]interface{}{}
	if req.SpecialtyID != nil {
		updates["specialty_id"] = *req.SpecialtyID
	}
	if req.LicenseNumber != nil {
		updates["license_number"] = *req.LicenseNumber
	}
	if req.Bio != nil {
		updates["bio"] = *req.Bio
	}
	if req.ConsultationPrice != nil {
		updates["consultation_price"] = *req.ConsultationPrice
	}
	if req.IsAvailable != nil {
		updates["is_available"] = *req.IsAvailable
	}
	if req.AvailableDays != nil {
		updates["available_days"] = *req.AvailableDays
	}
	if len(updates) == 0 {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "At least one field must be provided",
			Err: fmt.Errorf("no fields to update"),
		})
		return
	}

	if err := db.Model(doctor).Updates(updates).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to update doctor", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Doctor updated", Data: doctor})
}

// DoctorAvailability godoc
// @Summary      List a doctor's open slots for a date
// @Description  Returns the clinic slot template minus slots already claimed by live appointments; empty when the doctor does not work that weekday or is fully booked
// @Tags         Doctors
// @Produce      json
// @Param        id path int true "Doctor ID"
// @Param        date query string true "Date (YYYY-MM-DD)"
// @Success      200 {object} util.APIResponse{data=object} "Available slots"
// @Failure      400 {object} util.APIResponse "Missing or malformed date"
// @Failure      404 {object} util.APIResponse "Doctor not found"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /doctor/{id}/availability [get]
func DoctorAvailability(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	date := c.Query("date")
	if date == "" {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Missing date query parameter",
			Err: fmt.Errorf("date is required"),
		})
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var doctor model.Doctor
	if err := db.First(&doctor, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Doctor not found", Err: err})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve doctor", Err: err})
		return
	}

	slots, err := booking.AvailableSlots(db, doctor, date)
	if err != nil {
		if errors.Is(err, booking.ErrValidation) {
			util.CallUserError(c, util.APIErrorParams{Msg: "Invalid date", Err: err})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to compute availability", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg: "Available slots",
		Data: map[string]interface{}{
			"doctor_id": doctor.ID,
			"date":      date,
			"slots":     slots,
		},
	})
}

func fetchDoctorByID(c *gin.Context, db *gorm.DB, id uint) (*model.Doctor, bool) {
	var doctor model.Doctor
	err := db.Preload("User").Preload("Specialty").First(&doctor, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Doctor not found", Err: err})
			return nil, false
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve doctor", Err: err})
		return nil, false
	}
	return &doctor, true
}
