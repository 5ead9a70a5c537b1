package endpoint

import (
	"errors"

	"github.com/clinicdesk/clinic-booking/model"
	"github.com/clinicdesk/clinic-booking/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CreateSpecialtyRequest struct {
	Name        string `json:"name" binding:"required" example:"Cardiologie"`
	Description string `json:"description" example:"Heart and vascular care"`
	Icon        string `json:"icon" example:"heart"`
}

// ListSpecialties godoc
// @Summary      List specialties
// @Description  Public list of medical specialties
// @Tags         Specialties
// @Produce      json
// @Success      200 {object} util.APIResponse{data=[]model.Specialty} "Specialties retrieved"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /specialty [get]
func ListSpecialties(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var specialties []model.Specialty
	if err := db.Order("name ASC").Find(&specialties).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve specialties", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Specialties retrieved", Data: specialties})
}

// CreateSpecialty godoc
// @Summary      Create a specialty (admin only)
// @Description  Add a new medical specialty
// @Tags         Specialties
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        request body CreateSpecialtyRequest true "Specialty details"
// @Success      201 {object} util.APIResponse{data=model.Specialty} "Specialty created"
// @Failure      400 {object} util.APIResponse "Invalid request or name already exists"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /specialty [post]
func CreateSpecialty(c *gin.Context) {
	var req CreateSpecialtyRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	specialty := model.Specialty{
		Name:        util.NormalizeName(req.Name),
		Description: req.Description,
		Icon:        req.Icon,
	}
	if err := db.Create(&specialty).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			util.CallUserError(c, util.APIErrorParams{Msg: "Specialty already exists", Err: err})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to create specialty", Err: err})
		return
	}

	util.CallSuccessCreated(c, util.APISuccessParams{Msg: "Specialty created", Data: specialty})
}
