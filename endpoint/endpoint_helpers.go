package endpoint

import (
	"fmt"
	"strconv"

	"github.com/clinicdesk/clinic-booking/booking"
	"github.com/clinicdesk/clinic-booking/middleware"
	"github.com/clinicdesk/clinic-booking/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func bindJSONOrRespond(c *gin.Context, dst interface{}, msg string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: msg, Err: err})
		return false
	}
	return true
}

func getDBOrRespond(c *gin.Context) (*gorm.DB, bool) {
	db := middleware.GetDB(c)
	if db == nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Database connection not available", Err: fmt.Errorf("db is nil")})
		return nil, false
	}
	return db, true
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		util.CallUserError(c, util.APIErrorParams{
			Msg: fmt.Sprintf("Invalid %s parameter", name),
			Err: fmt.Errorf("%s must be a positive integer", name),
		})
		return 0, false
	}
	return uint(id), true
}

// actor is the authenticated caller as resolved by ValidateLoginToken.
type actor struct {
	UserID uint
	Role   booking.Role
}

func actorFromContext(c *gin.Context) (actor, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		util.CallUserNotAuthorized(c, util.APIErrorParams{
			Msg: "User not authenticated",
			Err: fmt.Errorf("user id not found in context"),
		})
		return actor{}, false
	}
	roleName, ok := middleware.GetRoleName(c)
	if !ok {
		util.CallUserNotAuthorized(c, util.APIErrorParams{
			Msg: "User not authenticated",
			Err: fmt.Errorf("role not found in context"),
		})
		return actor{}, false
	}
	role, ok := booking.RoleFromName(roleName)
	if !ok {
		util.CallUserForbidden(c, util.APIErrorParams{
			Msg: "Unknown role",
			Err: fmt.Errorf("role %q is not recognized", roleName),
		})
		return actor{}, false
	}
	return actor{UserID: userID, Role: role}, true
}
