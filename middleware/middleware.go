package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/clinicdesk/clinic-booking/model"
	"github.com/clinicdesk/clinic-booking/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Context keys set by the middleware chain.
const (
	DBKey     = "db"
	UserIDKey = "user_id"
	RoleIDKey = "role_id"
	RoleKey   = "role"
)

// CORSMiddleware configures CORS headers for incoming requests.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		setCorsHeaders(c)

		// For preflight requests, respond with 204 and abort further processing.
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func setCorsHeaders(c *gin.Context) {
	c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
	c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, DELETE, PATCH")
	c.Writer.Header().Set("Access-Control-Allow-Headers", "X-Requested-With, Content-Type, Authorization, session-token")
	c.Writer.Header().Set("Access-Control-Max-Age", "86400")
	c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
	c.Writer.Header().Set("Content-Type", "application/json")
}

// DatabaseMiddleware injects the gorm DB handle into the request context.
func DatabaseMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(DBKey, db)
		c.Next()
	}
}

// GetDB returns the request-scoped gorm DB handle, or nil if not set.
func GetDB(c *gin.Context) *gorm.DB {
	v, exists := c.Get(DBKey)
	if !exists {
		return nil
	}
	db, ok := v.(*gorm.DB)
	if !ok {
		return nil
	}
	return db
}

// GetUserID returns the authenticated user's ID from the context.
func GetUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// GetRoleID returns the authenticated user's role ID from the context.
func GetRoleID(c *gin.Context) (uint32, bool) {
	v, exists := c.Get(RoleIDKey)
	if !exists {
		return 0, false
	}
	id, ok := v.(uint32)
	return id, ok
}

// GetRoleName returns the authenticated user's role name from the context.
func GetRoleName(c *gin.Context) (string, bool) {
	v, exists := c.Get(RoleKey)
	if !exists {
		return "", false
	}
	name, ok := v.(string)
	return name, ok
}

// ValidateLoginToken authenticates the request from the session-token
// header. The Redis session cache is consulted first; on a miss the
// sessions table is joined against users and roles. On success user_id,
// role_id, and the role name are stored in the gin context.
func ValidateLoginToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionToken := c.GetHeader("session-token")
		if sessionToken == "" {
			util.CallUserNotAuthorized(c, util.APIErrorParams{
				Msg: "Invalid session token",
				Err: fmt.Errorf("session token missing"),
			})
			c.Abort()
			return
		}

		db := GetDB(c)
		if db == nil {
			util.CallServerError(c, util.APIErrorParams{
				Msg: "Database connection not available",
				Err: fmt.Errorf("db is nil"),
			})
			c.Abort()
			return
		}

		if userID, roleID, ok := util.SessionFromCache(sessionToken); ok {
			if name, err := roleName(db, roleID); err == nil {
				c.Set(UserIDKey, userID)
				c.Set(RoleIDKey, roleID)
				c.Set(RoleKey, name)
				c.Next()
				return
			}
		}

		var result struct {
			UserID uint   `gorm:"column:user_id"`
			RoleID uint32 `gorm:"column:role_id"`
			Role   string `gorm:"column:role"`
		}
		err := db.Table("sessions").
			Select("sessions.user_id, users.role_id, roles.name as role").
			Joins("JOIN users ON sessions.user_id = users.id").
			Joins("JOIN roles ON users.role_id = roles.id").
			Where("session_token = ? AND expires_at > ? AND sessions.deleted_at IS NULL", sessionToken, time.Now()).
			First(&result).Error
		if err != nil {
			util.CallUserNotAuthorized(c, util.APIErrorParams{
				Msg: "Session not found",
				Err: fmt.Errorf("session expired or unknown"),
			})
			c.Abort()
			return
		}

		c.Set(UserIDKey, result.UserID)
		c.Set(RoleIDKey, result.RoleID)
		c.Set(RoleKey, result.Role)
		c.Next()
	}
}

// RequireRoles aborts with 403 unless the authenticated role is one of the
// given names. Fine-grained ownership checks stay in the handlers; this only
// gates whole route groups (e.g. admin).
func RequireRoles(names ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetRoleName(c)
		if !ok || !util.Contains(role, names) {
			util.CallUserForbidden(c, util.APIErrorParams{
				Msg: "Insufficient permissions",
				Err: fmt.Errorf("role not allowed"),
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

func roleName(db *gorm.DB, roleID uint32) (string, error) {
	var role model.Role
	if err := db.First(&role, roleID).Error; err != nil {
		return "", err
	}
	return role.Name, nil
}
