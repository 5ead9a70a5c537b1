package endpoint

import (
	"fmt"
	"strings"
	"time"

	"github.com/clinicdesk/clinic-booking/model"
	"github.com/clinicdesk/clinic-booking/util"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

const (
	maxFailedLogins = 5
	lockoutWindow   = 15 * time.Minute
	sessionLifetime = 24 * time.Hour
)

type RegisterRequest struct {
	FirstName string `json:"first_name" binding:"required" example:"Claire"`
	LastName  string `json:"last_name" binding:"required" example:"Moreau"`
	Email     string `json:"email" binding:"required,email" example:"claire@example.com"`
	Phone     string `json:"phone" example:"+33612345678"`
	Password  string `json:"password" binding:"required,min=8" example:"password123"`
}

// Register godoc
// @Summary      Register a new patient account
// @Description  Create a user with the patient role and return a session token
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Registration details"
// @Success      201 {object} util.APIResponse{data=LoginResponse} "Account created"
// @Failure      400 {object} util.APIResponse "Invalid request or email already exists"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /auth/register [post]
func Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	if !ensureEmailAvailable(c, db, req.Email) {
		return
	}

	hashedPassword, salt, ok := hashPasswordForSignup(c, req.Password)
	if !ok {
		return
	}

	role, err := roleByName(db, model.RoleNamePatient)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Role lookup failed", Err: err})
		return
	}

	newUser := model.User{
		FirstName:    util.NormalizeName(req.FirstName),
		LastName:     util.NormalizeName(req.LastName),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:        req.Phone,
		Password:     hashedPassword,
		PasswordSalt: salt,
		RoleID:       role.ID,
	}
	if err := db.Create(&newUser).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to create new user", Err: err})
		return
	}

	util.LogSecurityEvent(util.SecurityEvent{
		EventType: util.EventSignupSuccess,
		UserID:    fmt.Sprintf("%d", newUser.ID),
		Email:     newUser.Email,
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Message:   "user registered",
	})

	ci := clientInfo{IP: c.ClientIP(), Agent: c.Request.UserAgent()}
	session, err := openSession(db, &newUser, role, ci)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to record session", Err: err})
		return
	}

	util.CallSuccessCreated(c, util.APISuccessParams{
		Msg:  "Registration successful",
		Data: LoginResponse{Token: session.SessionToken, Role: role.Name, UserID: newUser.ID},
	})
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"user@example.com"`
	Password string `json:"password" binding:"required" example:"password123"`
}

type LoginResponse struct {
	Token  string `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	Role   string `json:"role" example:"patient"`
	UserID uint   `json:"user_id" example:"1"`
}

// Login godoc
// @Summary      User login
// @Description  Authenticate with email and password, returning a session token
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} util.APIResponse{data=LoginResponse} "Login successful"
// @Failure      400 {object} util.APIResponse "Invalid credentials or locked account"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /auth/login [post]
func Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	ci := clientInfo{IP: c.ClientIP(), Agent: c.Request.UserAgent()}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user model.User
	err := db.Where("email = ?", email).First(&user).Error
	if err == gorm.ErrRecordNotFound {
		util.LogLoginFailure(email, ci.IP, ci.Agent, "user not found")
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid email or password", Err: fmt.Errorf("user not found")})
		return
	}
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Database error", Err: err})
		return
	}

	if user.LockedUntil != nil && user.LockedUntil.After(time.Now()) {
		util.LogLoginFailure(email, ci.IP, ci.Agent, "account locked")
		util.CallUserError(c, util.APIErrorParams{
			Msg: fmt.Sprintf("Account is locked until %s due to multiple failed login attempts", user.LockedUntil.Format(time.RFC3339)),
			Err: fmt.Errorf("account locked"),
		})
		return
	}

	match, err := util.VerifyPassword(req.Password, user.Password, user.PasswordSalt)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Password verification failed", Err: err})
		return
	}
	if !match {
		recordFailedLogin(db, &user, ci)
		util.LogLoginFailure(email, ci.IP, ci.Agent, "invalid password")
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid email or password", Err: fmt.Errorf("invalid password")})
		return
	}

	if user.FailedLogins > 0 || user.LockedUntil != nil {
		user.FailedLogins = 0
		user.LockedUntil = nil
		if err := db.Save(&user).Error; err != nil {
			util.LogSecurityEvent(util.SecurityEvent{
				EventType: util.EventSuspiciousActivity,
				UserID:    fmt.Sprintf("%d", user.ID),
				Email:     user.Email,
				IP:        ci.IP,
				Message:   fmt.Sprintf("failed to reset login counter: %v", err),
			})
		}
	}

	// Legacy HMAC hashes get re-hashed with argon2 on successful login.
	_ = upgradeLegacyPassword(db, &user, req.Password, ci)

	var role model.Role
	if err := db.First(&role, user.RoleID).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Role lookup failed", Err: err})
		return
	}

	session, err := openSession(db, &user, role, ci)
	if err != nil {
		util.LogLoginFailure(email, ci.IP, ci.Agent, "session creation failed")
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to record session", Err: err})
		return
	}

	util.LogLoginSuccess(fmt.Sprintf("%d", user.ID), user.Email, ci.IP, ci.Agent)
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Login successful",
		Data: LoginResponse{Token: session.SessionToken, Role: role.Name, UserID: user.ID},
	})
}

// Logout godoc
// @Summary      User logout
// @Description  Invalidate the caller's session token
// @Tags         Authentication
// @Produce      json
// @Security     SessionToken
// @Success      200 {object} util.APIResponse "Logout successful"
// @Failure      400 {object} util.APIResponse "Session not found"
// @Failure      401 {object} util.APIResponse "Session token not provided"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /auth/logout [post]
func Logout(c *gin.Context) {
	sessionToken := c.GetHeader("session-token")
	if sessionToken == "" {
		util.CallUserNotAuthorized(c, util.APIErrorParams{
			Msg: "Session token not provided",
			Err: fmt.Errorf("session token not provided"),
		})
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var session model.Session
	if err := db.Where("session_token = ?", sessionToken).First(&session).Error; err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Session not found", Err: err})
		return
	}

	var user model.User
	if err := db.First(&user, session.UserID).Error; err == nil {
		util.LogSecurityEvent(util.SecurityEvent{
			EventType: util.EventLogout,
			UserID:    fmt.Sprintf("%d", user.ID),
			Email:     user.Email,
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
			Message:   "logout",
		})
	}

	if err := db.Where("session_token = ?", sessionToken).Delete(&session).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to delete session", Err: err})
		return
	}

	_ = util.DeleteSessionFromCache(sessionToken)
	_ = util.RemoveSessionTokenFromUserSet(session.UserID, sessionToken)

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Logout successful"})
}

// CurrentUser godoc
// @Summary      Get the authenticated user
// @Description  Return the caller's user record with role name
// @Tags         Authentication
// @Produce      json
// @Security     SessionToken
// @Success      200 {object} util.APIResponse{data=model.User} "Current user"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      404 {object} util.APIResponse "User not found"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /auth/user [get]
func CurrentUser(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	act, ok := actorFromContext(c)
	if !ok {
		return
	}

	var user model.User
	if err := db.First(&user, act.UserID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.CallErrorNotFound(c, util.APIErrorParams{Msg: "User not found", Err: err})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve user", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg: "Current user",
		Data: gin.H{
			"user": user,
			"role": string(act.Role),
		},
	})
}

type clientInfo struct {
	IP    string
	Agent string
}

func ensureEmailAvailable(c *gin.Context, db *gorm.DB, email string) bool {
	var existing model.User
	err := db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return true
	}
	if err == nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Email already exists", Err: fmt.Errorf("email already exists")})
		return false
	}
	util.CallServerError(c, util.APIErrorParams{Msg: "Database error", Err: err})
	return false
}

func hashPasswordForSignup(c *gin.Context, plain string) (string, string, bool) {
	salt, err := util.GenerateSalt()
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to generate password salt", Err: err})
		return "", "", false
	}
	hashed, err := util.HashPasswordArgon2(plain, salt)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to hash password", Err: err})
		return "", "", false
	}
	return hashed, salt, true
}

func roleByName(db *gorm.DB, name string) (model.Role, error) {
	var role model.Role
	err := db.Where("name = ?", name).First(&role).Error
	return role, err
}

func recordFailedLogin(db *gorm.DB, user *model.User, ci clientInfo) {
	user.FailedLogins++
	if user.FailedLogins >= maxFailedLogins {
		lockUntil := time.Now().Add(lockoutWindow)
		user.LockedUntil = &lockUntil
		util.LogSecurityEvent(util.SecurityEvent{
			EventType: util.EventAccountLocked,
			UserID:    fmt.Sprintf("%d", user.ID),
			Email:     user.Email,
			IP:        ci.IP,
			Message:   "account locked after repeated failed logins",
		})
	}
	if err := db.Save(user).Error; err != nil {
		util.LogLoginFailure(user.Email, ci.IP, ci.Agent, "failed to update login counter")
	}
}

func upgradeLegacyPassword(db *gorm.DB, user *model.User, plain string, ci clientInfo) error {
	if user.PasswordSalt != "" {
		return nil
	}
	salt, err := util.GenerateSalt()
	if err != nil {
		return err
	}
	hashed, err := util.HashPasswordArgon2(plain, salt)
	if err != nil {
		return err
	}
	user.Password = hashed
	user.PasswordSalt = salt
	if err := db.Save(user).Error; err != nil {
		return err
	}
	util.LogSecurityEvent(util.SecurityEvent{
		EventType: util.EventPasswordChanged,
		UserID:    fmt.Sprintf("%d", user.ID),
		Email:     user.Email,
		IP:        ci.IP,
		Message:   "password hash upgraded to argon2",
	})
	return nil
}

// openSession signs a JWT for the user, records the session row, and mirrors
// it into Redis for the middleware fast path. Redis being down is tolerated.
func openSession(db *gorm.DB, user *model.User, role model.Role, ci clientInfo) (model.Session, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email":   user.Email,
		"exp":     time.Now().Add(sessionLifetime).Unix(),
		"role_id": user.RoleID,
	})
	tokenString, err := token.SignedString(util.GetJWTSecretByte())
	if err != nil {
		return model.Session{}, err
	}

	session := model.Session{
		UserID:       user.ID,
		SessionToken: tokenString,
		ExpiresAt:    time.Now().Add(sessionLifetime),
		ClientIP:     ci.IP,
		Browser:      ci.Agent,
	}
	if err := db.Create(&session).Error; err != nil {
		return model.Session{}, err
	}

	_ = util.CacheSession(tokenString, user.ID, role.ID, time.Until(session.ExpiresAt))
	_ = util.AddSessionToUserSet(user.ID, tokenString)

	return session, nil
}
