package endpoint

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/clinicdesk/clinic-booking/model"
	"github.com/clinicdesk/clinic-booking/util"
	"github.com/stretchr/testify/assert"
)

func TestRegister_Success(t *testing.T) {
	r, db := setupEndpointTest(t)

	email := fmt.Sprintf("new%d@test.com", time.Now().UnixNano())
	w, response, err := doRequestWithHandler(r, requestSpec{
		method:       http.MethodPost,
		registerPath: "/auth/register",
		requestPath:  "/auth/register",
		handler:      Register,
		body: map[string]interface{}{
			"first_name": "Claire",
			"last_name":  "Moreau",
			"email":      email,
			"password":   "password123",
		},
	})
	assert.NoError(t, err)
	assertStatus(t, w, http.StatusCreated)
	assert.True(t, response["success"].(bool))

	data := response["data"].(map[string]interface{})
	assert.Equal(t, model.RoleNamePatient, data["role"])
	assert.NotEmpty(t, data["token"])

	var user model.User
	assert.NoError(t, db.Where("email = ?", email).First(&user).Error)
	assert.Equal(t, "Claire", user.FirstName)
	assert.NotEmpty(t, user.PasswordSalt)
	assert.NotEqual(t, "password123", user.Password)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	r, db := setupEndpointTest(t)
	user := createEndpointUser(t, db, model.RoleNamePatient, "password123")

	w, _, _ := doRequestWithHandler(r, requestSpec{
		method:       http.MethodPost,
		registerPath: "/auth/register",
		requestPath:  "/auth/register",
		handler:      Register,
		body: map[string]interface{}{
			"first_name": "Other",
			"last_name":  "Person",
			"email":      user.Email,
			"password":   "password123",
		},
	})
	assertStatus(t, w, http.StatusBadRequest)
}

func TestRegister_RejectsShortPassword(t *testing.T) {
	r, _ := setupEndpointTest(t)

	w, _, _ := doRequestWithHandler(r, requestSpec{
		method:       http.MethodPost,
		registerPath: "/auth/register",
		requestPath:  "/auth/register",
		handler:      Register,
		body: map[string]interface{}{
			"first_name": "Short",
			"last_name":  "Pass",
			"email":      "short@test.com",
			"password":   "short",
		},
	})
	assertStatus(t, w, http.StatusBadRequest)
}

func TestLogin_Success(t *testing.T) {
	r, db := setupEndpointTest(t)
	user := createEndpointUser(t, db, model.RoleNamePatient, "password123")

	w, response, err := doRequestWithHandler(r, requestSpec{
		method:       http.MethodPost,
		registerPath: "/auth/login",
		requestPath:  "/auth/login",
		handler:      Login,
		body:         map[string]interface{}{"email": user.Email, "password": "password123"},
	})
	assert.NoError(t, err)
	assertSuccessResponse(t, w, response)

	data := response["data"].(map[string]interface{})
	assert.NotEmpty(t, data["token"])
	assert.Equal(t, model.RoleNamePatient, data["role"])

	// Session row recorded for the issued token.
	var session model.Session
	assert.NoError(t, db.Where("session_token = ?", data["token"]).First(&session).Error)
	assert.Equal(t, user.ID, session.UserID)
	assert.True(t, session.ExpiresAt.After(time.Now()))
}

func TestLogin_WrongPassword(t *testing.T) {
	r, db := setupEndpointTest(t)
	user := createEndpointUser(t, db, model.RoleNamePatient, "password123")

	w, _, _ := doRequestWithHandler(r, requestSpec{
		method:       http.MethodPost,
		registerPath: "/auth/login",
		requestPath:  "/auth/login",
		handler:      Login,
		body:         map[string]interface{}{"email": user.Email, "password": "wrongpassword"},
	})
	assertStatus(t, w, http.StatusBadRequest)

	var reloaded model.User
	assert.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.Equal(t, 1, reloaded.FailedLogins)
}

func TestLogin_LocksAfterRepeatedFailures(t *testing.T) {
	r, db := setupEndpointTest(t)
	user := createEndpointUser(t, db, model.RoleNamePatient, "password123")
	r.POST("/auth/login", Login)

	for i := 0; i < maxFailedLogins; i++ {
		w, _, _ := performRequest(r, requestSpec{
			method:      http.MethodPost,
			requestPath: "/auth/login",
			body:        map[string]interface{}{"email": user.Email, "password": "wrongpassword"},
		})
		assertStatus(t, w, http.StatusBadRequest)
	}

	var reloaded model.User
	assert.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.NotNil(t, reloaded.LockedUntil)
	assert.True(t, reloaded.LockedUntil.After(time.Now()))

	// Even the right password is rejected while locked.
	w, response, _ := performRequest(r, requestSpec{
		method:      http.MethodPost,
		requestPath: "/auth/login",
		body:        map[string]interface{}{"email": user.Email, "password": "password123"},
	})
	assertStatus(t, w, http.StatusBadRequest)
	assert.Contains(t, response["msg"], "locked")
}

func TestLogin_UpgradesLegacyHash(t *testing.T) {
	r, db := setupEndpointTest(t)

	// A legacy account has an HMAC hash and no salt.
	user := model.User{
		FirstName: "Legacy",
		LastName:  "User",
		Email:     fmt.Sprintf("legacy%d@test.com", time.Now().UnixNano()),
		Password:  util.HashPassword("password123"),
		RoleID:    roleIDByName(t, db, model.RoleNamePatient),
	}
	assert.NoError(t, db.Create(&user).Error)

	w, response, err := doRequestWithHandler(r, requestSpec{
		method:       http.MethodPost,
		registerPath: "/auth/login",
		requestPath:  "/auth/login",
		handler:      Login,
		body:         map[string]interface{}{"email": user.Email, "password": "password123"},
	})
	assert.NoError(t, err)
	assertSuccessResponse(t, w, response)

	var reloaded model.User
	assert.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.NotEmpty(t, reloaded.PasswordSalt, "hash should be upgraded to argon2")

	match, err := util.VerifyPassword("password123", reloaded.Password, reloaded.PasswordSalt)
	assert.NoError(t, err)
	assert.True(t, match)
}

func TestLogout_Success(t *testing.T) {
	r, db := setupEndpointTest(t)
	user := createEndpointUser(t, db, model.RoleNamePatient, "password123")

	session := model.Session{
		UserID:       user.ID,
		SessionToken: fmt.Sprintf("tok-%d", time.Now().UnixNano()),
		ExpiresAt:    time.Now().Add(time.Hour),
	}
	assert.NoError(t, db.Create(&session).Error)

	w, response, err := doRequestWithHandler(r, requestSpec{
		method:       http.MethodPost,
		registerPath: "/auth/logout",
		requestPath:  "/auth/logout",
		handler:      Logout,
		headers:      map[string]string{"session-token": session.SessionToken},
	})
	assert.NoError(t, err)
	assertSuccessResponse(t, w, response)

	var count int64
	db.Model(&model.Session{}).Where("session_token = ?", session.SessionToken).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestLogout_MissingToken(t *testing.T) {
	r, _ := setupEndpointTest(t)

	w, _, _ := doRequestWithHandler(r, requestSpec{
		method:       http.MethodPost,
		registerPath: "/auth/logout",
		requestPath:  "/auth/logout",
		handler:      Logout,
	})
	assertStatus(t, w, http.StatusUnauthorized)
}

func TestCurrentUser_Success(t *testing.T) {
	r, db := setupEndpointTest(t)
	user := createEndpointUser(t, db, model.RoleNamePatient, "password123")

	w, response, err := doRequestWithHandler(r, requestSpec{
		method:       http.MethodGet,
		registerPath: "/auth/user",
		requestPath:  "/auth/user",
		handler:      CurrentUser,
		auth:         asActor(user, model.RoleNamePatient),
	})
	assert.NoError(t, err)
	assertSuccessResponse(t, w, response)

	data := response["data"].(map[string]interface{})
	assert.Equal(t, model.RoleNamePatient, data["role"])
	userData := data["user"].(map[string]interface{})
	assert.Equal(t, user.Email, userData["email"])
	// Password must never leak into responses.
	assert.NotContains(t, userData, "password")
}

func TestCurrentUser_Unauthenticated(t *testing.T) {
	r, _ := setupEndpointTest(t)

	w, _, _ := doRequestWithHandler(r, requestSpec{
		method:       http.MethodGet,
		registerPath: "/auth/user",
		requestPath:  "/auth/user",
		handler:      CurrentUser,
	})
	assertStatus(t, w, http.StatusUnauthorized)
}
