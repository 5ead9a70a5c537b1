package endpoint

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/clinicdesk/clinic-booking/config"
	"github.com/clinicdesk/clinic-booking/middleware"
	"github.com/clinicdesk/clinic-booking/model"
	"github.com/clinicdesk/clinic-booking/util"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

// endpointTestModels is the standard set of models migrated for endpoint tests.
var endpointTestModels = []interface{}{
	&model.User{},
	&model.Role{},
	&model.Session{},
	&model.Specialty{},
	&model.Doctor{},
	&model.Appointment{},
	&model.SecurityLog{},
}

// setupEndpointTestDB connects to the shared in-memory test database,
// migrates the standard model set, wipes any leftover rows, and seeds roles.
// Cleanup drops the tables so the next test starts from scratch.
func setupEndpointTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := config.ConnectDatabase()
	if err != nil {
		t.Fatalf("failed to connect test DB: %v", err)
	}

	if err := db.AutoMigrate(endpointTestModels...); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	for _, m := range endpointTestModels {
		db.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(m)
	}
	if err := model.SeedRoles(db); err != nil {
		t.Fatalf("failed to seed roles: %v", err)
	}

	// Audit events raised by handlers land in this database.
	util.SetSecurityLoggerDB(db)

	t.Cleanup(func() {
		util.SetSecurityLoggerDB(nil)
		for _, m := range endpointTestModels {
			_ = db.Migrator().DropTable(m)
		}
	})

	return db
}

// setupEndpointTest returns a Gin engine and database connection configured
// for endpoint tests.
func setupEndpointTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := setupEndpointTestDB(t)
	r := gin.New()
	r.Use(middleware.DatabaseMiddleware(db))
	return r, db
}

// asActor returns a middleware that injects an authenticated actor into the
// request context the same way ValidateLoginToken does.
func asActor(user model.User, roleName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, user.ID)
		c.Set(middleware.RoleIDKey, user.RoleID)
		c.Set(middleware.RoleKey, roleName)
		c.Next()
	}
}

func roleIDByName(t *testing.T, db *gorm.DB, name string) uint32 {
	t.Helper()
	var role model.Role
	if err := db.Where("name = ?", name).First(&role).Error; err != nil {
		t.Fatalf("role %s not seeded: %v", name, err)
	}
	return role.ID
}

func createEndpointUser(t *testing.T, db *gorm.DB, roleName, password string) model.User {
	t.Helper()

	salt, err := util.GenerateSalt()
	assert.NoError(t, err)
	hashed, err := util.HashPasswordArgon2(password, salt)
	assert.NoError(t, err)

	user := model.User{
		FirstName:    "Test",
		LastName:     "User",
		Email:        fmt.Sprintf("%s%d@test.com", roleName, time.Now().UnixNano()),
		Password:     hashed,
		PasswordSalt: salt,
		RoleID:       roleIDByName(t, db, roleName),
	}
	assert.NoError(t, db.Create(&user).Error)
	return user
}

func createEndpointSpecialty(t *testing.T, db *gorm.DB) model.Specialty {
	t.Helper()
	specialty := model.Specialty{
		Name: fmt.Sprintf("Specialty %d", time.Now().UnixNano()),
	}
	assert.NoError(t, db.Create(&specialty).Error)
	return specialty
}

// createEndpointDoctor creates a doctor-role user with an attached
// practitioner profile working every day of the week.
func createEndpointDoctor(t *testing.T, db *gorm.DB) (model.User, model.Doctor) {
	t.Helper()

	user := createEndpointUser(t, db, model.RoleNameDoctor, "password123")
	specialty := createEndpointSpecialty(t, db)
	doctor := model.Doctor{
		UserID:            user.ID,
		SpecialtyID:       specialty.ID,
		LicenseNumber:     fmt.Sprintf("LIC-%d", time.Now().UnixNano()),
		ConsultationPrice: 25.00,
		IsAvailable:       true,
		AvailableDays:     "Sunday,Monday,Tuesday,Wednesday,Thursday,Friday,Saturday",
	}
	assert.NoError(t, db.Create(&doctor).Error)
	return user, doctor
}

// futureBookingDate returns a date far enough in the future to always pass
// the past-date check.
func futureBookingDate() string {
	return time.Now().AddDate(0, 0, 7).Format("2006-01-02")
}

type requestSpec struct {
	method       string
	registerPath string
	requestPath  string
	handler      gin.HandlerFunc
	auth         gin.HandlerFunc
	body         interface{}
	headers      map[string]string
}

func performRequest(r *gin.Engine, spec requestSpec) (*httptest.ResponseRecorder, map[string]interface{}, error) {
	var reader *strings.Reader
	setJSONHeader := false
	switch v := spec.body.(type) {
	case nil:
		reader = strings.NewReader("")
	case string:
		reader = strings.NewReader(v)
		setJSONHeader = true
	default:
		b, _ := json.Marshal(spec.body)
		reader = strings.NewReader(string(b))
		setJSONHeader = true
	}

	req := httptest.NewRequest(spec.method, spec.requestPath, reader)
	if setJSONHeader {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range spec.headers {
		req.Header.Set(key, value)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var response map[string]interface{}
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			return w, nil, err
		}
	}
	return w, response, nil
}

func doRequestWithHandler(r *gin.Engine, spec requestSpec) (*httptest.ResponseRecorder, map[string]interface{}, error) {
	handlers := []gin.HandlerFunc{}
	if spec.auth != nil {
		handlers = append(handlers, spec.auth)
	}
	handlers = append(handlers, spec.handler)
	r.Handle(spec.method, spec.registerPath, handlers...)
	return performRequest(r, spec)
}

func assertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	assert.Equal(t, expected, w.Code)
}

func assertSuccessResponse(t *testing.T, w *httptest.ResponseRecorder, response map[string]interface{}) {
	t.Helper()
	assert.Equal(t, http.StatusOK, w.Code)
	if response == nil {
		return
	}
	if success, ok := response["success"].(bool); ok {
		assert.True(t, success)
	}
}
