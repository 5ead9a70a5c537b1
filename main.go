// main.go
package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/clinicdesk/clinic-booking/config"
	"github.com/clinicdesk/clinic-booking/endpoint"
	"github.com/clinicdesk/clinic-booking/middleware"
	"github.com/clinicdesk/clinic-booking/model"
	"github.com/clinicdesk/clinic-booking/util"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.LoadConfig()

	db, err := config.ConnectDatabase()
	if err != nil {
		log.Fatalf("error connecting to database: %v", err)
	}
	if err := db.AutoMigrate(
		&model.User{},
		&model.Role{},
		&model.Session{},
		&model.Specialty{},
		&model.Doctor{},
		&model.Appointment{},
		&model.SecurityLog{},
	); err != nil {
		log.Fatalf("error migrating schema: %v", err)
	}
	if err := model.SeedRoles(db); err != nil {
		log.Fatalf("error seeding roles: %v", err)
	}

	if _, err := config.ConnectRedis(); err != nil {
		// Redis is an accelerator, not a dependency; sessions and rate
		// limiting degrade to the database when it is absent.
		log.Printf("redis unavailable, continuing without it: %v", err)
	}

	util.SetSecurityLoggerDB(db)
	util.InitUserEmailCacheFromEnv()
	if err := util.InitGeoIP(os.Getenv("GEOIP_DB_PATH")); err != nil {
		log.Printf("geoip disabled: %v", err)
	}
	defer util.CloseGeoIP()

	gin.SetMode(cfg.GinMode)

	router := gin.Default()
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.DatabaseMiddleware(db))
	router.Use(middleware.EndpointCallLogger())

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": fmt.Sprintf("Welcome to %s!", cfg.AppName),
		})
	})

	loginLimiter := middleware.RateLimiter(middleware.RateLimitConfig{})

	// Public surface
	router.POST("/auth/register", endpoint.Register)
	router.POST("/auth/login", loginLimiter, endpoint.Login)
	router.POST("/auth/logout", endpoint.Logout)
	router.GET("/token/validate", endpoint.ValidateToken)
	router.GET("/doctor", endpoint.ListDoctors)
	router.GET("/doctor/:id", endpoint.GetDoctor)
	router.GET("/doctor/:id/availability", endpoint.DoctorAvailability)
	router.GET("/specialty", endpoint.ListSpecialties)

	// Authenticated surface
	authed := router.Group("/", middleware.ValidateLoginToken())
	authed.GET("/auth/user", endpoint.CurrentUser)
	authed.GET("/appointment", endpoint.ListAppointments)
	authed.POST("/appointment", middleware.RateLimiter(middleware.RateLimitConfig{Limit: 20}), endpoint.CreateAppointment)
	authed.GET("/appointment/:id", endpoint.GetAppointment)
	authed.PATCH("/appointment/:id/status", endpoint.UpdateAppointmentStatus)

	// Admin surface
	admin := router.Group("/", middleware.ValidateLoginToken(), middleware.RequireRoles(model.RoleNameAdmin))
	admin.GET("/user", endpoint.ListUsers)
	admin.GET("/user/:id", endpoint.GetUserInfo)
	admin.PATCH("/user/:id", endpoint.AdminUpdateUser)
	admin.DELETE("/user/:id", endpoint.DeleteUser)
	admin.POST("/doctor", endpoint.CreateDoctor)
	admin.PATCH("/doctor/:id", endpoint.UpdateDoctor)
	admin.POST("/specialty", endpoint.CreateSpecialty)
	admin.DELETE("/appointment/:id", endpoint.DeleteAppointment)

	address := fmt.Sprintf(":%d", cfg.AppPort)
	if err := router.Run(address); err != nil {
		log.Fatalf("error starting server: %v", err)
	}
}
