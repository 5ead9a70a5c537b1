package util

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/clinicdesk/clinic-booking/model"
	"gorm.io/gorm"
)

// SecurityEventType represents different types of security and audit events
type SecurityEventType string

const (
	EventLoginSuccess       SecurityEventType = "LOGIN_SUCCESS"
	EventLoginFailure       SecurityEventType = "LOGIN_FAILURE"
	EventSignupSuccess      SecurityEventType = "SIGNUP_SUCCESS"
	EventLogout             SecurityEventType = "LOGOUT"
	EventAccountLocked      SecurityEventType = "ACCOUNT_LOCKED"
	EventPasswordChanged    SecurityEventType = "PASSWORD_CHANGED"
	EventUnauthorizedAccess SecurityEventType = "UNAUTHORIZED_ACCESS"
	EventRateLimitExceeded  SecurityEventType = "RATE_LIMIT_EXCEEDED"
	EventSuspiciousActivity SecurityEventType = "SUSPICIOUS_ACTIVITY"
	EventEndpointCall       SecurityEventType = "ENDPOINT_CALL"

	// Booking audit events
	EventAppointmentBooked  SecurityEventType = "APPOINTMENT_BOOKED"
	EventBookingConflict    SecurityEventType = "BOOKING_CONFLICT"
	EventAppointmentStatus  SecurityEventType = "APPOINTMENT_STATUS_CHANGED"
	EventAppointmentDeleted SecurityEventType = "APPOINTMENT_DELETED"
)

// SecurityEvent represents a security event to be logged
type SecurityEvent struct {
	EventType SecurityEventType
	UserID    string
	Email     string
	IP        string
	UserAgent string
	Message   string
	Details   map[string]interface{}
}

var securityLogger *log.Logger
var securityDB *gorm.DB

// SetSecurityLoggerDB sets a gorm DB instance used by the security logger.
// Call this during application startup (e.g. in main) after DB initialization.
func SetSecurityLoggerDB(db *gorm.DB) {
	securityDB = db
}

func init() {
	securityLogger = log.New(os.Stdout, "[SECURITY] ", log.LstdFlags|log.Lmsgprefix)
}

// sanitizeLogValue removes newlines and other characters that could break log parsing
func sanitizeLogValue(value string) string {
	value = strings.ReplaceAll(value, "\n", " ")
	value = strings.ReplaceAll(value, "\r", " ")
	value = strings.ReplaceAll(value, "\t", " ")
	if len(value) > 200 {
		value = value[:200] + "..."
	}
	return value
}

// LogSecurityEvent logs a security event to stdout and persists it to the
// security_logs table when a DB has been configured (best-effort; a failed
// insert never fails the operation being logged).
func LogSecurityEvent(event SecurityEvent) {
	msg := fmt.Sprintf("Event=%s UserID=%s Email=%s IP=%s UserAgent=%s Message=%s",
		sanitizeLogValue(string(event.EventType)),
		sanitizeLogValue(event.UserID),
		sanitizeLogValue(event.Email),
		sanitizeLogValue(event.IP),
		sanitizeLogValue(event.UserAgent),
		sanitizeLogValue(event.Message),
	)

	if len(event.Details) > 0 {
		// Details are persisted as JSON, not logged raw, to avoid injection.
		msg = fmt.Sprintf("%s DetailsCount=%d", msg, len(event.Details))
	}

	securityLogger.Println(msg)

	if securityDB != nil {
		entry := model.SecurityLog{
			EventType: string(event.EventType),
			UserID:    event.UserID,
			Email:     event.Email,
			IP:        event.IP,
			Location:  LookupLocation(event.IP),
			UserAgent: event.UserAgent,
			Message:   event.Message,
		}
		if len(event.Details) > 0 {
			if raw, err := json.Marshal(event.Details); err == nil {
				entry.Details = raw
			}
		}
		if err := securityDB.Create(&entry).Error; err != nil {
			securityLogger.Printf("failed to persist security event: %v", err)
		}
	}
}

// LogLoginSuccess records a successful authentication.
func LogLoginSuccess(userID, email, ip, userAgent string) {
	LogSecurityEvent(SecurityEvent{
		EventType: EventLoginSuccess,
		UserID:    userID,
		Email:     email,
		IP:        ip,
		UserAgent: userAgent,
		Message:   "login successful",
	})
}

// LogLoginFailure records a failed authentication attempt with the reason.
func LogLoginFailure(email, ip, userAgent, reason string) {
	LogSecurityEvent(SecurityEvent{
		EventType: EventLoginFailure,
		Email:     email,
		IP:        ip,
		UserAgent: userAgent,
		Message:   fmt.Sprintf("login failed: %s", reason),
	})
}

// LogRateLimitExceeded records a rate-limited request.
func LogRateLimitExceeded(userID, ip, endpoint string) {
	LogSecurityEvent(SecurityEvent{
		EventType: EventRateLimitExceeded,
		UserID:    userID,
		IP:        ip,
		Message:   fmt.Sprintf("rate limit exceeded on %s", endpoint),
	})
}

// LogBookingEvent records a booking-domain audit event (reservation,
// conflict, status change, deletion) with the actor's email resolved through
// the user email cache.
func LogBookingEvent(db *gorm.DB, eventType SecurityEventType, actorID uint, ip, message string, details map[string]interface{}) {
	LogSecurityEvent(SecurityEvent{
		EventType: eventType,
		UserID:    fmt.Sprintf("%d", actorID),
		Email:     GetUserEmail(db, actorID),
		IP:        ip,
		Message:   message,
		Details:   details,
	})
}
