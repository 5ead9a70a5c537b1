package model

import (
	"time"

	"gorm.io/gorm"
)

// Session is a server-side login session. The session token is handed to the
// client at login and presented on every request via the session-token header.
type Session struct {
	gorm.Model
	SessionToken string    `json:"session_token" gorm:"column:session_token;uniqueIndex;not null"`
	UserID       uint      `json:"user_id" gorm:"column:user_id;index;not null"`
	ExpiresAt    time.Time `json:"expires_at" gorm:"column:expires_at;not null"`
	ClientIP     string    `json:"client_ip" gorm:"column:client_ip;type:varchar(45)"`
	Browser      string    `json:"browser" gorm:"column:browser;type:varchar(512)"`
}
