package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// Session is the server-persisted fact that a user is logged in. Rows are
// immutable once inserted: a session is destroyed by explicit logout or
// simply lapses when expires_at passes; there is no refresh.
type Session struct {
	BaseModel

	UserID    string    `gorm:"size:26;not null;index" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	IP        string    `json:"ip,omitempty"`
	EnforceIP bool      `gorm:"not null;default:false" json:"enforce_ip"`
	ExpiresAt time.Time `gorm:"index;not null" json:"expires_at"`
}

// BeforeCreate rejects records that would violate expires_at > created_at.
func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if err := s.BaseModel.BeforeCreate(tx); err != nil {
		return err
	}
	if !s.CreatedAt.IsZero() && !s.ExpiresAt.After(s.CreatedAt) {
		return errors.New("session: expires_at must be after created_at")
	}
	return nil
}
