package models

import (
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// BaseModel provides shared fields for all persistent models. Identifiers
// are ULIDs: 26-character, lexicographically sortable, assigned once at
// creation and never reused.
type BaseModel struct {
	ID        string    `gorm:"primaryKey;size:26" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// BeforeCreate ensures a ULID identifier is generated automatically.
func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = ulid.Make().String()
	}
	return nil
}

// NewID returns a fresh ULID string.
func NewID() string {
	return ulid.Make().String()
}
