package models

// DefaultLanguage is the locale assigned to accounts that never picked one.
const DefaultLanguage = "en-US"

// User is an identity record. The password hash is server-only and must
// never appear in any representation sent to a client.
type User struct {
	BaseModel

	Name         string  `gorm:"uniqueIndex;not null" json:"name"`
	Email        *string `json:"email,omitempty"`
	Language     string  `gorm:"not null;default:en-US" json:"language"`
	IsAdmin      bool    `gorm:"not null;default:false" json:"is_admin"`
	PasswordHash string  `gorm:"not null" json:"-"`
}
