package models

// Website is a reviewable subject: a site the community leaves comments and
// karma on.
type Website struct {
	BaseModel

	Name        string  `gorm:"uniqueIndex;not null" json:"name"`
	DomainName  string  `gorm:"not null" json:"domain_name"`
	Description *string `json:"description,omitempty"`
	KarmaUp     int64   `gorm:"not null;default:0" json:"karma_up"`
	KarmaDown   int64   `gorm:"not null;default:0" json:"karma_down"`
}
