package models

import (
	"fmt"
	"time"
)

// ParentKind tags the kind of subject a comment is attached to. Kinds map to
// fixed table identifiers through commentTables; table names are never
// assembled from request input.
type ParentKind string

// Supported comment parents.
const (
	ParentWebsite ParentKind = "website"
)

var commentTables = map[ParentKind]string{
	ParentWebsite: "website_comments",
}

// Table returns the fixed comment table identifier for the kind.
func (k ParentKind) Table() (string, error) {
	table, ok := commentTables[k]
	if !ok {
		return "", fmt.Errorf("models: unknown comment parent kind %q", k)
	}
	return table, nil
}

// ParentKinds lists every supported comment parent kind.
func ParentKinds() []ParentKind {
	kinds := make([]ParentKind, 0, len(commentTables))
	for kind := range commentTables {
		kinds = append(kinds, kind)
	}
	return kinds
}

// Valid reports whether the kind is a known comment parent.
func (k ParentKind) Valid() bool {
	_, ok := commentTables[k]
	return ok
}

// Comment is a user remark attached to a reviewable subject.
type Comment struct {
	BaseModel

	ParentID  string    `gorm:"size:26;not null;index" json:"parent_id"`
	UserID    string    `gorm:"size:26;not null;index" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Text      string    `gorm:"not null" json:"text"`
	UpdatedAt time.Time `json:"updated_at"`
}
