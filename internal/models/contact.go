package models

import "time"

// Contact location types.
const (
	LocationTypeField  = "field"
	LocationTypeRemote = "remote"
	LocationTypeOffice = "office"
	LocationTypeMobile = "mobile"
)

// Contact deployment statuses.
const (
	ContactStatusActive   = "active"
	ContactStatusInactive = "inactive"
	ContactStatusDeployed = "deployed"
)

// Contact is a directory entry for a field or office focal point.
// Coordinates are kept as strings to preserve the precision they were entered with.
type Contact struct {
	Lifecycle
	Moderation
	Name         string `gorm:"size:200;not null" json:"name" validate:"required,max=200"`
	Organization string `gorm:"size:200;not null;index" json:"organization" validate:"required,max=200"`
	Position     string `gorm:"size:200" json:"position" validate:"omitempty,max=200"`
	Email        string `gorm:"size:200" json:"email" validate:"omitempty,email,max=200"`
	Phone        string `gorm:"size:50" json:"phone" validate:"omitempty,max=50"`
	Sector       string `gorm:"size:100;index" json:"sector" validate:"omitempty,max=100"`
	Parish       string `gorm:"size:100;index" json:"parish" validate:"omitempty,max=100"`
	Community    string `gorm:"size:200" json:"community" validate:"omitempty,max=200"`
	Latitude     string `gorm:"size:50" json:"latitude" validate:"omitempty,max=50"`
	Longitude    string `gorm:"size:50" json:"longitude" validate:"omitempty,max=50"`
	LocationType string `gorm:"size:50;not null;default:'field'" json:"location_type" validate:"required,oneof=field remote office mobile"`
	Status       string `gorm:"size:50;not null;default:'active';index" json:"status" validate:"required,oneof=active inactive deployed"`
	Notes        string `gorm:"type:text" json:"notes"`
}

// TableName specifies the table name for GORM.
func (Contact) TableName() string {
	return "contacts"
}

// ApplyDefaults fills the enumerated defaults.
func (c *Contact) ApplyDefaults(_ time.Time) {
	if c.LocationType == "" {
		c.LocationType = LocationTypeField
	}
	if c.Status == "" {
		c.Status = ContactStatusActive
	}
}
