package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Announcement priorities.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityNormal = "normal"
	PriorityLow    = "low"
)

// Tags is stored as a comma-joined column and served as a JSON list.
type Tags []string

// Value implements driver.Valuer.
func (t Tags) Value() (driver.Value, error) {
	return strings.Join(t.normalized(), ","), nil
}

// Scan implements sql.Scanner.
func (t *Tags) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case nil:
		*t = Tags{}
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("unsupported tags column type %T", src)
	}
	*t = Tags(strings.Split(raw, ",")).normalized()
	return nil
}

// MarshalJSON never emits null.
func (t Tags) MarshalJSON() ([]byte, error) {
	return json.Marshal([]string(t.normalized()))
}

// UnmarshalJSON accepts either a list or a comma-joined string.
func (t *Tags) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*t = Tags(list).normalized()
		return nil
	}
	var joined string
	if err := json.Unmarshal(data, &joined); err != nil {
		return fmt.Errorf("tags must be a list or a comma-separated string")
	}
	*t = Tags(strings.Split(joined, ",")).normalized()
	return nil
}

func (t Tags) normalized() Tags {
	out := make(Tags, 0, len(t))
	for _, tag := range t {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

// Announcement is a dated notice shown on the hub and syndicated over RSS.
type Announcement struct {
	Lifecycle
	Moderation
	Title    string    `gorm:"size:200;not null" json:"title" validate:"required,max=200"`
	Content  string    `gorm:"type:text;not null" json:"content" validate:"required"`
	Date     time.Time `gorm:"not null;index" json:"date"`
	Priority string    `gorm:"size:20;not null;default:'normal';index" json:"priority" validate:"required,oneof=high medium normal low"`
	Author   string    `gorm:"size:200" json:"author" validate:"omitempty,max=200"`
	Tags     Tags      `gorm:"type:text" json:"tags"`
}

// TableName specifies the table name for GORM.
func (Announcement) TableName() string {
	return "announcements"
}

// ApplyDefaults dates the announcement now unless given and defaults the priority.
func (a *Announcement) ApplyDefaults(now time.Time) {
	if a.Date.IsZero() {
		a.Date = now
	}
	if a.Priority == "" {
		a.Priority = PriorityNormal
	}
}
