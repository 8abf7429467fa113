package models

import "time"

// User is an account allowed to sign in to the hub.
// Users are never soft-deleted; removal is permanent.
type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Username     string     `gorm:"size:100;uniqueIndex;not null" json:"username"`
	PasswordHash string     `gorm:"column:password_hash;size:255;not null" json:"-"`
	FullName     string     `gorm:"size:200" json:"full_name"`
	Email        string     `gorm:"size:200" json:"email"`
	IsAdmin      bool       `gorm:"not null" json:"is_admin"`
	IsActive     bool       `gorm:"not null" json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	LastLogin    *time.Time `json:"last_login"`
}

// TableName specifies the table name for GORM.
func (User) TableName() string {
	return "users"
}
