package database

import "imhub/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Group{},
		&models.Resource{},
		&models.ContactSubmission{},
		&models.Contact{},
		&models.Announcement{},
		&models.ShortLink{},
	}
}
