package seed

import (
	"fmt"

	"imhub/internal/models"

	"gorm.io/gorm"
)

// BuiltInGroup is a coordination group every deployment starts with.
type BuiltInGroup struct {
	Name        string
	Sector      string
	Description string
	Link        string
}

// BuiltInGroups defines the default WhatsApp coordination groups.
var BuiltInGroups = []BuiltInGroup{
	{Name: "IM Jamaica Coordination", Sector: "Cross-Sector", Description: "General coordination for information management across all sectors", Link: "https://chat.whatsapp.com/example1"},
	{Name: "Shelter Cluster IM", Sector: "Shelter", Description: "Information management for shelter sector activities and data collection", Link: "https://chat.whatsapp.com/example2"},
	{Name: "WASH Data Collection", Sector: "WASH", Description: "WASH sector data collection coordination and field updates", Link: "https://chat.whatsapp.com/example3"},
	{Name: "Health Assessments", Sector: "Health", Description: "Coordination for health assessments and medical facility data", Link: "https://chat.whatsapp.com/example4"},
	{Name: "Protection Monitoring", Sector: "Protection", Description: "Protection monitoring and GBV reporting coordination", Link: "https://chat.whatsapp.com/example5"},
	{Name: "Education in Emergency", Sector: "Education", Description: "Education cluster data sharing and school assessment coordination", Link: "https://chat.whatsapp.com/example6"},
	{Name: "Food Security Monitoring", Sector: "Food Security", Description: "Food security assessments and distribution tracking", Link: "https://chat.whatsapp.com/example7"},
}

// Groups seeds the built-in coordination groups as approved entries. Groups
// already present by name are left untouched, so repeated runs are harmless.
func Groups(db *gorm.DB) error {
	for _, item := range BuiltInGroups {
		err := db.Transaction(func(tx *gorm.DB) error {
			var existing int64
			if err := tx.Model(&models.Group{}).Where("name = ?", item.Name).Count(&existing).Error; err != nil {
				return err
			}
			if existing > 0 {
				return nil
			}

			group := models.Group{
				Moderation:  models.Moderation{Approved: true},
				Name:        item.Name,
				Sector:      item.Sector,
				Description: item.Description,
				Link:        item.Link,
			}
			group.PrepareCreate(now())
			return tx.Create(&group).Error
		})
		if err != nil {
			return fmt.Errorf("seed built-in group %q: %w", item.Name, err)
		}
	}
	return nil
}
