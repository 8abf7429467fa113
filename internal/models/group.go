package models

// Group is a WhatsApp coordination group listed in the directory.
type Group struct {
	Lifecycle
	Moderation
	Name         string `gorm:"size:200;not null" json:"name" validate:"required,max=200"`
	Sector       string `gorm:"size:100;not null;index" json:"sector" validate:"required,max=100"`
	Description  string `gorm:"type:text;not null" json:"description" validate:"required"`
	Link         string `gorm:"size:500;not null" json:"link" validate:"required,url,max=500"`
	ContactName  string `gorm:"size:200" json:"contact_name" validate:"omitempty,max=200"`
	ContactEmail string `gorm:"size:200" json:"contact_email" validate:"omitempty,email,max=200"`
}

// TableName specifies the table name for GORM.
func (Group) TableName() string {
	return "whatsapp_groups"
}
