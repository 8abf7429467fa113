package models

// Resource is a user-submitted guideline, tool, template or reference link.
type Resource struct {
	Lifecycle
	Moderation
	Title       string `gorm:"size:200;not null" json:"title" validate:"required,max=200"`
	Description string `gorm:"type:text" json:"description"`
	URL         string `gorm:"column:url;size:500;not null" json:"url" validate:"required,url,max=500"`
	Category    string `gorm:"size:100;index" json:"category" validate:"omitempty,max=100"`
	Sector      string `gorm:"size:100;index" json:"sector" validate:"omitempty,max=100"`
	SubmittedBy string `gorm:"size:200" json:"submitted_by" validate:"omitempty,max=200"`
	Email       string `gorm:"size:200" json:"email" validate:"omitempty,email,max=200"`
}

// TableName specifies the table name for GORM.
func (Resource) TableName() string {
	return "resources"
}
