package models

// ContactSubmission is a focal point submitted through the public form, pending review.
type ContactSubmission struct {
	Lifecycle
	Moderation
	Organization   string `gorm:"size:200;not null;index" json:"organization" validate:"required,max=200"`
	FocalPointName string `gorm:"size:200;not null" json:"focal_point_name" validate:"required,max=200"`
	Email          string `gorm:"size:200;not null" json:"email" validate:"required,email,max=200"`
	Phone          string `gorm:"size:50" json:"phone" validate:"omitempty,max=50"`
	Sector         string `gorm:"size:100;index" json:"sector" validate:"omitempty,max=100"`
	Role           string `gorm:"size:200" json:"role" validate:"omitempty,max=200"`
	Location       string `gorm:"size:200" json:"location" validate:"omitempty,max=200"`
	AdditionalInfo string `gorm:"type:text" json:"additional_info"`
}

// TableName specifies the table name for GORM.
func (ContactSubmission) TableName() string {
	return "contact_submissions"
}
