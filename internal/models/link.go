package models

// ShortLink maps a slug under /link/ to a destination URL.
// Links are not moderated; they only carry the soft-delete lifecycle.
type ShortLink struct {
	Lifecycle
	Title       string  `gorm:"size:200;not null" json:"title" validate:"required,max=200"`
	Slug        string  `gorm:"size:100;not null;uniqueIndex" json:"slug" validate:"required,max=100,slug"`
	URL         string  `gorm:"column:url;size:1000;not null" json:"url" validate:"required,url,max=1000"`
	Description string  `gorm:"type:text" json:"description"`
	CreatedBy   *string `gorm:"size:200;index" json:"created_by"`
}

// TableName specifies the table name for GORM.
func (ShortLink) TableName() string {
	return "links"
}
