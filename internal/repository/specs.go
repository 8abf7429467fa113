package repository

import (
	"context"
	"errors"
	"strings"

	"imhub/internal/models"
	"imhub/internal/moderation"

	"gorm.io/gorm"
)

// Concrete repositories for the directory entities.
type (
	GroupRepository             = EntityRepository[models.Group, *models.Group]
	ResourceRepository          = EntityRepository[models.Resource, *models.Resource]
	ContactSubmissionRepository = EntityRepository[models.ContactSubmission, *models.ContactSubmission]
	ContactRepository           = EntityRepository[models.Contact, *models.Contact]
	AnnouncementRepository      = EntityRepository[models.Announcement, *models.Announcement]
)

// GroupSpec lists groups by sector then name.
var GroupSpec = EntitySpec[models.Group]{
	Kind:       moderation.KindGroup,
	Resource:   "WhatsApp group",
	Filterable: []string{"sector"},
	Updatable:  []string{"name", "sector", "description", "link", "contact_name", "contact_email"},
	Order:      []string{"sector", "name", "id"},
}

// ResourceSpec lists resources by category then title.
var ResourceSpec = EntitySpec[models.Resource]{
	Kind:       moderation.KindResource,
	Resource:   "Resource",
	Filterable: []string{"category", "sector"},
	Updatable:  []string{"title", "url", "description", "category", "sector", "submitted_by", "email"},
	Order:      []string{"category", "title", "id"},
}

// ContactSubmissionSpec lists submissions by organization then focal point.
var ContactSubmissionSpec = EntitySpec[models.ContactSubmission]{
	Kind:       moderation.KindContactSubmission,
	Resource:   "Contact submission",
	Filterable: []string{"sector", "organization"},
	Updatable: []string{
		"organization", "focal_point_name", "email", "phone",
		"sector", "role", "location", "additional_info",
	},
	Order: []string{"organization", "focal_point_name", "id"},
}

// ContactSpec lists contacts by organization then name.
var ContactSpec = EntitySpec[models.Contact]{
	Kind:       moderation.KindContact,
	Resource:   "Contact",
	Filterable: []string{"sector", "parish", "status", "location_type", "organization"},
	Updatable: []string{
		"name", "organization", "position", "email", "phone", "sector", "parish",
		"community", "latitude", "longitude", "location_type", "status", "notes",
	},
	Order: []string{"organization", "name", "id"},
}

// AnnouncementSpec lists the newest announcements first.
var AnnouncementSpec = EntitySpec[models.Announcement]{
	Kind:       moderation.KindAnnouncement,
	Resource:   "Announcement",
	Filterable: []string{"priority"},
	Updatable:  []string{"title", "content", "date", "priority", "author", "tags"},
	Order:      []string{"date DESC", "id DESC"},
}

// LinkSpec lists the newest links first. Slugs are unique across live and deleted links.
var LinkSpec = EntitySpec[models.ShortLink]{
	Kind:       moderation.KindShortLink,
	Resource:   "Link",
	Filterable: []string{"created_by"},
	Updatable:  []string{"title", "slug", "url", "description"},
	Order:      []string{"created_at DESC", "id DESC"},
	Unique:     uniqueSlug,
}

func uniqueSlug(ctx context.Context, db *gorm.DB, rec *models.ShortLink) error {
	var count int64
	q := db.WithContext(ctx).Model(&models.ShortLink{}).Where("slug = ?", rec.Slug)
	if rec.ID != 0 {
		q = q.Where("id <> ?", rec.ID)
	}
	if err := q.Count(&count).Error; err != nil {
		return models.NewInternalError(err)
	}
	if count > 0 {
		return models.NewConflictError("Slug '" + rec.Slug + "' is already in use")
	}
	return nil
}

// NewGroupRepository returns the WhatsApp group repository.
func NewGroupRepository(db *gorm.DB, opts ...Option) *GroupRepository {
	return NewEntityRepository[models.Group, *models.Group](db, GroupSpec, opts...)
}

// NewResourceRepository returns the resource repository.
func NewResourceRepository(db *gorm.DB, opts ...Option) *ResourceRepository {
	return NewEntityRepository[models.Resource, *models.Resource](db, ResourceSpec, opts...)
}

// NewContactSubmissionRepository returns the contact submission repository.
func NewContactSubmissionRepository(db *gorm.DB, opts ...Option) *ContactSubmissionRepository {
	return NewEntityRepository[models.ContactSubmission, *models.ContactSubmission](db, ContactSubmissionSpec, opts...)
}

// NewContactRepository returns the field contact repository.
func NewContactRepository(db *gorm.DB, opts ...Option) *ContactRepository {
	return NewEntityRepository[models.Contact, *models.Contact](db, ContactSpec, opts...)
}

// NewAnnouncementRepository returns the announcement repository.
func NewAnnouncementRepository(db *gorm.DB, opts ...Option) *AnnouncementRepository {
	return NewEntityRepository[models.Announcement, *models.Announcement](db, AnnouncementSpec, opts...)
}

// LinkRepository adds slug resolution to the shared lifecycle operations.
type LinkRepository struct {
	*EntityRepository[models.ShortLink, *models.ShortLink]
}

// NewLinkRepository returns the short link repository.
func NewLinkRepository(db *gorm.DB, opts ...Option) *LinkRepository {
	return &LinkRepository{
		EntityRepository: NewEntityRepository[models.ShortLink, *models.ShortLink](db, LinkSpec, opts...),
	}
}

// GetBySlug resolves a live link. Soft-deleted links are reported as not found.
func (r *LinkRepository) GetBySlug(ctx context.Context, slug string) (*models.ShortLink, error) {
	ctx, span := r.startSpan(ctx, "GetBySlug")
	defer span.End()

	slug = strings.TrimSpace(slug)
	var link models.ShortLink
	err := r.db.WithContext(ctx).Where("slug = ? AND deleted = ?", slug, false).First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundMessage("Link not found")
		}
		return nil, r.internal(ctx, span, err, "read")
	}
	return &link, nil
}
