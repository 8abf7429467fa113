package service

import (
	"context"

	"imhub/internal/models"
	"imhub/internal/moderation"

	"gorm.io/gorm"
)

// QueueRow summarises the review state of one entity table for admin views.
type QueueRow struct {
	Kind     moderation.Kind `json:"kind"`
	Table    string          `json:"table"`
	Pending  int64           `json:"pending"`
	Approved int64           `json:"approved"`
	Deleted  int64           `json:"deleted"`
}

// ModerationService provides admin moderation reporting.
type ModerationService struct {
	db *gorm.DB
}

// NewModerationService returns a new ModerationService.
func NewModerationService(db *gorm.DB) *ModerationService {
	return &ModerationService{db: db}
}

var moderatedTables = []struct {
	kind  moderation.Kind
	table string
}{
	{moderation.KindResource, models.Resource{}.TableName()},
	{moderation.KindContactSubmission, models.ContactSubmission{}.TableName()},
	{moderation.KindGroup, models.Group{}.TableName()},
	{moderation.KindContact, models.Contact{}.TableName()},
	{moderation.KindAnnouncement, models.Announcement{}.TableName()},
}

// Queue returns live pending and approved counts plus soft-deleted totals per moderated table.
func (s *ModerationService) Queue(ctx context.Context) ([]QueueRow, error) {
	type rawRow struct {
		Pending  int64
		Approved int64
		Deleted  int64
	}

	rows := make([]QueueRow, 0, len(moderatedTables))
	for _, t := range moderatedTables {
		var raw rawRow
		err := s.db.WithContext(ctx).
			Table(t.table).
			Select(`COALESCE(SUM(CASE WHEN deleted = ? AND approved = ? THEN 1 ELSE 0 END), 0) AS pending,
				COALESCE(SUM(CASE WHEN deleted = ? AND approved = ? THEN 1 ELSE 0 END), 0) AS approved,
				COALESCE(SUM(CASE WHEN deleted = ? THEN 1 ELSE 0 END), 0) AS deleted`,
				false, false, false, true, true).
			Scan(&raw).Error
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		rows = append(rows, QueueRow{
			Kind:     t.kind,
			Table:    t.table,
			Pending:  raw.Pending,
			Approved: raw.Approved,
			Deleted:  raw.Deleted,
		})
	}
	return rows, nil
}
