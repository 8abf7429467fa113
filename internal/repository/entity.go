// Package repository implements the data access layer for the hub.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"imhub/internal/middleware"
	"imhub/internal/models"
	"imhub/internal/moderation"
	"imhub/internal/observability"
	"imhub/internal/validation"

	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

// Patch is a partial update keyed by JSON field name. Absent members are left untouched.
type Patch map[string]json.RawMessage

// ListOptions narrows a listing. The zero value lists every non-deleted row.
type ListOptions struct {
	// Filters are exact-match column filters; keys outside the entity's
	// filterable set are ignored.
	Filters        map[string]string
	IncludeDeleted bool
	OnlyDeleted    bool
	ApprovedOnly   bool
	Limit          int
}

// EntitySpec describes how one entity type is listed, filtered and updated.
type EntitySpec[T any] struct {
	Kind       moderation.Kind
	Resource   string
	Filterable []string
	Updatable  []string
	Order      []string
	// Unique runs before every insert and update. rec carries its own id on update.
	Unique func(ctx context.Context, db *gorm.DB, rec *T) error
}

// Record is satisfied by a pointer to any model embedding models.Lifecycle.
type Record[T any] interface {
	*T
	models.Entity
}

// EntityRepository implements the shared soft-delete and moderation lifecycle.
type EntityRepository[T any, PT Record[T]] struct {
	db         *gorm.DB
	spec       EntitySpec[T]
	now        func() time.Time
	table      string
	filterable map[string]bool
	updatable  map[string]bool
	logger     *observability.RepoLogger
	tracer     *observability.TraceLayer
}

// Option configures an EntityRepository.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the time source used for created_at and updated_at.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func defaultNow() time.Time { return time.Now().UTC() }

func buildOptions(opts []Option) options {
	o := options{now: defaultNow}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewEntityRepository returns a repository for T described by spec.
func NewEntityRepository[T any, PT Record[T]](db *gorm.DB, spec EntitySpec[T], opts ...Option) *EntityRepository[T, PT] {
	o := buildOptions(opts)

	table := strings.ToLower(spec.Resource)
	if tn, ok := any(new(T)).(schema.Tabler); ok {
		table = tn.TableName()
	}

	return &EntityRepository[T, PT]{
		db:         db.Session(&gorm.Session{NowFunc: o.now}),
		spec:       spec,
		now:        o.now,
		table:      table,
		filterable: toSet(spec.Filterable),
		updatable:  toSet(spec.Updatable),
		logger:     observability.NewRepoLogger(table, middleware.Logger),
		tracer:     observability.GetTraceLayer(),
	}
}

// Kind returns the moderation kind of the entity.
func (r *EntityRepository[T, PT]) Kind() moderation.Kind { return r.spec.Kind }

// Resource returns the human-readable entity name used in error messages.
func (r *EntityRepository[T, PT]) Resource() string { return r.spec.Resource }

// List returns rows in the entity's deterministic order. Never returns a nil slice.
func (r *EntityRepository[T, PT]) List(ctx context.Context, opts ListOptions) ([]T, error) {
	ctx, span := r.startSpan(ctx, "List")
	defer span.End()

	q := r.db.WithContext(ctx).Model(new(T))
	switch {
	case opts.OnlyDeleted:
		q = q.Where("deleted = ?", true)
	case !opts.IncludeDeleted:
		q = q.Where("deleted = ?", false)
	}
	if opts.ApprovedOnly && moderation.IsModerated(r.spec.Kind) {
		q = q.Where("approved = ?", true)
	}

	keys := make([]string, 0, len(opts.Filters))
	for k, v := range opts.Filters {
		if r.filterable[k] && v != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		q = q.Where(clause.Eq{Column: clause.Column{Name: k}, Value: opts.Filters[k]})
	}

	for _, o := range r.spec.Order {
		q = q.Order(o)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}

	rows := make([]T, 0)
	if err := q.Find(&rows).Error; err != nil {
		return nil, r.internal(ctx, span, err, "list")
	}
	return rows, nil
}

// Get returns the record with id regardless of its lifecycle state.
func (r *EntityRepository[T, PT]) Get(ctx context.Context, id uint) (*T, error) {
	ctx, span := r.startSpan(ctx, "Get")
	defer span.End()
	return r.load(ctx, span, id)
}

// Create inserts rec with server-assigned id, timestamps, defaults and approval state.
func (r *EntityRepository[T, PT]) Create(ctx context.Context, rec *T) error {
	ctx, span := r.startSpan(ctx, "Create")
	defer span.End()

	now := r.now()
	PT(rec).PrepareCreate(now)
	if d, ok := any(rec).(models.Defaulter); ok {
		d.ApplyDefaults(now)
	}
	if m, ok := any(rec).(models.Moderated); ok {
		approved, _ := moderation.DefaultApproved(r.spec.Kind)
		m.SetApproved(approved)
	}

	if err := validation.Struct(rec); err != nil {
		return err
	}

	db := r.db.WithContext(ctx)
	if r.spec.Unique != nil {
		if err := r.spec.Unique(ctx, db, rec); err != nil {
			return err
		}
	}

	if err := db.Create(rec).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError(r.spec.Resource + " already exists")
		}
		return r.internal(ctx, span, err, "create")
	}

	r.logger.LogCreate(ctx, map[string]any{"id": PT(rec).GetID()})
	return nil
}

// Update applies the updatable members of patch to the record with id,
// re-validates the merged record and refreshes updated_at.
func (r *EntityRepository[T, PT]) Update(ctx context.Context, id uint, patch Patch) (*T, error) {
	ctx, span := r.startSpan(ctx, "Update")
	defer span.End()

	rec, err := r.load(ctx, span, id)
	if err != nil {
		return nil, err
	}

	filtered := make(map[string]json.RawMessage, len(patch))
	cols := make([]string, 0, len(patch)+1)
	for k, v := range patch {
		if r.updatable[k] {
			filtered[k] = v
			cols = append(cols, k)
		}
	}
	sort.Strings(cols)

	if len(filtered) > 0 {
		raw, err := json.Marshal(filtered)
		if err != nil {
			return nil, models.NewValidationError("Invalid request body")
		}
		if err := json.Unmarshal(raw, rec); err != nil {
			return nil, models.NewValidationError("Invalid field value: " + err.Error())
		}
	}
	PT(rec).Touch(r.now())

	if err := validation.Struct(rec); err != nil {
		return nil, err
	}

	db := r.db.WithContext(ctx)
	if r.spec.Unique != nil {
		if err := r.spec.Unique(ctx, db, rec); err != nil {
			return nil, err
		}
	}

	cols = append(cols, "updated_at")
	if err := db.Model(rec).Select(cols).Updates(rec).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, models.NewConflictError(r.spec.Resource + " already exists")
		}
		return nil, r.internal(ctx, span, err, "update")
	}

	r.logger.LogUpdate(ctx, map[string]any{"id": id, "fields": cols})
	return rec, nil
}

// SetApproval sets the approval flag. Repeating the call is harmless.
func (r *EntityRepository[T, PT]) SetApproval(ctx context.Context, id uint, approved bool) (*T, error) {
	if !moderation.IsModerated(r.spec.Kind) {
		return nil, models.NewValidationError(r.spec.Resource + " records are not moderated")
	}

	action := observability.ActionApprove
	if !approved {
		action = observability.ActionUnapprove
	}
	return r.transition(ctx, "SetApproval", id, "approved", action, func(rec *T) {
		any(rec).(models.Moderated).SetApproved(approved)
	})
}

// SoftDelete hides the record from default listings.
func (r *EntityRepository[T, PT]) SoftDelete(ctx context.Context, id uint) (*T, error) {
	return r.transition(ctx, "SoftDelete", id, "deleted", observability.ActionSoftDelete, func(rec *T) {
		PT(rec).SetDeleted(true)
	})
}

// Restore clears the soft-delete flag.
func (r *EntityRepository[T, PT]) Restore(ctx context.Context, id uint) (*T, error) {
	return r.transition(ctx, "Restore", id, "deleted", observability.ActionRestore, func(rec *T) {
		PT(rec).SetDeleted(false)
	})
}

// PermanentDelete removes the row. It cannot be undone.
func (r *EntityRepository[T, PT]) PermanentDelete(ctx context.Context, id uint) error {
	ctx, span := r.startSpan(ctx, "PermanentDelete")
	defer span.End()

	res := r.db.WithContext(ctx).Delete(new(T), id)
	if res.Error != nil {
		return r.internal(ctx, span, res.Error, "delete")
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError(r.spec.Resource, id)
	}

	observability.ModerationActions.WithLabelValues(string(r.spec.Kind), observability.ActionPermanentDelete).Inc()
	r.logger.LogDelete(ctx, map[string]any{"id": id, "permanent": true})
	return nil
}

// transition loads, mutates and persists a single lifecycle column plus updated_at.
func (r *EntityRepository[T, PT]) transition(ctx context.Context, method string, id uint, column, action string, mutate func(*T)) (*T, error) {
	ctx, span := r.startSpan(ctx, method)
	defer span.End()

	rec, err := r.load(ctx, span, id)
	if err != nil {
		return nil, err
	}
	mutate(rec)
	PT(rec).Touch(r.now())

	if err := r.db.WithContext(ctx).Model(rec).Select(column, "updated_at").Updates(rec).Error; err != nil {
		return nil, r.internal(ctx, span, err, method)
	}

	observability.ModerationActions.WithLabelValues(string(r.spec.Kind), action).Inc()
	r.logger.LogModeration(ctx, action, map[string]any{"id": id})
	return rec, nil
}

func (r *EntityRepository[T, PT]) load(ctx context.Context, span trace.Span, id uint) (*T, error) {
	rec := new(T)
	if err := r.db.WithContext(ctx).First(rec, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError(r.spec.Resource, id)
		}
		return nil, r.internal(ctx, span, err, "read")
	}
	return rec, nil
}

func (r *EntityRepository[T, PT]) startSpan(ctx context.Context, method string) (context.Context, trace.Span) {
	return r.tracer.TraceRepositoryMethod(ctx, method, r.table, r.db.Dialector.Name())
}

func (r *EntityRepository[T, PT]) internal(ctx context.Context, span trace.Span, err error, operation string) error {
	observability.RecordSpanError(span, err)
	r.logger.LogError(ctx, err, operation)
	return models.NewInternalError(err)
}

// pgUniqueViolation is the PostgreSQL SQLSTATE for a unique index conflict.
const pgUniqueViolation = "23505"

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	// SQLite reports "UNIQUE constraint failed"
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint")
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}
