package observability

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "imhub_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// DatabaseQueryErrors counts failed queries by operation and table.
	DatabaseQueryErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "imhub_database_query_errors_total",
		Help: "Total number of failed database queries",
	}, []string{"operation", "table"})

	// ModerationActions counts lifecycle transitions by entity kind and action.
	ModerationActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "imhub_moderation_actions_total",
		Help: "Total number of moderation actions applied to directory records",
	}, []string{"kind", "action"})

	// LoginAttempts counts logins by credential source and outcome.
	LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "imhub_login_attempts_total",
		Help: "Total number of login attempts",
	}, []string{"source", "outcome"})

	// UpstreamFeedFetches counts upstream feed fetches by outcome.
	UpstreamFeedFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "imhub_upstream_feed_fetches_total",
		Help: "Total number of upstream feed fetches",
	}, []string{"outcome"})
)

// Moderation action labels.
const (
	ActionApprove         = "approve"
	ActionUnapprove       = "unapprove"
	ActionSoftDelete      = "soft_delete"
	ActionRestore         = "restore"
	ActionPermanentDelete = "permanent_delete"
)

const queryStartKey = "imhub:query_start"

// RegisterQueryMetrics installs GORM callbacks that time every statement.
func RegisterQueryMetrics(db *gorm.DB) error {
	cb := db.Callback()
	var errs []error

	errs = append(errs,
		cb.Create().Before("gorm:create").Register("metrics:before_create", startQueryTimer),
		cb.Create().After("gorm:create").Register("metrics:after_create", observeQuery("create")),
		cb.Query().Before("gorm:query").Register("metrics:before_query", startQueryTimer),
		cb.Query().After("gorm:query").Register("metrics:after_query", observeQuery("query")),
		cb.Update().Before("gorm:update").Register("metrics:before_update", startQueryTimer),
		cb.Update().After("gorm:update").Register("metrics:after_update", observeQuery("update")),
		cb.Delete().Before("gorm:delete").Register("metrics:before_delete", startQueryTimer),
		cb.Delete().After("gorm:delete").Register("metrics:after_delete", observeQuery("delete")),
		cb.Row().Before("gorm:row").Register("metrics:before_row", startQueryTimer),
		cb.Row().After("gorm:row").Register("metrics:after_row", observeQuery("row")),
		cb.Raw().Before("gorm:raw").Register("metrics:before_raw", startQueryTimer),
		cb.Raw().After("gorm:raw").Register("metrics:after_raw", observeQuery("raw")),
	)
	return errors.Join(errs...)
}

func startQueryTimer(tx *gorm.DB) {
	tx.InstanceSet(queryStartKey, time.Now())
}

func observeQuery(operation string) func(*gorm.DB) {
	return func(tx *gorm.DB) {
		v, ok := tx.InstanceGet(queryStartKey)
		if !ok {
			return
		}
		start, ok := v.(time.Time)
		if !ok {
			return
		}
		table := tx.Statement.Table
		if table == "" {
			table = "unknown"
		}
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
		if tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			DatabaseQueryErrors.WithLabelValues(operation, table).Inc()
		}
	}
}
