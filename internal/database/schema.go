package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"imhub/internal/config"
	"imhub/internal/middleware"

	"gorm.io/gorm"
)

const (
	SchemaModeHybrid = "hybrid"
	SchemaModeSQL    = "sql"
	SchemaModeAuto   = "auto"
)

// schemaPlan is the resolved schema policy for one connection.
type schemaPlan struct {
	Mode    string
	Dialect string
	RunSQL  bool
	RunAuto bool
}

// MigrationSet is the embedded migration set of one dialect. Applied and
// Pending are only filled for the dialect of the inspected connection.
type MigrationSet struct {
	Dialect    string
	Active     bool
	Registered []Migration
	Applied    []int
	Pending    []Migration
}

// SchemaStatus is what ApplySchema would do for a connection, plus the state
// of every shipped migration set.
type SchemaStatus struct {
	Mode               string
	Environment        string
	Dialect            string
	WillRunSQL         bool
	WillRunAutoMigrate bool
	Sets               []MigrationSet
	// MissingTables lists directory tables absent from the connected store.
	MissingTables []string
}

// ActiveSet returns the migration set of the connected dialect, or nil.
func (s *SchemaStatus) ActiveSet() *MigrationSet {
	for i := range s.Sets {
		if s.Sets[i].Active {
			return &s.Sets[i]
		}
	}
	return nil
}

// UpToDate reports whether nothing is pending and every table exists.
func (s *SchemaStatus) UpToDate() bool {
	if len(s.MissingTables) > 0 {
		return false
	}
	active := s.ActiveSet()
	return active == nil || len(active.Pending) == 0
}

func isProdLikeEnv(env string) bool {
	e := strings.ToLower(strings.TrimSpace(env))
	return e == "production" || e == "prod" || e == "staging" || e == "stage"
}

func normalizedSchemaMode(cfg *config.Config) string {
	mode := strings.ToLower(strings.TrimSpace(cfg.DBSchemaMode))
	if mode == "" {
		return SchemaModeSQL
	}
	return mode
}

// planSchema decides how the tables are created on a connection of the given
// dialect. The SQL path needs an embedded set for that dialect; AutoMigrate
// against a shared (prod-like) store needs an explicit opt-in.
func planSchema(cfg *config.Config, dialect string) (schemaPlan, error) {
	plan := schemaPlan{Mode: normalizedSchemaMode(cfg), Dialect: dialect}

	if driver := strings.ToLower(strings.TrimSpace(cfg.DBDriver)); driver != "" && driver != dialect {
		return plan, fmt.Errorf("connection dialect %q does not match DB_DRIVER %q", dialect, driver)
	}

	prodLike := isProdLikeEnv(cfg.Env)
	switch plan.Mode {
	case SchemaModeSQL:
		plan.RunSQL = true
	case SchemaModeAuto:
		if prodLike && !cfg.DBAutoMigrateAllowDestructive {
			return plan, fmt.Errorf("refusing DB_SCHEMA_MODE=auto on %s in %q without DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE=true", dialect, cfg.Env)
		}
		plan.RunAuto = true
	case SchemaModeHybrid:
		plan.RunSQL = true
		plan.RunAuto = !prodLike
	default:
		return plan, fmt.Errorf("unsupported DB_SCHEMA_MODE %q", plan.Mode)
	}

	if plan.RunSQL && len(GetMigrations(dialect)) == 0 {
		return plan, fmt.Errorf("DB_SCHEMA_MODE=%s needs SQL migrations, none ship for %q (have %s)",
			plan.Mode, dialect, strings.Join(Dialects(), ", "))
	}
	return plan, nil
}

// ApplySchema creates the directory tables according to the schema plan and
// fails when any of them is still missing afterwards.
func ApplySchema(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	plan, err := planSchema(cfg, db.Dialector.Name())
	if err != nil {
		return err
	}

	if plan.RunSQL {
		if err := RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("run %s migrations: %w", plan.Dialect, err)
		}
	}

	if plan.RunAuto {
		if plan.Mode == SchemaModeAuto && cfg.DBAutoMigrateAllowDestructive {
			middleware.Logger.Warn("DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE=true set for DB_SCHEMA_MODE=auto; review schema diffs before production deployment")
		}
		middleware.Logger.Info("Running GORM AutoMigrate",
			slog.String("mode", plan.Mode), slog.String("dialect", plan.Dialect), slog.String("env", cfg.Env))
		if err := db.WithContext(ctx).AutoMigrate(PersistentModels()...); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
	}

	if missing := missingTables(db); len(missing) > 0 {
		return fmt.Errorf("schema incomplete on %s, missing tables: %s", plan.Dialect, strings.Join(missing, ", "))
	}
	return nil
}

// GetSchemaStatus reports the plan, every dialect's migration set and the
// missing tables without changing anything.
func GetSchemaStatus(ctx context.Context, db *gorm.DB, cfg *config.Config) (*SchemaStatus, error) {
	dialect := db.Dialector.Name()
	plan, err := planSchema(cfg, dialect)
	if err != nil {
		return nil, err
	}

	status := &SchemaStatus{
		Mode:               plan.Mode,
		Environment:        cfg.Env,
		Dialect:            dialect,
		WillRunSQL:         plan.RunSQL,
		WillRunAutoMigrate: plan.RunAuto,
		MissingTables:      missingTables(db),
	}

	for _, d := range Dialects() {
		set := MigrationSet{Dialect: d, Registered: GetMigrations(d), Active: d == dialect}
		if set.Active {
			applied, err := NewMigrationStore(db).GetAppliedMigrations(ctx)
			if err != nil {
				return nil, err
			}
			set.Applied = applied
			set.Pending = pendingMigrations(set.Registered, applied)
		}
		status.Sets = append(status.Sets, set)
	}
	return status, nil
}

func pendingMigrations(registered []Migration, applied []int) []Migration {
	done := make(map[int]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}
	var out []Migration
	for _, m := range registered {
		if !done[m.Version] {
			out = append(out, m)
		}
	}
	return out
}

// missingTables returns the names of schema-managed tables not present in db.
func missingTables(db *gorm.DB) []string {
	var out []string
	for _, model := range PersistentModels() {
		if db.Migrator().HasTable(model) {
			continue
		}
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			out = append(out, fmt.Sprintf("%T", model))
			continue
		}
		out = append(out, stmt.Schema.Table)
	}
	return out
}
