// Command migrate manages the IM Hub schema: the embedded SQL sets for
// sqlite and postgres, AutoMigrate, and the directory-table check.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"imhub/internal/config"
	"imhub/internal/database"

	"gorm.io/gorm"
)

const usageText = `usage: migrate <command>

  up              apply pending SQL migrations for the configured DB_DRIVER
  auto            run GORM AutoMigrate (refused on prod-like APP_ENV without DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE)
  status          show the schema plan, every dialect's migration set and missing tables
  check           like status, but exit non-zero unless the schema is complete
  down [version]  roll back one migration (default: the latest applied)`

var errSchemaIncomplete = errors.New("schema is not up to date")

func main() {
	flag.Usage = func() { fmt.Fprintln(os.Stderr, usageText) }
	flag.Parse()
	if err := run(context.Background(), flag.Args()); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New(usageText)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.Open(cfg)
	if err != nil {
		return fmt.Errorf("connect %s database: %w", cfg.DBDriver, err)
	}

	return runCommand(ctx, db, cfg, args, os.Stdout)
}

func runCommand(ctx context.Context, db *gorm.DB, cfg *config.Config, args []string, out io.Writer) error {
	cmd := strings.ToLower(strings.TrimSpace(args[0]))
	switch cmd {
	case "up":
		if err := database.RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("%s migrations failed: %w", db.Dialector.Name(), err)
		}
		fmt.Fprintf(out, "%s migrations applied\n", db.Dialector.Name())
	case "auto":
		cfg.DBSchemaMode = database.SchemaModeAuto
		if err := database.ApplySchema(ctx, db, cfg); err != nil {
			return fmt.Errorf("auto schema apply failed: %w", err)
		}
		fmt.Fprintln(out, "automigrations applied")
	case "status", "check":
		status, err := database.GetSchemaStatus(ctx, db, cfg)
		if err != nil {
			return fmt.Errorf("schema status failed: %w", err)
		}
		printStatus(out, status)
		if cmd == "check" && !status.UpToDate() {
			return errSchemaIncomplete
		}
	case "down":
		version, err := rollbackTarget(ctx, db, cfg, args[1:])
		if err != nil {
			return err
		}
		if err := database.RollbackMigration(ctx, db, version); err != nil {
			return fmt.Errorf("rollback failed: %w", err)
		}
		fmt.Fprintf(out, "rolled back %s migration %06d\n", db.Dialector.Name(), version)
	default:
		return errors.New(usageText)
	}
	return nil
}

// rollbackTarget reads the version argument, or picks the latest applied one.
func rollbackTarget(ctx context.Context, db *gorm.DB, cfg *config.Config, args []string) (int, error) {
	if len(args) > 0 {
		version, err := strconv.Atoi(args[0])
		if err != nil {
			return 0, fmt.Errorf("invalid version %q: %w", args[0], err)
		}
		return version, nil
	}

	status, err := database.GetSchemaStatus(ctx, db, cfg)
	if err != nil {
		return 0, err
	}
	active := status.ActiveSet()
	if active == nil || len(active.Applied) == 0 {
		return 0, fmt.Errorf("no applied %s migrations to roll back", status.Dialect)
	}
	return active.Applied[len(active.Applied)-1], nil
}

func printStatus(w io.Writer, s *database.SchemaStatus) {
	fmt.Fprintf(w, "mode=%s env=%s dialect=%s run_sql=%t run_auto=%t\n",
		s.Mode, s.Environment, s.Dialect, s.WillRunSQL, s.WillRunAutoMigrate)

	for _, set := range s.Sets {
		if !set.Active {
			fmt.Fprintf(w, "%s: %d registered (not connected)\n", set.Dialect, len(set.Registered))
			continue
		}
		fmt.Fprintf(w, "%s: %d registered, %d applied, %d pending\n",
			set.Dialect, len(set.Registered), len(set.Applied), len(set.Pending))
		for _, m := range set.Pending {
			fmt.Fprintf(w, "  pending %s\n", m.String())
		}
	}

	if len(s.MissingTables) > 0 {
		fmt.Fprintf(w, "missing tables: %s\n", strings.Join(s.MissingTables, ", "))
	}
}
