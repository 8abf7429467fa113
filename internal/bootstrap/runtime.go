// Package bootstrap prepares the database and cache a server process runs on.
package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"imhub/internal/auth"
	"imhub/internal/cache"
	"imhub/internal/config"
	"imhub/internal/database"
	"imhub/internal/middleware"
	"imhub/internal/models"
	"imhub/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	SeedBuiltIns bool
}

// InitRuntime connects to the DB, applies the schema, connects Redis when
// configured and prepares the initial data.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	if err := database.ApplySchema(ctx, db, cfg); err != nil {
		return nil, nil, fmt.Errorf("schema setup failed: %w", err)
	}

	// Redis is optional; a nil client means rate limits fail open.
	r := cache.InitRedis(cfg.RedisURL)

	if err := Prepare(ctx, db, cfg, opts); err != nil {
		return nil, nil, err
	}
	return db, r, nil
}

// Prepare ensures the default admin account and, when asked, the built-in data.
func Prepare(ctx context.Context, db *gorm.DB, cfg *config.Config, opts Options) error {
	if err := EnsureDefaultAdmin(ctx, db, cfg); err != nil {
		return fmt.Errorf("failed to bootstrap default admin: %w", err)
	}

	if opts.SeedBuiltIns {
		if err := seed.Groups(db.WithContext(ctx)); err != nil {
			return fmt.Errorf("failed to seed built-in groups: %w", err)
		}
		if cfg.AnnouncementsDir != "" {
			n, err := seed.ImportAnnouncements(db.WithContext(ctx), cfg.AnnouncementsDir)
			if err != nil {
				return fmt.Errorf("failed to import announcements: %w", err)
			}
			if n > 0 {
				middleware.Logger.Info("imported announcements", "count", n, "dir", cfg.AnnouncementsDir)
			}
		}
	}
	return nil
}

// EnsureDefaultAdmin creates an administrator from ADMIN_USERNAME and
// ADMIN_PASSWORD when the users table is empty. Existing accounts are never touched.
func EnsureDefaultAdmin(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	if cfg == nil || db == nil {
		return nil
	}

	var count int64
	if err := db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	username := strings.TrimSpace(cfg.AdminUsername)
	if username == "" {
		username = "admin"
	}
	if cfg.AdminPassword == "" {
		return fmt.Errorf("ADMIN_PASSWORD must be set to create the default admin")
	}

	hash, err := auth.HashPassword(cfg.AdminPassword, cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin := models.User{
		Username:     username,
		PasswordHash: hash,
		FullName:     "System Administrator",
		IsAdmin:      true,
		IsActive:     true,
	}
	if err := db.WithContext(ctx).Create(&admin).Error; err != nil {
		return err
	}

	middleware.Logger.Info("created default admin user", "username", username)
	return nil
}
