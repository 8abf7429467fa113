package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"imhub/internal/auth"
	"imhub/internal/config"
	"imhub/internal/database"
	"imhub/internal/models"
	"imhub/internal/seed"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.RunMigrations(context.Background(), db))
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		Env:           "test",
		AdminUsername: "hubadmin",
		AdminPassword: "Bootstrap0!pass",
		BcryptCost:    bcrypt.MinCost,
	}
}

func TestEnsureDefaultAdmin(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	cfg := testConfig()

	require.NoError(t, EnsureDefaultAdmin(ctx, db, cfg))

	var user models.User
	require.NoError(t, db.Where("username = ?", "hubadmin").First(&user).Error)
	assert.True(t, user.IsAdmin)
	assert.True(t, user.IsActive)
	ok, err := auth.CheckPassword(user.PasswordHash, "Bootstrap0!pass")
	require.NoError(t, err)
	assert.True(t, ok)

	cfg.AdminUsername = "someone-else"
	require.NoError(t, EnsureDefaultAdmin(ctx, db, cfg))
	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestEnsureDefaultAdmin_RequiresPassword(t *testing.T) {
	db := openTestDB(t)
	cfg := testConfig()
	cfg.AdminPassword = ""

	assert.Error(t, EnsureDefaultAdmin(context.Background(), db, cfg))
}

func TestPrepare_SeedsBuiltIns(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	cfg := testConfig()
	cfg.AnnouncementsDir = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(cfg.AnnouncementsDir, "welcome.md"),
		[]byte("---\ntitle: Welcome\n---\nThe hub is live.\n"), 0o600))

	require.NoError(t, Prepare(ctx, db, cfg, Options{SeedBuiltIns: true}))
	require.NoError(t, Prepare(ctx, db, cfg, Options{SeedBuiltIns: true}))

	var groups, announcements int64
	require.NoError(t, db.Model(&models.Group{}).Count(&groups).Error)
	require.NoError(t, db.Model(&models.Announcement{}).Count(&announcements).Error)
	assert.Equal(t, int64(len(seed.BuiltInGroups)), groups)
	assert.Equal(t, int64(1), announcements)
}

func TestPrepare_SkipsSeedingWhenDisabled(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, Prepare(context.Background(), db, testConfig(), Options{}))

	var groups int64
	require.NoError(t, db.Model(&models.Group{}).Count(&groups).Error)
	assert.Zero(t, groups)
}
