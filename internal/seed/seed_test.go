package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"imhub/internal/database"
	"imhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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

func TestGroups_Idempotent(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, Groups(db))
	require.NoError(t, Groups(db))

	var groups []models.Group
	require.NoError(t, db.Order("id").Find(&groups).Error)
	require.Len(t, groups, len(BuiltInGroups))
	for i, g := range groups {
		assert.Equal(t, BuiltInGroups[i].Name, g.Name)
		assert.True(t, g.Approved, g.Name)
		assert.False(t, g.Deleted, g.Name)
		assert.False(t, g.CreatedAt.IsZero())
	}
}

func TestFactory_BuildsValidRecords(t *testing.T) {
	db := openTestDB(t)
	f := NewFactory(db, 42)

	contacts, err := f.CreateContacts(5)
	require.NoError(t, err)
	resources, err := f.CreateResources(3)
	require.NoError(t, err)
	submissions, err := f.CreateSubmissions(2)
	require.NoError(t, err)

	assert.Len(t, contacts, 5)
	assert.Len(t, resources, 3)
	require.Len(t, submissions, 2)
	assert.False(t, submissions[0].Approved)
	assert.NotZero(t, contacts[0].ID)

	var pending int64
	require.NoError(t, db.Model(&models.ContactSubmission{}).Where("approved = ?", false).Count(&pending).Error)
	assert.Equal(t, int64(2), pending)
}

func TestFactory_Overrides(t *testing.T) {
	f := NewFactory(nil, 7)
	c := f.BuildContact(func(c *models.Contact) { c.Parish = "Portland" })
	assert.Equal(t, "Portland", c.Parish)
	assert.Contains(t, parishes, c.Parish)
}

const announcementFixture = `---
title: Fuel distribution schedule
date: 2025-11-03
priority: high
author: Logistics Cluster
tags:
  - logistics
  - fuel
---
Convoys leave **Kingston** at 06:00.
`

func TestImportAnnouncements(t *testing.T) {
	db := openTestDB(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fuel.md"), []byte(announcementFixture), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# notes"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.md"), []byte("---\ntitle: [oops\n"), 0o600))

	n, err := ImportAnnouncements(db, dir)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var a models.Announcement
	require.NoError(t, db.First(&a).Error)
	assert.Equal(t, "Fuel distribution schedule", a.Title)
	assert.Equal(t, "high", a.Priority)
	assert.Equal(t, "Logistics Cluster", a.Author)
	assert.Equal(t, models.Tags{"logistics", "fuel"}, a.Tags)
	assert.Contains(t, a.Content, "<strong>Kingston</strong>")
	assert.Equal(t, "2025-11-03", a.Date.Format("2006-01-02"))
	assert.True(t, a.Approved)

	n, err = ImportAnnouncements(db, dir)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSplitFrontMatter(t *testing.T) {
	meta, body, err := splitFrontMatter([]byte("---\ntitle: x\n---\nhello\n"))
	require.NoError(t, err)
	assert.Equal(t, "title: x", string(meta))
	assert.Equal(t, "hello\n", string(body))

	meta, body, err = splitFrontMatter([]byte("plain body"))
	require.NoError(t, err)
	assert.Nil(t, meta)
	assert.Equal(t, "plain body", string(body))

	_, _, err = splitFrontMatter([]byte("---\ntitle: x\n"))
	assert.Error(t, err)
}

func TestSeed_CleanRerun(t *testing.T) {
	db := openTestDB(t)
	opts := Options{NumContacts: 3, NumResources: 2, NumSubmissions: 1, RandomSeed: 1}

	require.NoError(t, Seed(db, opts))
	opts.ShouldClean = true
	require.NoError(t, Seed(db, opts))

	var contacts, groups int64
	require.NoError(t, db.Model(&models.Contact{}).Count(&contacts).Error)
	require.NoError(t, db.Model(&models.Group{}).Count(&groups).Error)
	assert.Equal(t, int64(3), contacts)
	assert.Equal(t, int64(len(BuiltInGroups)), groups)
}
