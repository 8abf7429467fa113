package seed

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"imhub/internal/middleware"
	"imhub/internal/models"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// announcementFrontMatter is the YAML header of a markdown announcement.
type announcementFrontMatter struct {
	Title    string   `yaml:"title"`
	Date     string   `yaml:"date"`
	Priority string   `yaml:"priority"`
	Author   string   `yaml:"author"`
	Tags     []string `yaml:"tags"`
}

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// ImportAnnouncements loads every *.md file in dir (README.md excepted) as an
// approved announcement. It only runs against an empty announcements table and
// returns how many were imported. Files that fail to parse are logged and skipped.
func ImportAnnouncements(db *gorm.DB, dir string) (int, error) {
	var count int64
	if err := db.Model(&models.Announcement{}).Count(&count).Error; err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	paths, err := filepath.Glob(filepath.Join(dir, "*.md"))
	if err != nil {
		return 0, err
	}
	sort.Strings(paths)

	imported := 0
	for _, path := range paths {
		if strings.EqualFold(filepath.Base(path), "README.md") {
			continue
		}
		a, err := parseAnnouncement(path)
		if err != nil {
			middleware.Logger.Warn("skipping announcement file", "file", filepath.Base(path), "error", err)
			continue
		}
		if err := db.Create(a).Error; err != nil {
			return imported, fmt.Errorf("import %s: %w", filepath.Base(path), err)
		}
		imported++
	}
	return imported, nil
}

func parseAnnouncement(path string) (*models.Announcement, error) {
	// #nosec G304: path comes from a glob over the configured directory
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	meta, body, err := splitFrontMatter(raw)
	if err != nil {
		return nil, err
	}

	var fm announcementFrontMatter
	if err := yaml.Unmarshal(meta, &fm); err != nil {
		return nil, fmt.Errorf("front matter: %w", err)
	}

	var rendered bytes.Buffer
	if err := markdown.Convert(body, &rendered); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}

	stamp := now()
	a := &models.Announcement{
		Moderation: models.Moderation{Approved: true},
		Title:      fm.Title,
		Content:    rendered.String(),
		Date:       parseDate(fm.Date, stamp),
		Priority:   fm.Priority,
		Author:     fm.Author,
		Tags:       models.Tags(fm.Tags),
	}
	if a.Title == "" {
		a.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if a.Author == "" {
		a.Author = "IM Team"
	}
	a.PrepareCreate(stamp)
	a.ApplyDefaults(stamp)
	return a, nil
}

// splitFrontMatter separates a leading "---" delimited YAML block from the body.
// A file without one is all body.
func splitFrontMatter(raw []byte) (meta, body []byte, err error) {
	text := strings.TrimPrefix(string(raw), "\ufeff")
	if !strings.HasPrefix(text, "---") {
		return nil, []byte(text), nil
	}
	rest := strings.TrimLeft(text[3:], " \t")
	rest = strings.TrimPrefix(strings.TrimPrefix(rest, "\r"), "\n")
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return nil, nil, fmt.Errorf("unterminated front matter")
	}
	body = []byte(strings.TrimLeft(rest[end+4:], "-\r\n"))
	return []byte(rest[:end]), body, nil
}

func parseDate(value string, fallback time.Time) time.Time {
	value = strings.TrimSpace(value)
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC()
		}
	}
	return fallback
}
