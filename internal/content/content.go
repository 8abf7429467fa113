// Package content serves the YAML-driven page content and downloadable files.
package content

import (
	"errors"
	"io/fs"
	"os"

	"imhub/internal/middleware"
	"imhub/internal/models"

	"gopkg.in/yaml.v3"
)

// LoginContent is the public copy shown on the sign-in page.
type LoginContent struct {
	Heading     string `json:"heading"`
	Tagline     string `json:"tagline"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Loader reads the content document from disk on every call.
type Loader struct {
	path string
}

// NewLoader returns a loader for the YAML document at path.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Default is served when the content file is missing or unreadable.
func Default() map[string]interface{} {
	return map[string]interface{}{
		"title":    "IM Hub",
		"tagline":  "Information Management Dashboard",
		"sections": []interface{}{},
	}
}

// Load returns the whole content document, falling back to Default.
func (l *Loader) Load() map[string]interface{} {
	// #nosec G304: path comes from configuration
	raw, err := os.ReadFile(l.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			middleware.Logger.Warn("content file unreadable, using defaults", "path", l.path, "error", err)
		}
		return Default()
	}

	doc := map[string]interface{}{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		middleware.Logger.Warn("content file is not valid YAML, using defaults", "path", l.path, "error", err)
		return Default()
	}
	if len(doc) == 0 {
		return Default()
	}
	return doc
}

// Login returns the login copy with per-field defaults.
func (l *Loader) Login() LoginContent {
	login, _ := toMap(l.Load()["login"])
	return LoginContent{
		Heading:     stringOr(login, "heading", "IM Hub"),
		Tagline:     stringOr(login, "tagline", "Information Management Dashboard"),
		Title:       stringOr(login, "title", "Sign In"),
		Description: stringOr(login, "description", ""),
	}
}

// Navigation returns the navigation list, empty when not configured.
func (l *Loader) Navigation() []interface{} {
	if nav, ok := l.Load()["navigation"].([]interface{}); ok {
		return nav
	}
	return []interface{}{}
}

// Resources returns the static resources block, empty when not configured.
func (l *Loader) Resources() map[string]interface{} {
	if res, ok := toMap(l.Load()["resources"]); ok {
		return res
	}
	return map[string]interface{}{}
}

// Dashboard returns one dashboard definition.
func (l *Loader) Dashboard(id string) (interface{}, error) {
	return l.lookup("dashboards", id, "Dashboard not found")
}

// Form returns one form definition.
func (l *Loader) Form(id string) (interface{}, error) {
	return l.lookup("forms", id, "Form not found")
}

// Sector returns one sector page.
func (l *Loader) Sector(id string) (interface{}, error) {
	return l.lookup("sectors", id, "Sector not found")
}

func (l *Loader) lookup(section, id, missing string) (interface{}, error) {
	entries, ok := toMap(l.Load()[section])
	if !ok {
		return nil, models.NewNotFoundMessage(missing)
	}
	entry, ok := entries[id]
	if !ok {
		return nil, models.NewNotFoundMessage(missing)
	}
	return entry, nil
}

func stringOr(m map[string]interface{}, key, fallback string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return fallback
}

func toMap(v interface{}) (map[string]interface{}, bool) {
	switch t := v.(type) {
	case map[string]interface{}:
		return t, true
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			ks, ok := k.(string)
			if !ok {
				continue
			}
			out[ks] = val
		}
		return out, true
	default:
		return nil, false
	}
}
