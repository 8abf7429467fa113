package content

import (
	"os"
	"path/filepath"
	"testing"

	"imhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const contentFixture = `
title: Jamaica IM Hub
tagline: Hurricane response coordination
login:
  heading: Welcome
  title: Coordinator sign in
navigation:
  - label: Dashboards
    path: /dashboards
  - label: Contacts
    path: /contacts
dashboards:
  wash:
    title: WASH 3W
    url: https://dashboards.example.org/wash
forms:
  needs:
    title: Needs assessment
sectors:
  health:
    lead: PAHO
resources:
  guidance:
    - title: Cluster handbook
`

func writeContent(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "content.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, code, appErr.Code)
}

func TestLoader_MissingFileFallsBack(t *testing.T) {
	l := NewLoader(filepath.Join(t.TempDir(), "absent.yaml"))

	assert.Equal(t, Default(), l.Load())
	assert.Equal(t, LoginContent{
		Heading: "IM Hub",
		Tagline: "Information Management Dashboard",
		Title:   "Sign In",
	}, l.Login())
	assert.Empty(t, l.Navigation())
	assert.NotNil(t, l.Navigation())
	assert.Empty(t, l.Resources())

	_, err := l.Dashboard("wash")
	requireCode(t, err, models.CodeNotFound)
}

func TestLoader_InvalidYAMLFallsBack(t *testing.T) {
	l := NewLoader(writeContent(t, "title: [unclosed"))
	assert.Equal(t, "IM Hub", l.Load()["title"])
}

func TestLoader_Document(t *testing.T) {
	l := NewLoader(writeContent(t, contentFixture))

	doc := l.Load()
	assert.Equal(t, "Jamaica IM Hub", doc["title"])

	login := l.Login()
	assert.Equal(t, "Welcome", login.Heading)
	assert.Equal(t, "Information Management Dashboard", login.Tagline)
	assert.Equal(t, "Coordinator sign in", login.Title)
	assert.Equal(t, "", login.Description)

	assert.Len(t, l.Navigation(), 2)
	assert.Contains(t, l.Resources(), "guidance")
}

func TestLoader_Lookups(t *testing.T) {
	l := NewLoader(writeContent(t, contentFixture))

	tests := []struct {
		name    string
		lookup  func(string) (interface{}, error)
		id      string
		missing string
	}{
		{"dashboard", l.Dashboard, "wash", "Dashboard not found"},
		{"form", l.Form, "needs", "Form not found"},
		{"sector", l.Sector, "health", "Sector not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.lookup(tt.id)
			require.NoError(t, err)
			assert.NotNil(t, got)

			_, err = tt.lookup("unknown")
			requireCode(t, err, models.CodeNotFound)
			assert.EqualError(t, err, tt.missing)
		})
	}
}

func TestLoader_ReadsEveryCall(t *testing.T) {
	path := writeContent(t, "title: First\n")
	l := NewLoader(path)
	assert.Equal(t, "First", l.Load()["title"])

	require.NoError(t, os.WriteFile(path, []byte("title: Second\n"), 0o600))
	assert.Equal(t, "Second", l.Load()["title"])
}
