package server

import (
	"fmt"
	"net/http"
	"testing"

	"imhub/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactScenario(t *testing.T) {
	s, app := newTestServer(t)
	admin := tokenFor(t, s, "coordinator", true)

	status, raw := doRequest(t, app, http.MethodPost, "/api/contacts", admin, map[string]any{
		"name": "A", "organization": "B", "location_type": "field", "status": "active",
	})
	require.Equal(t, fiber.StatusCreated, status, string(raw))
	created := decode[map[string]any](t, raw)
	assert.Equal(t, true, created["approved"])
	assert.Equal(t, false, created["deleted"])
	id := created["id"].(float64)

	status, raw = doRequest(t, app, http.MethodGet, "/api/contacts", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, []float64{id}, idsOf(decode[[]map[string]any](t, raw)))

	status, _ = doRequest(t, app, http.MethodDelete, fmt.Sprintf("/api/contacts/%d", int(id)), admin, nil)
	require.Equal(t, fiber.StatusOK, status)

	status, raw = doRequest(t, app, http.MethodGet, "/api/contacts", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Empty(t, decode[[]map[string]any](t, raw))

	status, raw = doRequest(t, app, http.MethodGet, "/api/contacts?include_deleted=true", admin, nil)
	require.Equal(t, fiber.StatusOK, status)
	rows := decode[[]map[string]any](t, raw)
	require.Len(t, rows, 1)
	assert.Equal(t, true, rows[0]["deleted"])

	status, raw = doRequest(t, app, http.MethodGet, "/api/contacts/deleted", admin, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, []float64{id}, idsOf(decode[[]map[string]any](t, raw)))

	status, raw = doRequest(t, app, http.MethodPatch, fmt.Sprintf("/api/contacts/%d/restore", int(id)), admin, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, false, decode[map[string]any](t, raw)["deleted"])

	status, raw = doRequest(t, app, http.MethodGet, "/api/contacts", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, decode[[]map[string]any](t, raw), 1)
}

func TestResourceApproveScenario(t *testing.T) {
	s, app := newTestServer(t)
	admin := tokenFor(t, s, "coordinator", true)

	status, raw := doRequest(t, app, http.MethodPost, "/api/resources-db", "", map[string]any{
		"title": "Shelter guidance", "url": "https://example.org/shelter.pdf",
		"approved": true,
	})
	require.Equal(t, fiber.StatusCreated, status, string(raw))
	created := decode[map[string]any](t, raw)
	assert.Equal(t, false, created["approved"], "clients cannot pre-approve")
	id := int(created["id"].(float64))

	status, raw = doRequest(t, app, http.MethodGet, "/api/resources-db?approved_only=true", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Empty(t, decode[[]map[string]any](t, raw))

	status, _ = doRequest(t, app, http.MethodGet, fmt.Sprintf("/api/resources-db/%d", id), "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, raw = doRequest(t, app, http.MethodPatch, fmt.Sprintf("/api/resources-db/%d/approve", id), admin, nil)
	require.Equal(t, fiber.StatusOK, status, string(raw))
	assert.Equal(t, true, decode[map[string]any](t, raw)["approved"])

	status, raw = doRequest(t, app, http.MethodGet, "/api/resources-db?approved_only=true", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, []float64{float64(id)}, idsOf(decode[[]map[string]any](t, raw)))
}

func TestListWideningRule(t *testing.T) {
	s, app := newTestServer(t)
	admin := tokenFor(t, s, "coordinator", true)
	editor := tokenFor(t, s, "editor", false)

	for _, title := range []string{"Pending A", "Pending B"} {
		status, raw := doRequest(t, app, http.MethodPost, "/api/resources-db", "", map[string]any{
			"title": title, "url": "https://example.org/" + title[len(title)-1:],
		})
		require.Equal(t, fiber.StatusCreated, status, string(raw))
	}

	tests := []struct {
		name  string
		token string
		query string
		want  int
	}{
		{"anonymous default", "", "", 0},
		{"anonymous cannot widen", "", "?approved_only=false&include_deleted=true", 0},
		{"non-admin cannot widen", editor, "?approved_only=false", 0},
		{"admin default", admin, "", 0},
		{"admin widens", admin, "?approved_only=false", 2},
		{"invalid token is anonymous", "not-a-token", "?approved_only=false", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, raw := doRequest(t, app, http.MethodGet, "/api/resources-db"+tt.query, tt.token, nil)
			require.Equal(t, fiber.StatusOK, status)
			assert.Len(t, decode[[]map[string]any](t, raw), tt.want)
		})
	}
}

func TestEntityRouteTiers(t *testing.T) {
	s, app := newTestServer(t)
	admin := tokenFor(t, s, "coordinator", true)
	editor := tokenFor(t, s, "editor", false)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
		want   int
	}{
		{"submissions list needs auth", http.MethodGet, "/api/contact-submissions", "", nil, fiber.StatusUnauthorized},
		{"submissions list needs admin", http.MethodGet, "/api/contact-submissions", editor, nil, fiber.StatusForbidden},
		{"submissions list as admin", http.MethodGet, "/api/contact-submissions", admin, nil, fiber.StatusOK},
		{"public submission", http.MethodPost, "/api/contact-submissions", "", map[string]any{
			"organization": "UNICEF", "focal_point_name": "Ana", "email": "ana@example.org",
		}, fiber.StatusCreated},
		{"contact create needs admin", http.MethodPost, "/api/contacts", editor, map[string]any{
			"name": "A", "organization": "B",
		}, fiber.StatusForbidden},
		{"announcement create anonymous", http.MethodPost, "/api/announcements", "", map[string]any{
			"title": "x", "content": "y",
		}, fiber.StatusUnauthorized},
		{"group update needs admin", http.MethodPut, "/api/whatsapp-groups/1", editor, map[string]any{"name": "x"}, fiber.StatusForbidden},
		{"deleted listing needs admin", http.MethodGet, "/api/whatsapp-groups/deleted", "", nil, fiber.StatusUnauthorized},
		{"links have no approve route", http.MethodPatch, "/api/links/1/approve", admin, nil, fiber.StatusNotFound},
		{"bad id", http.MethodDelete, "/api/contacts/abc", admin, nil, fiber.StatusBadRequest},
		{"unknown id", http.MethodDelete, "/api/contacts/999", admin, nil, fiber.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, raw := doRequest(t, app, tt.method, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.want, status, string(raw))
		})
	}
}

func TestSubmissionsAdminListIncludesPending(t *testing.T) {
	s, app := newTestServer(t)
	admin := tokenFor(t, s, "coordinator", true)

	status, raw := doRequest(t, app, http.MethodPost, "/api/contact-submissions", "", map[string]any{
		"organization": "WFP", "focal_point_name": "Jo", "email": "jo@example.org",
	})
	require.Equal(t, fiber.StatusCreated, status, string(raw))
	assert.Equal(t, false, decode[map[string]any](t, raw)["approved"])

	status, raw = doRequest(t, app, http.MethodGet, "/api/contact-submissions", admin, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, decode[[]map[string]any](t, raw), 1)

	status, raw = doRequest(t, app, http.MethodGet, "/api/contact-submissions?approved_only=true", admin, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Empty(t, decode[[]map[string]any](t, raw))
}

func TestUpdateAndPermanentDelete(t *testing.T) {
	s, app := newTestServer(t)
	admin := tokenFor(t, s, "coordinator", true)

	status, raw := doRequest(t, app, http.MethodPost, "/api/whatsapp-groups", "", map[string]any{
		"name": "Logistics", "sector": "Logistics", "description": "Fuel and transport",
		"link": "https://chat.whatsapp.com/abc",
	})
	require.Equal(t, fiber.StatusCreated, status, string(raw))
	group := decode[map[string]any](t, raw)
	assert.Equal(t, true, group["approved"])
	id := int(group["id"].(float64))

	status, raw = doRequest(t, app, http.MethodPut, fmt.Sprintf("/api/whatsapp-groups/%d", id), admin, map[string]any{
		"description": "Fuel, transport and storage", "deleted": true, "approved": false,
	})
	require.Equal(t, fiber.StatusOK, status, string(raw))
	updated := decode[map[string]any](t, raw)
	assert.Equal(t, "Fuel, transport and storage", updated["description"])
	assert.Equal(t, "Logistics", updated["name"])
	assert.Equal(t, false, updated["deleted"])
	assert.Equal(t, true, updated["approved"])

	status, raw = doRequest(t, app, http.MethodPut, fmt.Sprintf("/api/whatsapp-groups/%d", id), admin, map[string]any{
		"link": "not a url",
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, models.CodeValidation, decode[errorBody](t, raw).Code)

	status, _ = doRequest(t, app, http.MethodDelete, fmt.Sprintf("/api/whatsapp-groups/%d?permanent=true", id), admin, nil)
	require.Equal(t, fiber.StatusOK, status)

	status, raw = doRequest(t, app, http.MethodGet, "/api/whatsapp-groups?include_deleted=true&approved_only=false", admin, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Empty(t, decode[[]map[string]any](t, raw))

	status, _ = doRequest(t, app, http.MethodDelete, fmt.Sprintf("/api/whatsapp-groups/%d/permanent", id), admin, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestAnnouncementsLimitAndFilter(t *testing.T) {
	s, app := newTestServer(t)
	admin := tokenFor(t, s, "coordinator", true)

	for i, p := range []string{"high", "normal", "high"} {
		status, raw := doRequest(t, app, http.MethodPost, "/api/announcements", admin, map[string]any{
			"title":    fmt.Sprintf("Update %d", i),
			"content":  "Body",
			"priority": p,
			"date":     fmt.Sprintf("2025-11-0%dT10:00:00Z", i+1),
			"tags":     "logistics, fuel",
		})
		require.Equal(t, fiber.StatusCreated, status, string(raw))
	}

	status, raw := doRequest(t, app, http.MethodGet, "/api/announcements?limit=2", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	rows := decode[[]map[string]any](t, raw)
	require.Len(t, rows, 2)
	assert.Equal(t, "Update 2", rows[0]["title"])
	assert.Equal(t, []any{"logistics", "fuel"}, rows[0]["tags"])

	status, raw = doRequest(t, app, http.MethodGet, "/api/announcements?priority=high", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, decode[[]map[string]any](t, raw), 2)
}

func TestLinks(t *testing.T) {
	s, app := newTestServer(t)
	admin := tokenFor(t, s, "coordinator", true)

	status, raw := doRequest(t, app, http.MethodPost, "/api/links", "", map[string]any{
		"title": "Sitrep", "slug": "sitrep", "url": "https://example.org/sitrep", "created_by": "spoofed",
	})
	require.Equal(t, fiber.StatusCreated, status, string(raw))
	anon := decode[map[string]any](t, raw)
	assert.Nil(t, anon["created_by"])

	status, raw = doRequest(t, app, http.MethodPost, "/api/links", admin, map[string]any{
		"title": "Maps", "slug": "maps", "url": "https://example.org/maps",
	})
	require.Equal(t, fiber.StatusCreated, status, string(raw))
	mine := decode[map[string]any](t, raw)
	assert.Equal(t, "coordinator", mine["created_by"])

	status, raw = doRequest(t, app, http.MethodPost, "/api/links", "", map[string]any{
		"title": "Dup", "slug": "sitrep", "url": "https://example.org/dup",
	})
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, models.CodeConflict, decode[errorBody](t, raw).Code)

	mapsID := int(mine["id"].(float64))
	status, _ = doRequest(t, app, http.MethodPut, fmt.Sprintf("/api/links/%d", mapsID), admin, map[string]any{"slug": "sitrep"})
	assert.Equal(t, fiber.StatusConflict, status)
	status, _ = doRequest(t, app, http.MethodPut, fmt.Sprintf("/api/links/%d", mapsID), admin, map[string]any{"slug": "maps"})
	assert.Equal(t, fiber.StatusOK, status)

	status, raw = doRequest(t, app, http.MethodPost, "/api/links", "", map[string]any{
		"title": "Bad", "slug": "has space", "url": "https://example.org",
	})
	assert.Equal(t, fiber.StatusBadRequest, status, string(raw))

	req := newRawRequest(http.MethodGet, "/link/sitrep")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "https://example.org/sitrep", resp.Header.Get("Location"))

	anonID := int(anon["id"].(float64))
	status, _ = doRequest(t, app, http.MethodDelete, fmt.Sprintf("/api/links/%d", anonID), admin, nil)
	require.Equal(t, fiber.StatusOK, status)

	status, raw = doRequest(t, app, http.MethodGet, "/link/sitrep", "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "Link not found", decode[errorBody](t, raw).Error)

	status, _ = doRequest(t, app, http.MethodGet, "/link/nope", "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}
