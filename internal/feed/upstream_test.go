package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"imhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const atomFixture = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom" xmlns:georss="http://www.georss.org/georss">
  <title>MapAction maps</title>
  <updated>2025-10-30T12:00:00Z</updated>
  <id>urn:mapaction:maps</id>
  <entry>
    <title>Jamaica: Hurricane Melissa situation overview</title>
    <id>urn:mapaction:map:ma001</id>
    <link rel="alternate" href="https://maps.example.org/ma001"/>
    <link rel="enclosure" type="application/zip" href="https://maps.example.org/ma001.zip"/>
    <updated>2025-10-30T11:00:00Z</updated>
    <published>2025-10-29T08:00:00Z</published>
    <summary>Affected parishes and shelters</summary>
    <georss:box>17.7 -78.4 18.5 -76.2</georss:box>
  </entry>
  <entry>
    <title>Road access</title>
    <id>urn:mapaction:map:ma002</id>
    <link href="https://maps.example.org/ma002"/>
    <updated>2025-10-28T10:00:00Z</updated>
    <summary>Blocked roads</summary>
  </entry>
</feed>`

func TestClient_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/atom+xml")
		_, _ = w.Write([]byte(atomFixture))
	}))
	defer srv.Close()

	got, err := NewClient(srv.URL, time.Second).Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "MapAction maps", got.FeedTitle)
	assert.Equal(t, "2025-10-30T12:00:00Z", got.FeedUpdated)
	require.Len(t, got.Maps, 2)

	first := got.Maps[0]
	assert.Equal(t, "Jamaica: Hurricane Melissa situation overview", first.Title)
	assert.Equal(t, "Affected parishes and shelters", first.Summary)
	assert.Equal(t, "https://maps.example.org/ma001", first.Link)
	assert.Equal(t, "urn:mapaction:map:ma001", first.ID)
	assert.Equal(t, "2025-10-29T08:00:00Z", first.Published)
	assert.Equal(t, "17.7 -78.4 18.5 -76.2", first.GeoRSSBox)
	assert.Equal(t, "https://maps.example.org/ma001.zip", first.PackageURL)
	assert.Equal(t, "application/zip", first.PackageType)

	assert.Empty(t, got.Maps[1].GeoRSSBox)
	assert.Empty(t, got.Maps[1].PackageURL)
}

func TestClient_FetchFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		timeout time.Duration
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
			timeout: time.Second,
		},
		{
			name: "not a feed",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("<html><body>maintenance</body></html>"))
			},
			timeout: time.Second,
		},
		{
			name: "timeout",
			handler: func(w http.ResponseWriter, r *http.Request) {
				time.Sleep(200 * time.Millisecond)
				_, _ = w.Write([]byte(atomFixture))
			},
			timeout: 20 * time.Millisecond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			got, err := NewClient(srv.URL, tt.timeout).Fetch(context.Background())
			assert.Nil(t, got)

			var appErr *models.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, models.CodeUpstream, appErr.Code)
			assert.Equal(t, http.StatusServiceUnavailable, models.StatusFor(err))
		})
	}
}
