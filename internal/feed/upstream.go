package feed

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"imhub/internal/middleware"
	"imhub/internal/models"
	"imhub/internal/observability"

	"github.com/mmcdole/gofeed"
)

// MapEntry is one published map product from the upstream feed.
type MapEntry struct {
	Title       string `json:"title"`
	Summary     string `json:"summary"`
	Link        string `json:"link"`
	Updated     string `json:"updated"`
	Published   string `json:"published"`
	ID          string `json:"id"`
	GeoRSSBox   string `json:"georss_box,omitempty"`
	PackageURL  string `json:"package_url,omitempty"`
	PackageType string `json:"package_type,omitempty"`
}

// MapFeed is the JSON shape served to the dashboard.
type MapFeed struct {
	FeedTitle   string     `json:"feed_title"`
	FeedUpdated string     `json:"feed_updated"`
	Maps        []MapEntry `json:"maps"`
}

// Client fetches the upstream map feed. It never retries.
type Client struct {
	url    string
	http   *http.Client
	parser *gofeed.Parser
}

// NewClient returns a client for url that gives up after timeout.
func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url:    url,
		http:   &http.Client{Timeout: timeout},
		parser: gofeed.NewParser(),
	}
}

// Fetch downloads and parses the upstream feed. Any failure, including a
// timeout or a non-2xx answer, is reported as an upstream error.
func (c *Client) Fetch(ctx context.Context) (*MapFeed, error) {
	ctx, span := observability.GetTraceLayer().TraceOutboundHTTP(ctx, http.MethodGet, c.url)
	defer span.End()

	out, err := c.fetch(ctx)
	if err != nil {
		observability.RecordSpanError(span, err)
		observability.UpstreamFeedFetches.WithLabelValues("error").Inc()
		middleware.Logger.WarnContext(ctx, "upstream feed fetch failed", "url", c.url, "error", err)
		return nil, models.NewUpstreamError("Map feed is unavailable", err)
	}
	observability.UpstreamFeedFetches.WithLabelValues("success").Inc()
	return out, nil
}

func (c *Client) fetch(ctx context.Context) (*MapFeed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "imhub/1.0")
	req.Header.Set("Accept", "application/atom+xml, application/rss+xml, application/xml;q=0.9")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("upstream answered %d", resp.StatusCode)
	}

	parsed, err := c.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return convert(parsed), nil
}

func convert(f *gofeed.Feed) *MapFeed {
	out := &MapFeed{
		FeedTitle:   f.Title,
		FeedUpdated: f.Updated,
		Maps:        make([]MapEntry, 0, len(f.Items)),
	}
	for _, item := range f.Items {
		if item == nil {
			continue
		}
		entry := MapEntry{
			Title:     item.Title,
			Summary:   item.Description,
			Link:      item.Link,
			Updated:   item.Updated,
			Published: item.Published,
			ID:        item.GUID,
		}
		if entry.Updated == "" {
			entry.Updated = item.Published
		}
		if entry.Summary == "" {
			entry.Summary = item.Content
		}
		if box, ok := extensionValue(item, "georss", "box"); ok {
			entry.GeoRSSBox = box
		}
		if len(item.Enclosures) > 0 && item.Enclosures[0] != nil {
			entry.PackageURL = item.Enclosures[0].URL
			entry.PackageType = item.Enclosures[0].Type
		}
		out.Maps = append(out.Maps, entry)
	}
	return out
}

func extensionValue(item *gofeed.Item, namespace, name string) (string, bool) {
	ns, ok := item.Extensions[namespace]
	if !ok {
		return "", false
	}
	values := ns[name]
	if len(values) == 0 || values[0].Value == "" {
		return "", false
	}
	return values[0].Value, true
}
