// Package feed renders the announcement syndication feed and proxies the
// upstream map feed.
package feed

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"imhub/internal/models"
)

// Channel describes the RSS channel wrapping the announcement items.
type Channel struct {
	Title       string
	Link        string
	Description string
}

// DefaultChannel returns the channel metadata served by the hub.
func DefaultChannel(baseURL string) Channel {
	return Channel{
		Title:       "IM Hub Announcements",
		Link:        strings.TrimRight(baseURL, "/"),
		Description: "Coordination announcements from the Information Management Hub",
	}
}

type rssDocument struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	Language      string    `xml:"language"`
	LastBuildDate string    `xml:"lastBuildDate"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description"`
	PubDate     string   `xml:"pubDate"`
	GUID        rssGUID  `xml:"guid"`
	Author      string   `xml:"author,omitempty"`
	Categories  []string `xml:"category"`
}

type rssGUID struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

// PriorityLabel is the title prefix marking an announcement's priority.
func PriorityLabel(priority string) string {
	if priority == "" {
		priority = models.PriorityNormal
	}
	return "[" + strings.ToUpper(priority) + "]"
}

// RenderRSS writes announcements as an RSS 2.0 document. Callers pass only
// approved, non-deleted rows in display order.
func RenderRSS(ch Channel, announcements []models.Announcement, now time.Time) ([]byte, error) {
	items := make([]rssItem, 0, len(announcements))
	for _, a := range announcements {
		items = append(items, rssItem{
			Title:       PriorityLabel(a.Priority) + " " + a.Title,
			Link:        fmt.Sprintf("%s/announcements#%d", ch.Link, a.ID),
			Description: a.Content,
			PubDate:     a.Date.UTC().Format(time.RFC1123Z),
			GUID:        rssGUID{Value: fmt.Sprintf("imhub-announcement-%d", a.ID)},
			Author:      a.Author,
			Categories:  []string(a.Tags),
		})
	}

	doc := rssDocument{
		Version: "2.0",
		Channel: rssChannel{
			Title:         ch.Title,
			Link:          ch.Link,
			Description:   ch.Description,
			Language:      "en",
			LastBuildDate: now.UTC().Format(time.RFC1123Z),
			Items:         items,
		},
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode rss: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}
