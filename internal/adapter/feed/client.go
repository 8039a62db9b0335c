// Package feed fetches the City of Portland's live Atom feed of recent
// dispatches. Entries carry a georss point and an RFC 3339 update timestamp.
package feed

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/aaroncolesmith/portland-crime-map/internal/domain"
)

// Client implements pipeline.Source for the live Atom feed.
type Client struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a feed client for the given Atom URL.
func NewClient(url string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Atom document shape; georss:point matches on local name.

type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Updated string      `xml:"updated"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID      string `xml:"id"`
	Title   string `xml:"title"`
	Summary string `xml:"summary"`
	Updated string `xml:"updated"`
	Point   string `xml:"point"`
}

// Fetch downloads and parses the feed. Only entries with both an identifier
// and a title are considered valid; others are skipped without error, since
// the feed routinely carries placeholder entries.
func (c *Client) Fetch(ctx context.Context) ([]domain.RawIncident, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create feed request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("feed fetch: status %d: %s", resp.StatusCode, body)
	}

	var doc atomFeed
	if err := xml.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}

	batch := make([]domain.RawIncident, 0, len(doc.Entries))
	skipped := 0
	for _, e := range doc.Entries {
		if e.ID == "" || e.Title == "" {
			skipped++
			continue
		}
		batch = append(batch, domain.RawIncident{
			Summary:     e.Summary,
			Timestamp:   e.Updated,
			Coordinates: e.Point,
			Source:      "feed",
		})
	}

	c.logger.Debug("feed fetched", "records", len(batch), "skipped", skipped, "feed_updated", doc.Updated)
	return batch, nil
}
