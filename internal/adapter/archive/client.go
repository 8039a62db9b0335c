// Package archive fetches the historical bulk archive of incident reports,
// published as a CSV file with DATE, TEXT, and COORDS columns.
package archive

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aaroncolesmith/portland-crime-map/internal/domain"
)

// Client implements pipeline.Source for the CSV archive.
type Client struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates an archive client for the given CSV URL.
func NewClient(url string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Fetch downloads and parses the archive. Rows shorter than the header are
// skipped; unparsable field content is left to normalization, which counts
// it per record.
func (c *Client) Fetch(ctx context.Context) ([]domain.RawIncident, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create archive request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("archive request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("archive fetch: status %d: %s", resp.StatusCode, body)
	}

	batch, err := parseCSV(resp.Body)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("archive fetched", "records", len(batch))
	return batch, nil
}

func parseCSV(r io.Reader) ([]domain.RawIncident, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // tolerate ragged rows, skipped below

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read archive csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("archive csv has no header row")
	}

	colIdx := map[string]int{}
	for i, h := range rows[0] {
		colIdx[strings.TrimSpace(h)] = i
	}
	for _, required := range []string{"DATE", "TEXT", "COORDS"} {
		if _, ok := colIdx[required]; !ok {
			return nil, fmt.Errorf("archive csv missing column %q", required)
		}
	}

	batch := make([]domain.RawIncident, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) <= colIdx["COORDS"] || len(row) <= colIdx["DATE"] || len(row) <= colIdx["TEXT"] {
			continue
		}
		batch = append(batch, domain.RawIncident{
			Summary:     strings.TrimSpace(row[colIdx["TEXT"]]),
			Timestamp:   strings.TrimSpace(row[colIdx["DATE"]]),
			Coordinates: strings.TrimSpace(row[colIdx["COORDS"]]),
			Source:      "archive",
		})
	}
	return batch, nil
}
