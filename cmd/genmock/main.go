// Command genmock generates mock data fixtures for the test suites: an
// archive CSV, a live-feed Atom XML document, and the JSON artifacts the
// pipeline derives from them. It uses the actual domain package so the
// derived fixtures match real pipeline behavior.
//
// Usage:
//
//	go run ./cmd/genmock -out-dir data/mock -days 7
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/aaroncolesmith/portland-crime-map/internal/domain"
)

// genNow anchors the generated timestamps so the lookback window and the
// derived fixtures are reproducible.
var genNow = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

// mockRecord is one synthetic report before source-specific encoding.
type mockRecord struct {
	summary  string
	hoursAgo int // relative to genNow, keeps records inside the window
	coords   string
	sources  []string // "archive", "feed", or both for duplicates
}

// mockRecords covers the behaviors the fixtures need to exercise: records
// unique to each source, verbatim cross-source duplicates, conflicting
// coordinates for one address, and a record older than any sane window.
var mockRecords = []mockRecord{
	{summary: "THEFT at 100 MAIN ST, PORT [A100]", hoursAgo: 3, coords: "45.512 -122.658", sources: []string{"archive", "feed"}},
	{summary: "THEFT at 100 MAIN ST, PORT [A101]", hoursAgo: 27, coords: "45.512 -122.658", sources: []string{"archive"}},
	{summary: "VANDALISM at 100 MAIN ST, PORT [A102]", hoursAgo: 50, coords: "45.5121 -122.6581", sources: []string{"archive"}},
	{summary: "ASSAULT at 200 OAK ST, GRSM [B200]", hoursAgo: 5, coords: "45.503 -122.431", sources: []string{"feed"}},
	{summary: "ASSAULT at 200 OAK ST, GRSM [B201]", hoursAgo: 29, coords: "45.503 -122.431", sources: []string{"archive", "feed"}},
	{summary: "BURGLARY at 300 PINE ST, PORT [C300]", hoursAgo: 73, coords: "45.52 -122.61", sources: []string{"archive"}},
	{summary: "DISTURBANCE at 400 ELM AVE, PORT [D400]", hoursAgo: 8, coords: "45.53 -122.69", sources: []string{"feed"}},
	{summary: "THEFT at 500 OLD RD, PORT [E500]", hoursAgo: 24 * 30, coords: "45.49 -122.70", sources: []string{"archive"}},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outDir := flag.String("out-dir", "data/mock", "output directory for fixtures")
	days := flag.Int("days", 7, "lookback window for the derived fixtures")
	flag.Parse()

	// Fix the clock so LookbackCutoff is reproducible.
	domain.SetClock(clockwork.NewFakeClockAt(genNow))
	defer domain.SetClock(nil)

	archiveRaw, feedRaw := buildRawBatches()

	if err := writeArchiveCSV(filepath.Join(*outDir, "archive.csv"), archiveRaw); err != nil {
		return fmt.Errorf("writing archive CSV: %w", err)
	}
	if err := writeFeedXML(filepath.Join(*outDir, "feed.xml"), feedRaw); err != nil {
		return fmt.Errorf("writing feed XML: %w", err)
	}

	combined := append(append([]domain.RawIncident{}, archiveRaw...), feedRaw...)
	if err := writeJSON(filepath.Join(*outDir, "raw_incidents.json"), combined); err != nil {
		return fmt.Errorf("writing raw fixture: %w", err)
	}
	log.Printf("raw records: %d archive, %d feed", len(archiveRaw), len(feedRaw))

	// Run the actual reconciliation chain.
	archiveInc, archiveFailed := domain.NormalizeBatch(archiveRaw)
	feedInc, feedFailed := domain.NormalizeBatch(feedRaw)

	cutoff := domain.LookbackCutoff(*days)
	archiveInc = domain.FilterSince(archiveInc, cutoff)
	feedInc = domain.FilterSince(feedInc, cutoff)

	merged := domain.MergeDedup(archiveInc, feedInc)
	duplicates := len(archiveInc) + len(feedInc) - len(merged)
	reconciled := domain.CanonicalizeCoordinates(merged)

	artifacts := map[string]any{
		"reconciled.json": reconciled,
		"alltime.json":    domain.AggregateAllTime(reconciled),
		"daily.json":      domain.AggregateByDay(reconciled),
		"hourly.json":     domain.HourlySeries(reconciled),
	}
	for name, v := range artifacts {
		path := filepath.Join(*outDir, name)
		if err := writeJSON(path, v); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
		log.Printf("wrote %s", path)
	}

	printStats(reconciled, archiveFailed+feedFailed, duplicates)
	return nil
}

// buildRawBatches expands mockRecords into per-source raw batches. The
// archive carries naive local-free timestamps; the feed carries RFC 3339.
func buildRawBatches() (archiveRaw, feedRaw []domain.RawIncident) {
	for _, rec := range mockRecords {
		at := genNow.Add(-time.Duration(rec.hoursAgo) * time.Hour)
		for _, src := range rec.sources {
			raw := domain.RawIncident{
				Summary:     rec.summary,
				Coordinates: rec.coords,
				Source:      src,
			}
			switch src {
			case "archive":
				raw.Timestamp = at.Format("2006-01-02 15:04:05")
			case "feed":
				raw.Timestamp = at.Format(time.RFC3339)
			}
			if src == "archive" {
				archiveRaw = append(archiveRaw, raw)
			} else {
				feedRaw = append(feedRaw, raw)
			}
		}
	}

	// One unparsable archive row so the fixtures exercise the drop path.
	archiveRaw = append(archiveRaw, domain.RawIncident{
		Summary:     "THEFT at 600 BAD ROW, PORT [F600]",
		Timestamp:   "not-a-date",
		Coordinates: "45.50 -122.60",
		Source:      "archive",
	})
	return archiveRaw, feedRaw
}

func writeArchiveCSV(path string, batch []domain.RawIncident) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"DATE", "TEXT", "COORDS"}); err != nil {
		return err
	}
	for _, rec := range batch {
		if err := w.Write([]string{rec.Timestamp, rec.Summary, rec.Coordinates}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeFeedXML(path string, batch []domain.RawIncident) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	fmt.Fprintf(f, "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	fmt.Fprintf(f, "<feed xmlns=\"http://www.w3.org/2005/Atom\" xmlns:georss=\"http://www.georss.org/georss\">\n")
	fmt.Fprintf(f, "  <updated>%s</updated>\n", genNow.Format(time.RFC3339))
	for i, rec := range batch {
		fmt.Fprintf(f, "  <entry>\n")
		fmt.Fprintf(f, "    <id>tag:incidents,entry-%d</id>\n", i)
		fmt.Fprintf(f, "    <title>%s</title>\n", rec.Summary)
		fmt.Fprintf(f, "    <summary>%s</summary>\n", rec.Summary)
		fmt.Fprintf(f, "    <updated>%s</updated>\n", rec.Timestamp)
		fmt.Fprintf(f, "    <georss:point>%s</georss:point>\n", rec.Coordinates)
		fmt.Fprintf(f, "  </entry>\n")
	}
	fmt.Fprintf(f, "</feed>\n")
	return nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(reconciled []domain.Incident, parseFailures, duplicates int) {
	categoryCounts := map[string]int{}
	addressCounts := map[string]int{}
	for i := range reconciled {
		categoryCounts[reconciled[i].Category]++
		addressCounts[reconciled[i].Address]++
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Reconciled incidents: %d\n", len(reconciled))
	fmt.Printf("Parse failures: %d\n", parseFailures)
	fmt.Printf("Cross-source duplicates removed: %d\n", duplicates)
	fmt.Println("By category:")
	for _, c := range domain.Categories(reconciled) {
		fmt.Printf("  %s=%d\n", c, categoryCounts[c])
	}
	fmt.Println("By address:")
	for _, cell := range domain.AggregateAllTime(reconciled) {
		fmt.Printf("  %s (%g, %g): %d\n", cell.Address, cell.Lat, cell.Lon, cell.Count)
	}
	if len(reconciled) > 0 {
		first := reconciled[0]
		fmt.Printf("\nFirst incident:\n")
		fmt.Printf("  Category: %s\n", first.Category)
		fmt.Printf("  Address: %s\n", first.Address)
		fmt.Printf("  Time: %s\n", first.Time.Format(time.RFC3339))
		fmt.Printf("  Label: %s\n", first.EventLabel)
	}
}
