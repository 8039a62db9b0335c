// Command validate performs end-to-end data integrity checks across the mock
// data fixtures: raw source records, the reconciled incident set, and the
// aggregated tables. It re-runs the actual domain transforms and verifies
// dedup, coordinate stability, count conservation, and row ordering.
//
// Usage:
//
//	go run ./cmd/validate -fixture-dir data/mock -days 7
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/aaroncolesmith/portland-crime-map/internal/domain"
)

// genNow must match the clock genmock fixed when deriving the fixtures.
var genNow = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	fixtureDir := flag.String("fixture-dir", "data/mock", "directory containing genmock fixtures")
	days := flag.Int("days", 7, "lookback window genmock derived the fixtures with")
	flag.Parse()

	os.Exit(run(*fixtureDir, *days))
}

func run(fixtureDir string, days int) int {
	domain.SetClock(clockwork.NewFakeClockAt(genNow))
	defer domain.SetClock(nil)

	fmt.Println("=== Incident Fixture Integrity Validation ===")
	fmt.Println()

	raw, err := loadJSON[domain.RawIncident](filepath.Join(fixtureDir, "raw_incidents.json"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load raw fixture: %v\n", err)
		return 1
	}
	reconciled, err := loadJSON[domain.Incident](filepath.Join(fixtureDir, "reconciled.json"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load reconciled fixture: %v\n", err)
		return 1
	}
	alltime, err := loadJSON[domain.MapCell](filepath.Join(fixtureDir, "alltime.json"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load alltime fixture: %v\n", err)
		return 1
	}
	daily, err := loadJSON[domain.DailyMapCell](filepath.Join(fixtureDir, "daily.json"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load daily fixture: %v\n", err)
		return 1
	}
	hourly, err := loadJSON[domain.HourlyCount](filepath.Join(fixtureDir, "hourly.json"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load hourly fixture: %v\n", err)
		return 1
	}

	expected := recompute(raw, days)

	phases := []*phase{
		validateReconciliation(reconciled, expected),
		validateCoordinateStability(reconciled),
		validateAggregation(alltime, daily, reconciled),
		validateSeries(hourly, reconciled),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-46s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d raw, %d reconciled, %d all-time cells, %d daily cells, %d hourly buckets\n",
		len(raw), len(reconciled), len(alltime), len(daily), len(hourly))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func loadJSON[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// recompute re-runs the reconciliation chain on the raw fixture.
func recompute(raw []domain.RawIncident, days int) []domain.Incident {
	var archiveRaw, feedRaw []domain.RawIncident
	for _, r := range raw {
		if r.Source == "feed" {
			feedRaw = append(feedRaw, r)
		} else {
			archiveRaw = append(archiveRaw, r)
		}
	}

	archiveInc, _ := domain.NormalizeBatch(archiveRaw)
	feedInc, _ := domain.NormalizeBatch(feedRaw)

	cutoff := domain.LookbackCutoff(days)
	archiveInc = domain.FilterSince(archiveInc, cutoff)
	feedInc = domain.FilterSince(feedInc, cutoff)

	return domain.CanonicalizeCoordinates(domain.MergeDedup(archiveInc, feedInc))
}

// incidentKey identifies an incident across the fixture and the recomputed
// set. Raw fields are not serialized, so the structured fields stand in.
func incidentKey(inc domain.Incident) string {
	return fmt.Sprintf("%d|%s|%s|%s", inc.Time.UnixNano(), inc.Category, inc.Address, inc.ExternalID)
}

// Phase 1 checks the reconciled fixture against a fresh recomputation from
// the raw fixture: same records, same order, no duplicates.

func validateReconciliation(reconciled, expected []domain.Incident) *phase {
	p := &phase{name: "Phase 1: Reconciliation (JSON vs recompute)"}

	if len(reconciled) != len(expected) {
		p.errorf("count: recomputed %d incidents, fixture has %d", len(expected), len(reconciled))
	}

	seen := map[string]int{}
	for i := range reconciled {
		seen[incidentKey(reconciled[i])]++
	}
	for key, n := range seen {
		if n > 1 {
			p.errorf("duplicate incident in fixture (key=%s, count=%d)", key, n)
		}
	}

	for i := range expected {
		if i >= len(reconciled) {
			break
		}
		want, got := expected[i], reconciled[i]
		if incidentKey(want) != incidentKey(got) {
			p.errorf("row %d: expected %s, got %s", i, incidentKey(want), incidentKey(got))
			continue
		}
		if want.Lat != got.Lat || want.Lon != got.Lon {
			p.errorf("row %d (%s): coordinates: expected (%g, %g), got (%g, %g)",
				i, want.Address, want.Lat, want.Lon, got.Lat, got.Lon)
		}
		if want.EventLabel != got.EventLabel {
			p.errorf("row %d: event label: expected %q, got %q", i, want.EventLabel, got.EventLabel)
		}
	}

	for i := 1; i < len(reconciled); i++ {
		if reconciled[i].Time.Before(reconciled[i-1].Time) {
			p.errorf("row %d: out of order (%s before %s)", i,
				reconciled[i].Time.Format(time.RFC3339), reconciled[i-1].Time.Format(time.RFC3339))
		}
	}
	return p
}

// Phase 2 checks that every address resolves to exactly one coordinate pair
// and that addresses carry no unexpanded abbreviations.

func validateCoordinateStability(reconciled []domain.Incident) *phase {
	p := &phase{name: "Phase 2: Coordinate Stability (per address)"}

	coords := map[string]map[string]bool{}
	for i := range reconciled {
		inc := &reconciled[i]
		key := fmt.Sprintf("%g %g", inc.Lat, inc.Lon)
		if coords[inc.Address] == nil {
			coords[inc.Address] = map[string]bool{}
		}
		coords[inc.Address][key] = true

		for _, suffix := range []string{", PORT", ", GRSM"} {
			if strings.HasSuffix(inc.Address, suffix) {
				p.errorf("incident %d: address %q carries unexpanded abbreviation", i, inc.Address)
			}
		}
	}
	for addr, set := range coords {
		if len(set) > 1 {
			variants := make([]string, 0, len(set))
			for v := range set {
				variants = append(variants, v)
			}
			p.errorf("address %q maps to %d coordinate pairs: %s", addr, len(set), strings.Join(variants, "; "))
		}
	}
	return p
}

// Phase 3 checks the aggregated tables: count conservation, weight scaling,
// ordering, and the crimes-column length bound.

func validateAggregation(alltime []domain.MapCell, daily []domain.DailyMapCell, reconciled []domain.Incident) *phase {
	p := &phase{name: "Phase 3: Aggregation (conservation, ordering)"}

	total := 0
	for i := range alltime {
		cell := &alltime[i]
		total += cell.Count
		if cell.Weight != cell.Count {
			p.errorf("all-time cell %s: weight %d != count %d", cell.Address, cell.Weight, cell.Count)
		}
		if len(cell.Crimes) > 1503 {
			p.errorf("all-time cell %s: crimes column is %d chars", cell.Address, len(cell.Crimes))
		}
		if want := fmt.Sprintf("%v, %v", cell.Lat, cell.Lon); cell.LatLon != want {
			p.errorf("all-time cell %s: lat_lon %q != %q", cell.Address, cell.LatLon, want)
		}
	}
	if total != len(reconciled) {
		p.errorf("all-time counts sum to %d, expected %d", total, len(reconciled))
	}

	dailyTotal := 0
	for i := range daily {
		dailyTotal += daily[i].Count
		if i > 0 && daily[i].Day.Before(daily[i-1].Day) {
			p.errorf("daily cell %d: day %s out of order", i, daily[i].Day.Format("2006-01-02"))
		}
	}
	if dailyTotal != len(reconciled) {
		p.errorf("daily counts sum to %d, expected %d", dailyTotal, len(reconciled))
	}
	return p
}

// Phase 4 checks the hourly series: conservation, ascending hours, and the
// rolling-mean warmup rule.

func validateSeries(hourly []domain.HourlyCount, reconciled []domain.Incident) *phase {
	p := &phase{name: "Phase 4: Hourly Series (rolling window)"}

	total := 0
	for i := range hourly {
		total += hourly[i].Count
		if i > 0 && !hourly[i].Hour.After(hourly[i-1].Hour) {
			p.errorf("bucket %d: hour %s not ascending", i, hourly[i].Hour.Format(time.RFC3339))
		}
		if i < 23 && hourly[i].Rolling24 != nil {
			p.errorf("bucket %d: rolling mean set before 24 buckets of history", i)
		}
		if i >= 23 && hourly[i].Rolling24 == nil {
			p.errorf("bucket %d: rolling mean missing", i)
		}
	}
	if total != len(reconciled) {
		p.errorf("hourly counts sum to %d, expected %d", total, len(reconciled))
	}
	return p
}
