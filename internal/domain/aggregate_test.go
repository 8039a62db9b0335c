package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIncidents(t *testing.T) []Incident {
	t.Helper()
	raws := []RawIncident{
		{Summary: "THEFT at 1 MAIN ST, PORT", Timestamp: "2026-03-05T20:10:00Z", Coordinates: "45.50 -122.65", Source: "archive"},
		{Summary: "ASSAULT at 1 MAIN ST, PORT", Timestamp: "2026-03-05T22:40:00Z", Coordinates: "45.50 -122.65", Source: "archive"},
		{Summary: "THEFT at 2 OAK ST, PORT", Timestamp: "2026-03-06T01:05:00Z", Coordinates: "45.52 -122.60", Source: "feed"},
		{Summary: "VANDALISM at 2 OAK ST, PORT", Timestamp: "2026-03-06T18:30:00Z", Coordinates: "45.52 -122.60", Source: "feed"},
	}
	incidents, failed := NormalizeBatch(raws)
	require.Zero(t, failed)
	return CanonicalizeCoordinates(incidents)
}

func TestAggregateAllTime(t *testing.T) {
	incidents := testIncidents(t)
	cells := AggregateAllTime(incidents)
	require.Len(t, cells, 2)

	// Count conservation: cell counts sum to the incident count.
	total := 0
	for _, c := range cells {
		total += c.Count
	}
	assert.Equal(t, len(incidents), total)

	// Rows ordered by (lat, lon, address).
	assert.Equal(t, "1 MAIN ST, PORTLAND", cells[0].Address)
	assert.Equal(t, "2 OAK ST, PORTLAND", cells[1].Address)

	main := cells[0]
	assert.Equal(t, 45.50, main.Lat)
	assert.Equal(t, -122.65, main.Lon)
	assert.Equal(t, 2, main.Count)
	assert.Equal(t, main.Count, main.Weight)
	assert.Equal(t, "45.5, -122.65", main.LatLon)

	// Labels concatenate in group order and LastSeen is the group max.
	lines := strings.Split(main.Crimes, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "3/5 12:10PM - THEFT", lines[0])
	assert.Equal(t, "3/5 2:40PM - ASSAULT", lines[1])
	assert.Equal(t, time.Date(2026, 3, 5, 14, 40, 0, 0, referenceZone), main.LastSeen.In(referenceZone))
}

func TestAggregateAllTime_EmptyInput(t *testing.T) {
	cells := AggregateAllTime(nil)
	assert.NotNil(t, cells)
	assert.Empty(t, cells)
}

func TestAggregateAllTime_Idempotent(t *testing.T) {
	incidents := testIncidents(t)
	first := AggregateAllTime(incidents)
	second := AggregateAllTime(incidents)
	assert.Empty(t, cmp.Diff(first, second))
}

func TestAggregateByDay(t *testing.T) {
	incidents := testIncidents(t)
	cells := AggregateByDay(incidents)
	// 1 MAIN ST has both incidents on 3/5; 2 OAK ST spans two Pacific days
	// (3/5 evening and 3/6 morning local time).
	require.Len(t, cells, 3)

	for i := 1; i < len(cells); i++ {
		assert.False(t, cells[i].Day.Before(cells[i-1].Day), "per-day rows must be non-decreasing in day")
	}

	total := 0
	for _, c := range cells {
		total += c.Count
	}
	assert.Equal(t, len(incidents), total)
}

func TestAggregateByDay_EmptyInput(t *testing.T) {
	cells := AggregateByDay(nil)
	assert.NotNil(t, cells)
	assert.Empty(t, cells)
}

func TestTruncateCrimes(t *testing.T) {
	t.Run("at limit untouched", func(t *testing.T) {
		s := strings.Repeat("x", maxCrimesLen)
		assert.Equal(t, s, truncateCrimes(s))
	})

	t.Run("over limit truncated with ellipsis", func(t *testing.T) {
		s := strings.Repeat("x", maxCrimesLen+200)
		got := truncateCrimes(s)
		assert.Len(t, got, maxCrimesLen+3)
		assert.True(t, strings.HasSuffix(got, "..."))
		assert.Equal(t, s[:maxCrimesLen], got[:maxCrimesLen])
	})
}

func TestAggregateAllTime_TruncatesLongGroups(t *testing.T) {
	// Enough incidents at one address to exceed the hover-text bound.
	var raws []RawIncident
	for i := 0; i < 120; i++ {
		raws = append(raws, RawIncident{
			Summary:     "DISTURBANCE - PRIORITY at 1 MAIN ST, PORT",
			Timestamp:   time.Date(2026, 3, 5, 10, i%60, i/60, 0, time.UTC).Format(time.RFC3339),
			Coordinates: "45.50 -122.65",
		})
	}
	incidents, _ := NormalizeBatch(raws)
	cells := AggregateAllTime(CanonicalizeCoordinates(incidents))
	require.Len(t, cells, 1)
	assert.Len(t, cells[0].Crimes, maxCrimesLen+3)
}
