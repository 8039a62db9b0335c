package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	t.Run("rfc3339 with offset", func(t *testing.T) {
		got, err := ParseTimestamp("2026-03-05T15:10:00-08:00")
		require.NoError(t, err)
		assert.Equal(t, "America/Los_Angeles", got.Location().String())
		assert.Equal(t, 15, got.Hour())
	})

	t.Run("naive assumed utc", func(t *testing.T) {
		aware, err := ParseTimestamp("2026-03-05T23:10:00Z")
		require.NoError(t, err)
		naive, err := ParseTimestamp("2026-03-05 23:10:00")
		require.NoError(t, err)
		assert.True(t, aware.Equal(naive), "naive and aware encodings of the same instant must converge")
	})

	t.Run("unrecognized", func(t *testing.T) {
		_, err := ParseTimestamp("yesterday-ish")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unrecognized timestamp")
	})
}

func TestFloorBuckets(t *testing.T) {
	ts := time.Date(2026, 3, 5, 15, 42, 13, 999, referenceZone)
	assert.Equal(t, time.Date(2026, 3, 5, 15, 0, 0, 0, referenceZone), FloorHour(ts))
	assert.Equal(t, time.Date(2026, 3, 5, 0, 0, 0, 0, referenceZone), FloorDay(ts))
}

func TestFloorHour_DSTFallBack(t *testing.T) {
	// 2026-11-01 01:30 PST, the second occurrence of 1:30 AM that morning.
	ts := time.Date(2026, 11, 1, 9, 30, 0, 0, time.UTC).In(referenceZone)
	floored := FloorHour(ts)
	assert.Equal(t, 1, floored.Hour())
	assert.False(t, floored.After(ts))
}

func TestNormalizeRecord(t *testing.T) {
	raw := RawIncident{
		Summary:     "THEFT at 100 MAIN ST, PORT [A1234]",
		Timestamp:   "2026-03-05T23:10:00Z", // 3:10 PM PST
		Coordinates: "45.50 -122.65",
		Source:      "feed",
	}

	inc, err := NormalizeRecord(raw)
	require.NoError(t, err)

	assert.Equal(t, "THEFT", inc.Category)
	assert.Equal(t, "100 MAIN ST, PORTLAND", inc.Address)
	assert.Equal(t, "A1234", inc.ExternalID)
	assert.Equal(t, 45.50, inc.Lat)
	assert.Equal(t, -122.65, inc.Lon)
	assert.Equal(t, "feed", inc.Source)

	assert.Equal(t, time.Date(2026, 3, 5, 15, 10, 0, 0, referenceZone), inc.Time)
	assert.Equal(t, time.Date(2026, 3, 5, 15, 0, 0, 0, referenceZone), inc.HourBucket)
	assert.Equal(t, time.Date(2026, 3, 5, 0, 0, 0, 0, referenceZone), inc.DayBucket)
	assert.Equal(t, "3/5 3:10PM - THEFT", inc.EventLabel)

	assert.Equal(t, raw.Summary, inc.RawSummary)
	assert.Equal(t, raw.Coordinates, inc.RawCoords)
}

func TestNormalizeRecord_PartialParses(t *testing.T) {
	t.Run("summary without at", func(t *testing.T) {
		inc, err := NormalizeRecord(RawIncident{
			Summary:   "UNKNOWN DISPATCH",
			Timestamp: "2026-03-05T23:10:00Z",
		})
		require.NoError(t, err)
		assert.Equal(t, "UNKNOWN DISPATCH", inc.Category)
		assert.Empty(t, inc.Address)
		assert.Empty(t, inc.ExternalID)
	})

	t.Run("blank coordinates", func(t *testing.T) {
		inc, err := NormalizeRecord(RawIncident{
			Summary:     "THEFT at 1 MAIN ST, PORT",
			Timestamp:   "2026-03-05T23:10:00Z",
			Coordinates: "",
		})
		require.NoError(t, err)
		assert.Zero(t, inc.Lat)
		assert.Zero(t, inc.Lon)
	})
}

func TestNormalizeBatch_DropsUnparsableTimestamps(t *testing.T) {
	batch := []RawIncident{
		{Summary: "THEFT at 1 MAIN ST, PORT", Timestamp: "2026-03-05T23:10:00Z"},
		{Summary: "THEFT at 2 MAIN ST, PORT", Timestamp: "not a time"},
		{Summary: "THEFT at 3 MAIN ST, PORT", Timestamp: "2026-03-05 23:11:00"},
	}

	incidents, failed := NormalizeBatch(batch)
	assert.Len(t, incidents, 2)
	assert.Equal(t, 1, failed)
}
