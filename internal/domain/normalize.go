package domain

import (
	"fmt"
	"time"
)

// eventLabelLayout renders "4/26 3:10PM": no zero padding, 12-hour clock.
const eventLabelLayout = "1/2 3:04PM"

// referenceZone is the fixed zone every incident is normalized into. Both
// bucketing and event labels use it; naive/aware timestamps never mix past
// normalization.
var referenceZone = mustLocation("America/Los_Angeles")

func mustLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(fmt.Sprintf("load reference zone %s: %v", name, err))
	}
	return loc
}

// ReferenceZone returns the zone incidents are normalized into.
func ReferenceZone() *time.Location { return referenceZone }

// timestampLayouts lists accepted source encodings. Zone-bearing layouts come
// first; naive layouts are parsed as UTC, which is how the archive writes
// them.
var timestampLayouts = []struct {
	layout string
	naive  bool
}{
	{layout: time.RFC3339, naive: false},
	{layout: "2006-01-02 15:04:05Z07:00", naive: false},
	{layout: "2006-01-02T15:04:05", naive: true},
	{layout: "2006-01-02 15:04:05", naive: true},
}

// ParseTimestamp converts a raw source timestamp into an aware instant in the
// reference zone. Naive inputs are assumed UTC.
func ParseTimestamp(raw string) (time.Time, error) {
	for _, l := range timestampLayouts {
		var t time.Time
		var err error
		if l.naive {
			t, err = time.ParseInLocation(l.layout, raw, time.UTC)
		} else {
			t, err = time.Parse(l.layout, raw)
		}
		if err == nil {
			return t.In(referenceZone), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", raw)
}

// FloorHour floors t to the hour in its own zone. Ambiguous local instants
// around DST fold-backs are taken as-is.
func FloorHour(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
}

// FloorDay floors t to midnight in its own zone.
func FloorDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// NormalizeRecord converts one raw record into a canonical Incident. The
// transform is pure: parsing failures on summary or coordinates degrade to
// partial values, and only an unparsable timestamp is an error.
func NormalizeRecord(raw RawIncident) (Incident, error) {
	t, err := ParseTimestamp(raw.Timestamp)
	if err != nil {
		return Incident{}, fmt.Errorf("normalize %s record: %w", raw.Source, err)
	}

	parts := ParseSummary(raw.Summary)
	lat, lon, _ := ParseCoordinates(raw.Coordinates)

	return Incident{
		Category:   parts.Category,
		Address:    parts.Address,
		ExternalID: parts.ExternalID,
		Time:       t,
		HourBucket: FloorHour(t),
		DayBucket:  FloorDay(t),
		Lat:        lat,
		Lon:        lon,
		EventLabel: t.Format(eventLabelLayout) + " - " + parts.Category,
		Source:     raw.Source,
		RawSummary: raw.Summary,
		RawCoords:  raw.Coordinates,
	}, nil
}

// NormalizeBatch applies NormalizeRecord to a whole source batch. Records
// whose timestamp cannot be parsed are dropped and counted, never fatal.
func NormalizeBatch(batch []RawIncident) (incidents []Incident, failed int) {
	incidents = make([]Incident, 0, len(batch))
	for _, raw := range batch {
		inc, err := NormalizeRecord(raw)
		if err != nil {
			failed++
			continue
		}
		incidents = append(incidents, inc)
	}
	return incidents, failed
}
