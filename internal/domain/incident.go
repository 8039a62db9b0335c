package domain

import "time"

// RawIncident is one record as delivered by a source adapter, before any
// parsing. Discarded after normalization.
type RawIncident struct {
	Summary     string // free-text report summary
	Timestamp   string // report time; may lack a zone offset
	Coordinates string // "lat lon", space separated
	Source      string // "archive" or "feed"
}

// Incident is the canonical structured record after normalization.
type Incident struct {
	Category   string    `json:"category"`
	Address    string    `json:"address"`
	ExternalID string    `json:"external_id,omitempty"`
	Time       time.Time `json:"time"`
	HourBucket time.Time `json:"hour_bucket"`
	DayBucket  time.Time `json:"day_bucket"`
	Lat        float64   `json:"lat"`
	Lon        float64   `json:"lon"`
	EventLabel string    `json:"event_label"`
	Source     string    `json:"source,omitempty"`

	// Raw fields are retained because they form the dedup identity and feed
	// coordinate reconciliation. Not part of the serialized record.
	RawSummary string `json:"-"`
	RawCoords  string `json:"-"`
}

// MapCell is one row of the all-time aggregated table consumed by the map
// renderers: one cell per canonical (lat, lon, address).
type MapCell struct {
	Lat      float64   `json:"latitude"`
	Lon      float64   `json:"longitude"`
	Address  string    `json:"address"`
	Crimes   string    `json:"crimes"` // newline-joined event labels, truncated
	Count    int       `json:"count"`
	LastSeen time.Time `json:"last_seen"`

	// Weight is the rendering-size input. Currently identity-scaled from
	// Count; kept as a separate column so non-linear scaling can be applied
	// without changing consumers.
	Weight int `json:"weight"`

	// LatLon is a display string used as a stable animation-group key.
	LatLon string `json:"lat_lon"`
}

// DailyMapCell is one row of the per-day aggregated table: a MapCell sliced
// by day bucket, ordered ascending by day for the animation slider.
type DailyMapCell struct {
	MapCell
	Day time.Time `json:"day"`
}

// HourlyCount is one row of the hour-bucketed incident series.
type HourlyCount struct {
	Hour  time.Time `json:"hour"`
	Count int       `json:"count"`

	// Rolling24 is the trailing 24-bucket mean. Nil until 24 buckets of
	// history exist, matching how the chart renders a partial window.
	Rolling24 *float64 `json:"rolling_24,omitempty"`
}

// CategoryHourCount is one row of the hour×category table behind the
// stacked-bar view.
type CategoryHourCount struct {
	Hour     time.Time `json:"hour"`
	Category string    `json:"category"`
	Count    int       `json:"count"`
}
