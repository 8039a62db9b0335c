package domain

import (
	"strconv"
	"strings"
)

// abbreviations maps postal shorthand in feed addresses to full city names.
// Expansion is unconditional substring replacement; a missing substring is a
// no-op.
var abbreviations = [][2]string{
	{", PORT", ", PORTLAND"},
	{", GRSM", ", GRESHAM"},
}

// SummaryParts holds the structured fields extracted from one report summary.
type SummaryParts struct {
	Category   string
	Address    string
	ExternalID string
}

// ParseSummary splits a free-text summary per the grammar
// "<category> at <address> [<id>]". Both separators are optional: without
// " at " the whole text becomes the category and the address is empty;
// without " [" the external ID is empty. Never returns an error; there is no
// malformed summary, only a partial parse.
func ParseSummary(summary string) SummaryParts {
	category, rest, found := strings.Cut(summary, " at ")
	if !found {
		return SummaryParts{Category: strings.TrimSpace(summary)}
	}

	address, id, _ := strings.Cut(rest, " [")
	id = strings.TrimSuffix(strings.TrimSpace(id), "]")

	return SummaryParts{
		Category:   strings.TrimSpace(category),
		Address:    expandAbbreviations(strings.TrimSpace(address)),
		ExternalID: id,
	}
}

func expandAbbreviations(address string) string {
	for _, ab := range abbreviations {
		address = strings.ReplaceAll(address, ab[0], ab[1])
	}
	return address
}

// ParseCoordinates splits a "lat lon" string on the first space and parses
// both halves. Returns ok=false with zero values when the string has no
// space or either half is not numeric; blank coordinates are expected in the
// source data and are not an error.
func ParseCoordinates(raw string) (lat, lon float64, ok bool) {
	latStr, lonStr, found := strings.Cut(strings.TrimSpace(raw), " ")
	if !found {
		return 0, 0, false
	}

	lat, errLat := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	lon, errLon := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if errLat != nil || errLon != nil {
		return 0, 0, false
	}
	return lat, lon, true
}
