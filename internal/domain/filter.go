package domain

import (
	"sort"
	"time"
)

// FilterSince keeps incidents at or after cutoff. Used to apply the lookback
// window before merge.
func FilterSince(incidents []Incident, cutoff time.Time) []Incident {
	out := make([]Incident, 0, len(incidents))
	for _, inc := range incidents {
		if !inc.Time.Before(cutoff) {
			out = append(out, inc)
		}
	}
	return out
}

// FilterCategories keeps incidents whose category is in the allow-list. A nil
// list means no filtering; an empty non-nil list selects nothing, which is a
// valid request that yields empty aggregate tables.
func FilterCategories(incidents []Incident, allowed []string) []Incident {
	if allowed == nil {
		return incidents
	}
	allow := make(map[string]struct{}, len(allowed))
	for _, c := range allowed {
		allow[c] = struct{}{}
	}
	out := make([]Incident, 0, len(incidents))
	for _, inc := range incidents {
		if _, ok := allow[inc.Category]; ok {
			out = append(out, inc)
		}
	}
	return out
}

// Categories returns the distinct observed crime categories, sorted.
func Categories(incidents []Incident) []string {
	seen := make(map[string]struct{})
	for _, inc := range incidents {
		seen[inc.Category] = struct{}{}
	}
	cats := make([]string, 0, len(seen))
	for c := range seen {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	return cats
}
