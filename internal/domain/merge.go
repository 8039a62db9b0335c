package domain

import "sort"

// dedupKey is a record's identity across sources: the same physical event
// redelivered by both the archive and the feed carries the same timestamp,
// summary text, and coordinate string.
type dedupKey struct {
	unixNano int64
	summary  string
	coords   string
}

// MergeDedup unions normalized batches, collapsing records with identical
// (timestamp, raw summary, raw coordinate string) to one copy. The first
// occurrence wins; output is ordered ascending by timestamp. The result is
// never larger than the sum of the inputs.
func MergeDedup(batches ...[]Incident) []Incident {
	total := 0
	for _, b := range batches {
		total += len(b)
	}

	seen := make(map[dedupKey]struct{}, total)
	merged := make([]Incident, 0, total)
	for _, batch := range batches {
		for _, inc := range batch {
			key := dedupKey{
				unixNano: inc.Time.UnixNano(),
				summary:  inc.RawSummary,
				coords:   inc.RawCoords,
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, inc)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Time.Before(merged[j].Time)
	})
	return merged
}
