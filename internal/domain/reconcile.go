package domain

// CanonicalizeCoordinates rewrites every incident so that all incidents
// sharing an address carry one canonical coordinate pair. The canonical pair
// is the most frequently observed raw coordinate string for that address;
// frequency ties resolve to the first-encountered string in grouping order.
// An address seen once trivially keeps its sole observation.
//
// Must run after MergeDedup so frequencies reflect the full reconciled
// window, and before aggregation so downstream grouping is coordinate-stable
// per address. Input is not mutated.
func CanonicalizeCoordinates(incidents []Incident) []Incident {
	counts := make(map[string]map[string]int)    // address → coord string → occurrences
	firstSeen := make(map[string]map[string]int) // address → coord string → arrival rank

	for _, inc := range incidents {
		if counts[inc.Address] == nil {
			counts[inc.Address] = make(map[string]int)
			firstSeen[inc.Address] = make(map[string]int)
		}
		if _, ok := firstSeen[inc.Address][inc.RawCoords]; !ok {
			firstSeen[inc.Address][inc.RawCoords] = len(firstSeen[inc.Address])
		}
		counts[inc.Address][inc.RawCoords]++
	}

	canonical := make(map[string]string, len(counts))
	for address, coordCounts := range counts {
		best := ""
		bestCount := -1
		for coords, n := range coordCounts {
			switch {
			case n > bestCount:
				best, bestCount = coords, n
			case n == bestCount && firstSeen[address][coords] < firstSeen[address][best]:
				best = coords
			}
		}
		canonical[address] = best
	}

	out := make([]Incident, len(incidents))
	for i, inc := range incidents {
		coords := canonical[inc.Address]
		inc.RawCoords = coords
		inc.Lat, inc.Lon, _ = ParseCoordinates(coords)
		out[i] = inc
	}
	return out
}
