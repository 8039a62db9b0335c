package domain

import (
	"fmt"
	"sort"
	"strings"
)

// maxCrimesLen bounds the concatenated hover-text payload per cell. Longer
// text is cut to exactly this many characters plus a three-character
// ellipsis marker.
const maxCrimesLen = 1500

func truncateCrimes(s string) string {
	if len(s) > maxCrimesLen {
		return s[:maxCrimesLen] + "..."
	}
	return s
}

type cellKey struct {
	lat     float64
	lon     float64
	address string
}

type cellAccum struct {
	labels   []string
	count    int
	lastSeen int // index of the incident with the max timestamp
	maxTime  int64
}

// AggregateAllTime groups incidents by canonical (lat, lon, address) and
// reduces each group to one MapCell: event labels joined by newlines in
// arrival order, group size, and the most recent timestamp. Rows are ordered
// by (lat, lon, address). An empty input yields an empty, non-nil table.
func AggregateAllTime(incidents []Incident) []MapCell {
	groups := make(map[cellKey]*cellAccum)
	for i, inc := range incidents {
		key := cellKey{lat: inc.Lat, lon: inc.Lon, address: inc.Address}
		acc := groups[key]
		if acc == nil {
			acc = &cellAccum{lastSeen: i, maxTime: inc.Time.UnixNano()}
			groups[key] = acc
		}
		acc.labels = append(acc.labels, inc.EventLabel)
		acc.count++
		if inc.Time.UnixNano() > acc.maxTime {
			acc.maxTime = inc.Time.UnixNano()
			acc.lastSeen = i
		}
	}

	cells := make([]MapCell, 0, len(groups))
	for key, acc := range groups {
		cells = append(cells, MapCell{
			Lat:      key.lat,
			Lon:      key.lon,
			Address:  key.address,
			Crimes:   truncateCrimes(strings.Join(acc.labels, "\n")),
			Count:    acc.count,
			LastSeen: incidents[acc.lastSeen].Time,
			Weight:   acc.count * 1, // identity scaling, see MapCell.Weight
			LatLon:   formatLatLon(key.lat, key.lon),
		})
	}

	sort.Slice(cells, func(i, j int) bool { return lessCell(cells[i], cells[j]) })
	return cells
}

type dailyKey struct {
	cellKey
	dayUnix int64
}

// AggregateByDay is AggregateAllTime with the day bucket as an additional
// group key. Rows are ordered ascending by day first so the animation slider
// advances chronologically, then by (lat, lon, address).
func AggregateByDay(incidents []Incident) []DailyMapCell {
	groups := make(map[dailyKey]*cellAccum)
	days := make(map[dailyKey]int) // group → index of a representative incident
	for i, inc := range incidents {
		key := dailyKey{
			cellKey: cellKey{lat: inc.Lat, lon: inc.Lon, address: inc.Address},
			dayUnix: inc.DayBucket.Unix(),
		}
		acc := groups[key]
		if acc == nil {
			acc = &cellAccum{lastSeen: i, maxTime: inc.Time.UnixNano()}
			groups[key] = acc
			days[key] = i
		}
		acc.labels = append(acc.labels, inc.EventLabel)
		acc.count++
		if inc.Time.UnixNano() > acc.maxTime {
			acc.maxTime = inc.Time.UnixNano()
			acc.lastSeen = i
		}
	}

	cells := make([]DailyMapCell, 0, len(groups))
	for key, acc := range groups {
		cells = append(cells, DailyMapCell{
			MapCell: MapCell{
				Lat:      key.lat,
				Lon:      key.lon,
				Address:  key.address,
				Crimes:   truncateCrimes(strings.Join(acc.labels, "\n")),
				Count:    acc.count,
				LastSeen: incidents[acc.lastSeen].Time,
				Weight:   acc.count * 1,
				LatLon:   formatLatLon(key.lat, key.lon),
			},
			Day: incidents[days[key]].DayBucket,
		})
	}

	sort.Slice(cells, func(i, j int) bool {
		if !cells[i].Day.Equal(cells[j].Day) {
			return cells[i].Day.Before(cells[j].Day)
		}
		return lessCell(cells[i].MapCell, cells[j].MapCell)
	})
	return cells
}

func lessCell(a, b MapCell) bool {
	if a.Lat != b.Lat {
		return a.Lat < b.Lat
	}
	if a.Lon != b.Lon {
		return a.Lon < b.Lon
	}
	return a.Address < b.Address
}

func formatLatLon(lat, lon float64) string {
	return fmt.Sprintf("%v, %v", lat, lon)
}
