package domain

import "sort"

// rollingWindow is the number of hour buckets in the chart's trailing mean.
const rollingWindow = 24

// HourlySeries counts incidents per observed hour bucket, ascending, and
// attaches a trailing 24-bucket rolling mean once enough history exists.
func HourlySeries(incidents []Incident) []HourlyCount {
	counts := make(map[int64]int)
	buckets := make(map[int64]Incident)
	for _, inc := range incidents {
		key := inc.HourBucket.Unix()
		counts[key]++
		if _, ok := buckets[key]; !ok {
			buckets[key] = inc
		}
	}

	series := make([]HourlyCount, 0, len(counts))
	for key, n := range counts {
		series = append(series, HourlyCount{Hour: buckets[key].HourBucket, Count: n})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Hour.Before(series[j].Hour) })

	for i := range series {
		if i < rollingWindow-1 {
			continue
		}
		sum := 0
		for j := i - rollingWindow + 1; j <= i; j++ {
			sum += series[j].Count
		}
		mean := float64(sum) / rollingWindow
		series[i].Rolling24 = &mean
	}
	return series
}

// CategoryHourSeries counts incidents per (hour bucket, category), ordered by
// hour then category, for the stacked-bar consumer.
func CategoryHourSeries(incidents []Incident) []CategoryHourCount {
	type key struct {
		hourUnix int64
		category string
	}
	counts := make(map[key]int)
	hours := make(map[key]Incident)
	for _, inc := range incidents {
		k := key{hourUnix: inc.HourBucket.Unix(), category: inc.Category}
		counts[k]++
		if _, ok := hours[k]; !ok {
			hours[k] = inc
		}
	}

	series := make([]CategoryHourCount, 0, len(counts))
	for k, n := range counts {
		series = append(series, CategoryHourCount{
			Hour:     hours[k].HourBucket,
			Category: k.category,
			Count:    n,
		})
	}
	sort.Slice(series, func(i, j int) bool {
		if !series[i].Hour.Equal(series[j].Hour) {
			return series[i].Hour.Before(series[j].Hour)
		}
		return series[i].Category < series[j].Category
	})
	return series
}
