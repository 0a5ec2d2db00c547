package analysis

import (
	"sort"
	"time"
)

// Trends buckets records by the clock hour of their own timestamp and
// reports per-bucket aggregates for the most recent TrendWindow buckets,
// in chronological order. Hours with no records are absent, never
// synthesized. An empty record set yields an empty list: that is the trend
// report's no-data signal.
func (e *Engine) Trends() []TrendBucket {
	type bucketAgg struct {
		count       int
		sumResponse float64
		successes   int
		cached      int
	}

	buckets := make(map[time.Time]*bucketAgg)
	for _, r := range e.records {
		hour := r.HourBucket()
		agg, ok := buckets[hour]
		if !ok {
			agg = &bucketAgg{}
			buckets[hour] = agg
		}
		agg.count++
		agg.sumResponse += r.TotalResponseTime
		if r.Success {
			agg.successes++
		}
		if r.Cached {
			agg.cached++
		}
	}

	hours := make([]time.Time, 0, len(buckets))
	for hour := range buckets {
		hours = append(hours, hour)
	}
	sort.Slice(hours, func(i, j int) bool {
		return hours[i].Before(hours[j])
	})

	// Keep only the most recent window
	if len(hours) > e.cfg.TrendWindow {
		hours = hours[len(hours)-e.cfg.TrendWindow:]
	}

	result := make([]TrendBucket, 0, len(hours))
	for _, hour := range hours {
		agg := buckets[hour]
		result = append(result, TrendBucket{
			Hour:            hour,
			QueryCount:      agg.count,
			AvgResponseTime: agg.sumResponse / float64(agg.count),
			SuccessRate:     float64(agg.successes) / float64(agg.count),
			CacheHitRate:    float64(agg.cached) / float64(agg.count),
		})
	}
	return result
}
