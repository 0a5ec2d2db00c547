package analysis

import (
	"sort"

	"github.com/raglens/rag-lens/internal/pkg/errors"
	"github.com/raglens/rag-lens/internal/pkg/stats"
	"github.com/raglens/rag-lens/internal/telemetry"
)

// Summary computes the five-section cross-sectional report. It returns a
// no-data error for an empty record set: statistics over nothing are
// undefined and must never come back as zeros.
func (e *Engine) Summary() (*SummaryReport, error) {
	if len(e.records) == 0 {
		return nil, errors.NoDataError()
	}

	return &SummaryReport{
		Overview:    e.overview(),
		Performance: e.performance(),
		Content:     e.content(),
		Behavior:    e.behavior(),
		Errors:      e.errorAnalysis(),
	}, nil
}

func (e *Engine) overview() Overview {
	total := len(e.records)

	sessions := make(map[string]struct{})
	successes := 0
	cached := 0
	first := e.records[0].Timestamp
	last := e.records[0].Timestamp

	for _, r := range e.records {
		sessions[r.SessionID] = struct{}{}
		if r.Success {
			successes++
		}
		if r.Cached {
			cached++
		}
		if r.Timestamp.Before(first) {
			first = r.Timestamp
		}
		if r.Timestamp.After(last) {
			last = r.Timestamp
		}
	}

	return Overview{
		TotalQueries:   total,
		UniqueSessions: len(sessions),
		FirstTimestamp: first,
		LastTimestamp:  last,
		SuccessRate:    percent(successes, total),
		CacheHitRate:   percent(cached, total),
	}
}

func (e *Engine) performance() Performance {
	responseTimes := column(e.records, func(r *telemetry.QueryRecord) float64 {
		return r.TotalResponseTime
	})

	avg, _ := stats.Mean(responseTimes)
	median, _ := stats.Median(responseTimes)
	p95, _ := stats.Quantile(responseTimes, 0.95)
	min, _ := stats.Min(responseTimes)
	max, _ := stats.Max(responseTimes)

	avgVector, _ := stats.Mean(column(e.records, func(r *telemetry.QueryRecord) float64 {
		return r.VectorSearchTime
	}))
	avgGeneration, _ := stats.Mean(column(e.records, func(r *telemetry.QueryRecord) float64 {
		return r.GenerationTime
	}))

	return Performance{
		AvgResponseTime:     avg,
		MedianResponseTime:  median,
		P95ResponseTime:     p95,
		MinResponseTime:     min,
		MaxResponseTime:     max,
		AvgVectorSearchTime: avgVector,
		AvgGenerationTime:   avgGeneration,
	}
}

func (e *Engine) content() Content {
	avgQuery, _ := stats.Mean(column(e.records, func(r *telemetry.QueryRecord) float64 {
		return float64(r.QueryLength)
	}))
	avgAnswer, _ := stats.Mean(column(e.records, func(r *telemetry.QueryRecord) float64 {
		return float64(r.AnswerLength)
	}))
	avgDocs, _ := stats.Mean(column(e.records, func(r *telemetry.QueryRecord) float64 {
		return float64(r.DocumentsRetrieved)
	}))
	avgSources, _ := stats.Mean(column(e.records, func(r *telemetry.QueryRecord) float64 {
		return float64(r.UniqueSources)
	}))

	return Content{
		AvgQueryLength:        avgQuery,
		AvgAnswerLength:       avgAnswer,
		AvgDocumentsRetrieved: avgDocs,
		AvgUniqueSources:      avgSources,
		TopDocumentCounts:     e.topDocumentCounts(),
	}
}

// topDocumentCounts builds the frequency table of the most common
// documents_retrieved values, descending by count, ties broken by
// first-encountered value.
func (e *Engine) topDocumentCounts() []ValueCount {
	counts := make(map[int]int)
	firstSeen := make(map[int]int)

	for i, r := range e.records {
		if _, ok := counts[r.DocumentsRetrieved]; !ok {
			firstSeen[r.DocumentsRetrieved] = i
		}
		counts[r.DocumentsRetrieved]++
	}

	rows := make([]ValueCount, 0, len(counts))
	for value, count := range counts {
		rows = append(rows, ValueCount{Value: value, Count: count})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return firstSeen[rows[i].Value] < firstSeen[rows[j].Value]
	})

	if len(rows) > e.cfg.TopDocumentValues {
		rows = rows[:e.cfg.TopDocumentValues]
	}
	return rows
}

func (e *Engine) behavior() Behavior {
	type sessionAgg struct {
		maxDuration float64
		count       int
	}

	sessions := make(map[string]*sessionAgg)
	var similarities, gaps []float64

	for _, r := range e.records {
		agg, ok := sessions[r.SessionID]
		if !ok {
			agg = &sessionAgg{}
			sessions[r.SessionID] = agg
		}
		agg.count++
		if r.SessionDurationSeconds > agg.maxDuration {
			agg.maxDuration = r.SessionDurationSeconds
		}

		// Absent session-scoped fields are excluded from the
		// denominators, never coerced to zero.
		if r.QuerySimilarityToPrevious != nil {
			similarities = append(similarities, *r.QuerySimilarityToPrevious)
		}
		if r.TimeSinceLastQuery != nil {
			gaps = append(gaps, *r.TimeSinceLastQuery)
		}
	}

	var durations, counts []float64
	for _, agg := range sessions {
		durations = append(durations, agg.maxDuration)
		counts = append(counts, float64(agg.count))
	}

	avgDuration, _ := stats.Mean(durations)
	avgPerSession, _ := stats.Mean(counts)

	b := Behavior{
		AvgSessionDuration:   avgDuration,
		AvgQueriesPerSession: avgPerSession,
	}
	if avg, ok := stats.Mean(similarities); ok {
		b.AvgQuerySimilarity = &avg
	}
	if avg, ok := stats.Mean(gaps); ok {
		b.AvgTimeBetweenQueries = &avg
	}
	return b
}

func (e *Engine) errorAnalysis() ErrorAnalysis {
	failures := 0
	counts := make(map[string]int)

	for _, r := range e.records {
		if r.Success {
			continue
		}
		failures++
		if r.ErrorType != nil {
			counts[*r.ErrorType]++
		}
	}

	return ErrorAnalysis{
		ErrorRate:   percent(failures, len(e.records)),
		ErrorCounts: counts,
	}
}

// column extracts one numeric field from every record.
func column(records []telemetry.QueryRecord, extract func(*telemetry.QueryRecord) float64) []float64 {
	values := make([]float64, len(records))
	for i := range records {
		values[i] = extract(&records[i])
	}
	return values
}

// percent returns part/total as a percentage.
func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
