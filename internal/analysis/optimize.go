package analysis

import (
	"fmt"

	"github.com/raglens/rag-lens/internal/pkg/stats"
	"github.com/raglens/rag-lens/internal/telemetry"
)

// Optimize evaluates the four advisory heuristics against the full record
// set. Each heuristic contributes at most one finding; all four are always
// evaluated. An empty record set yields no findings.
func (e *Engine) Optimize() []Finding {
	var findings []Finding

	if f, ok := e.slowQueries(); ok {
		findings = append(findings, f)
	}
	if f, ok := e.cacheOpportunities(); ok {
		findings = append(findings, f)
	}
	if f, ok := e.retrievalMisses(); ok {
		findings = append(findings, f)
	}
	if f, ok := e.generationBottlenecks(); ok {
		findings = append(findings, f)
	}
	return findings
}

// slowQueries flags records strictly above the slow-quantile response
// time. On a uniform dataset the threshold equals every value and nothing
// exceeds it, so no finding is emitted.
func (e *Engine) slowQueries() (Finding, bool) {
	threshold, ok := stats.Quantile(column(e.records, func(r *telemetry.QueryRecord) float64 {
		return r.TotalResponseTime
	}), e.cfg.SlowQuantile)
	if !ok {
		return Finding{}, false
	}

	var slow []float64
	for _, r := range e.records {
		if r.TotalResponseTime > threshold {
			slow = append(slow, r.TotalResponseTime)
		}
	}
	if len(slow) == 0 {
		return Finding{}, false
	}

	mean, _ := stats.Mean(slow)
	return Finding{
		Type:        FindingSlowQueries,
		Count:       len(slow),
		Percentage:  percent(len(slow), len(e.records)),
		MeanSeconds: mean,
		Threshold:   threshold,
		Message: fmt.Sprintf("%d queries (%.1f%%) exceed the p%.0f response time of %.2fs, averaging %.2fs",
			len(slow), percent(len(slow), len(e.records)), e.cfg.SlowQuantile*100, threshold, mean),
	}, true
}

// cacheOpportunities counts query patterns that repeated without ever
// being served from cache. The count is distinct patterns, not records.
func (e *Engine) cacheOpportunities() (Finding, bool) {
	uncached := make(map[string]int)
	for _, r := range e.records {
		if !r.Cached {
			uncached[r.QueryHash]++
		}
	}

	repeated := 0
	for _, n := range uncached {
		if n > 1 {
			repeated++
		}
	}
	if repeated == 0 {
		return Finding{}, false
	}

	return Finding{
		Type:  FindingCacheOpportunities,
		Count: repeated,
		Message: fmt.Sprintf("%d query patterns repeated without a cache hit; caching them would avoid redundant work",
			repeated),
	}, true
}

// retrievalMisses flags queries that retrieved no documents at all.
func (e *Engine) retrievalMisses() (Finding, bool) {
	misses := 0
	for _, r := range e.records {
		if r.DocumentsRetrieved == 0 {
			misses++
		}
	}
	if misses == 0 {
		return Finding{}, false
	}

	return Finding{
		Type:       FindingRetrievalMisses,
		Count:      misses,
		Percentage: percent(misses, len(e.records)),
		Message: fmt.Sprintf("%d queries (%.1f%%) retrieved zero documents",
			misses, percent(misses, len(e.records))),
	}, true
}

// generationBottlenecks flags records strictly above the generation-quantile
// generation time.
func (e *Engine) generationBottlenecks() (Finding, bool) {
	threshold, ok := stats.Quantile(column(e.records, func(r *telemetry.QueryRecord) float64 {
		return r.GenerationTime
	}), e.cfg.GenerationQuantile)
	if !ok {
		return Finding{}, false
	}

	var slow []float64
	for _, r := range e.records {
		if r.GenerationTime > threshold {
			slow = append(slow, r.GenerationTime)
		}
	}
	if len(slow) == 0 {
		return Finding{}, false
	}

	mean, _ := stats.Mean(slow)
	return Finding{
		Type:        FindingGenerationBottlenecks,
		Count:       len(slow),
		MeanSeconds: mean,
		Threshold:   threshold,
		Message: fmt.Sprintf("%d queries exceed the p%.0f generation time of %.2fs, averaging %.2fs",
			len(slow), e.cfg.GenerationQuantile*100, threshold, mean),
	}, true
}
