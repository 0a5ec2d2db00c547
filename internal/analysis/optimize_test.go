package analysis

import (
	"fmt"
	"math"
	"testing"

	"github.com/raglens/rag-lens/internal/telemetry"
)

func findingByType(findings []Finding, ft FindingType) (Finding, bool) {
	for _, f := range findings {
		if f.Type == ft {
			return f, true
		}
	}
	return Finding{}, false
}

func TestOptimize_UniformDatasetNoFindings(t *testing.T) {
	// Identical records: every quantile threshold equals every value, so
	// nothing strictly exceeds it, every pattern is distinct, and no query
	// retrieves zero documents.
	var records []telemetry.QueryRecord
	for i := 0; i < 10; i++ {
		r := rec("2025-06-01T10:00:00Z", fmt.Sprintf("s%d", i), 1.0)
		records = append(records, r)
	}

	if findings := newTestEngine(records).Optimize(); len(findings) != 0 {
		t.Errorf("Optimize() = %+v, want no findings", findings)
	}
}

func TestOptimize_SlowQueries(t *testing.T) {
	// Response times 1..100: p90 interpolates to 90.1, leaving exactly
	// the ten records 91..100 above it with mean 95.5.
	var records []telemetry.QueryRecord
	for i := 1; i <= 100; i++ {
		r := rec("2025-06-01T10:00:00Z", fmt.Sprintf("s%d", i), float64(i))
		r.GenerationTime = 0.5
		records = append(records, r)
	}

	findings := newTestEngine(records).Optimize()
	f, ok := findingByType(findings, FindingSlowQueries)
	if !ok {
		t.Fatalf("Optimize() = %+v, want a slow_queries finding", findings)
	}

	if f.Count != 10 {
		t.Errorf("Count = %d, want 10", f.Count)
	}
	if f.Percentage != 10.0 {
		t.Errorf("Percentage = %v, want 10.0", f.Percentage)
	}
	if math.Abs(f.Threshold-90.1) > 1e-9 {
		t.Errorf("Threshold = %v, want 90.1", f.Threshold)
	}
	if math.Abs(f.MeanSeconds-95.5) > 1e-9 {
		t.Errorf("MeanSeconds = %v, want 95.5", f.MeanSeconds)
	}
	if f.Message == "" {
		t.Error("Message is empty")
	}
}

func TestOptimize_CacheOpportunities(t *testing.T) {
	// Five uncached records sharing a hash count as one repeated pattern.
	var records []telemetry.QueryRecord
	for i := 0; i < 5; i++ {
		r := rec("2025-06-01T10:00:00Z", "s1", 1.0)
		r.QueryHash = "abc123"
		records = append(records, r)
	}

	findings := newTestEngine(records).Optimize()
	f, ok := findingByType(findings, FindingCacheOpportunities)
	if !ok {
		t.Fatalf("Optimize() = %+v, want a cache_opportunities finding", findings)
	}
	if f.Count != 1 {
		t.Errorf("Count = %d, want 1 distinct pattern", f.Count)
	}
}

func TestOptimize_CacheSingletonsIgnored(t *testing.T) {
	// Each hash seen once: no repetition, no finding.
	var records []telemetry.QueryRecord
	for i := 0; i < 5; i++ {
		records = append(records, rec("2025-06-01T10:00:00Z", fmt.Sprintf("s%d", i), 1.0))
	}

	findings := newTestEngine(records).Optimize()
	if _, ok := findingByType(findings, FindingCacheOpportunities); ok {
		t.Errorf("Optimize() = %+v, want no cache_opportunities finding", findings)
	}
}

func TestOptimize_CachedRepeatsIgnored(t *testing.T) {
	// Repetition that already hits the cache is not an opportunity.
	var records []telemetry.QueryRecord
	for i := 0; i < 4; i++ {
		r := rec("2025-06-01T10:00:00Z", "s1", 1.0)
		r.QueryHash = "abc123"
		r.Cached = i > 0
		records = append(records, r)
	}

	findings := newTestEngine(records).Optimize()
	if _, ok := findingByType(findings, FindingCacheOpportunities); ok {
		t.Errorf("Optimize() = %+v, want no cache_opportunities finding", findings)
	}
}

func TestOptimize_RetrievalMisses(t *testing.T) {
	var records []telemetry.QueryRecord
	for i := 0; i < 8; i++ {
		records = append(records, rec("2025-06-01T10:00:00Z", fmt.Sprintf("s%d", i), 1.0))
	}
	records[2].DocumentsRetrieved = 0
	records[5].DocumentsRetrieved = 0

	findings := newTestEngine(records).Optimize()
	f, ok := findingByType(findings, FindingRetrievalMisses)
	if !ok {
		t.Fatalf("Optimize() = %+v, want a retrieval_misses finding", findings)
	}
	if f.Count != 2 {
		t.Errorf("Count = %d, want 2", f.Count)
	}
	if f.Percentage != 25.0 {
		t.Errorf("Percentage = %v, want 25.0", f.Percentage)
	}
}

func TestOptimize_GenerationBottlenecks(t *testing.T) {
	// Generation times 0.1..10.0; total response flat so the slow-query
	// heuristic stays quiet.
	var records []telemetry.QueryRecord
	for i := 1; i <= 100; i++ {
		r := rec("2025-06-01T10:00:00Z", fmt.Sprintf("s%d", i), 1.0)
		r.GenerationTime = float64(i) / 10
		records = append(records, r)
	}

	findings := newTestEngine(records).Optimize()
	if _, ok := findingByType(findings, FindingSlowQueries); ok {
		t.Errorf("unexpected slow_queries finding on flat response times")
	}

	f, ok := findingByType(findings, FindingGenerationBottlenecks)
	if !ok {
		t.Fatalf("Optimize() = %+v, want a generation_bottlenecks finding", findings)
	}
	if f.Count != 10 {
		t.Errorf("Count = %d, want 10", f.Count)
	}
	if math.Abs(f.Threshold-9.01) > 1e-9 {
		t.Errorf("Threshold = %v, want 9.01", f.Threshold)
	}
}

func TestOptimize_MultipleFindings(t *testing.T) {
	var records []telemetry.QueryRecord
	for i := 1; i <= 20; i++ {
		r := rec("2025-06-01T10:00:00Z", fmt.Sprintf("s%d", i), float64(i))
		records = append(records, r)
	}
	records[0].DocumentsRetrieved = 0
	records[1].QueryHash = "dup"
	records[2].QueryHash = "dup"

	findings := newTestEngine(records).Optimize()

	// Type order is fixed: slow, cache, retrieval, generation.
	wantOrder := []FindingType{
		FindingSlowQueries,
		FindingCacheOpportunities,
		FindingRetrievalMisses,
		FindingGenerationBottlenecks,
	}
	if len(findings) != len(wantOrder) {
		t.Fatalf("len(findings) = %d, want %d: %+v", len(findings), len(wantOrder), findings)
	}
	for i, ft := range wantOrder {
		if findings[i].Type != ft {
			t.Errorf("findings[%d].Type = %s, want %s", i, findings[i].Type, ft)
		}
	}
}
