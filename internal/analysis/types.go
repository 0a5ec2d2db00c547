// Package analysis computes batch reports over a loaded telemetry record set.
package analysis

import "time"

// SummaryReport is the cross-sectional report over the full record set.
type SummaryReport struct {
	Overview    Overview      `json:"overview"`
	Performance Performance   `json:"performance"`
	Content     Content       `json:"content"`
	Behavior    Behavior      `json:"behavior"`
	Errors      ErrorAnalysis `json:"errors"`
}

// Overview holds dataset-level counts and rates.
type Overview struct {
	TotalQueries   int       `json:"total_queries"`
	UniqueSessions int       `json:"unique_sessions"`
	FirstTimestamp time.Time `json:"first_timestamp"`
	LastTimestamp  time.Time `json:"last_timestamp"`
	SuccessRate    float64   `json:"success_rate"`   // percent
	CacheHitRate   float64   `json:"cache_hit_rate"` // percent
}

// Performance holds latency statistics, all in seconds.
type Performance struct {
	AvgResponseTime     float64 `json:"avg_response_time"`
	MedianResponseTime  float64 `json:"median_response_time"`
	P95ResponseTime     float64 `json:"p95_response_time"`
	MinResponseTime     float64 `json:"min_response_time"`
	MaxResponseTime     float64 `json:"max_response_time"`
	AvgVectorSearchTime float64 `json:"avg_vector_search_time"`
	AvgGenerationTime   float64 `json:"avg_generation_time"`
}

// ValueCount is one row of a frequency table over integer values.
type ValueCount struct {
	Value int `json:"value"`
	Count int `json:"count"`
}

// Content holds query/answer size and retrieval statistics.
type Content struct {
	AvgQueryLength        float64      `json:"avg_query_length"`
	AvgAnswerLength       float64      `json:"avg_answer_length"`
	AvgDocumentsRetrieved float64      `json:"avg_documents_retrieved"`
	AvgUniqueSources      float64      `json:"avg_unique_sources"`
	TopDocumentCounts     []ValueCount `json:"top_document_counts"`
}

// Behavior holds per-session statistics. The optional means are nil when no
// record in the dataset defines the underlying field.
type Behavior struct {
	AvgSessionDuration    float64  `json:"avg_session_duration"`
	AvgQueriesPerSession  float64  `json:"avg_queries_per_session"`
	AvgQuerySimilarity    *float64 `json:"avg_query_similarity,omitempty"`
	AvgTimeBetweenQueries *float64 `json:"avg_time_between_queries,omitempty"`
}

// ErrorAnalysis holds the failure rate and error type frequency table.
type ErrorAnalysis struct {
	ErrorRate   float64        `json:"error_rate"` // percent
	ErrorCounts map[string]int `json:"error_counts"`
}

// TrendBucket is one hourly bucket of the trend report. Rates are 0..1
// fractions; only non-empty buckets are ever reported.
type TrendBucket struct {
	Hour            time.Time `json:"hour"`
	QueryCount      int       `json:"query_count"`
	AvgResponseTime float64   `json:"avg_response_time"`
	SuccessRate     float64   `json:"success_rate"`
	CacheHitRate    float64   `json:"cache_hit_rate"`
}

// FindingType identifies an optimization heuristic.
type FindingType string

// Finding types.
const (
	FindingSlowQueries           FindingType = "slow_queries"
	FindingCacheOpportunities    FindingType = "cache_opportunities"
	FindingRetrievalMisses       FindingType = "retrieval_misses"
	FindingGenerationBottlenecks FindingType = "generation_bottlenecks"
)

// Finding is a single advisory output of the optimization pass. Fields
// beyond Type, Count and Message are populated per heuristic.
type Finding struct {
	Type        FindingType `json:"type"`
	Count       int         `json:"count"`
	Percentage  float64     `json:"percentage,omitempty"`   // percent of total records
	MeanSeconds float64     `json:"mean_seconds,omitempty"` // mean within the flagged subset
	Threshold   float64     `json:"threshold,omitempty"`    // quantile threshold that was applied
	Message     string      `json:"message"`
}

// FullReport bundles the three independent reports for one invocation.
type FullReport struct {
	Summary  *SummaryReport `json:"summary"`
	Trends   []TrendBucket  `json:"trends"`
	Findings []Finding      `json:"findings"`
}
