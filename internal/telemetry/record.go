// Package telemetry defines the query telemetry record model and the batch
// sources that load it.
package telemetry

import (
	"encoding/json"
	"fmt"
	"time"
)

// QueryRecord is one logged query-answer interaction emitted by the
// producing service. Records are immutable once decoded.
type QueryRecord struct {
	Timestamp          time.Time `json:"timestamp"`
	SessionID          string    `json:"session_id"`
	Success            bool      `json:"success"`
	ErrorType          *string   `json:"error_type,omitempty"`
	Cached             bool      `json:"cached"`
	TotalResponseTime  float64   `json:"total_response_time"`
	VectorSearchTime   float64   `json:"vector_search_time"`
	GenerationTime     float64   `json:"generation_time"`
	QueryLength        int       `json:"query_length"`
	AnswerLength       int       `json:"answer_length"`
	DocumentsRetrieved int       `json:"documents_retrieved"`
	UniqueSources      int       `json:"unique_sources"`

	// Session-scoped fields. The duration is zero and the pointers are nil
	// for the first record of a session.
	SessionDurationSeconds    float64  `json:"session_duration_seconds"`
	QuerySimilarityToPrevious *float64 `json:"query_similarity_to_previous,omitempty"`
	TimeSinceLastQuery        *float64 `json:"time_since_last_query,omitempty"`

	// QueryHash is an opaque stable fingerprint of the normalized query
	// text, supplied by the producing service.
	QueryHash string `json:"query_hash"`
}

// timestampLayouts are the accepted wire formats, tried in order.
// The producing service emits ISO-8601; naive timestamps are taken as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// wireRecord mirrors QueryRecord with a raw timestamp so decoding can
// distinguish a missing field from a zero value.
type wireRecord struct {
	Timestamp          *string  `json:"timestamp"`
	SessionID          string   `json:"session_id"`
	Success            bool     `json:"success"`
	ErrorType          *string  `json:"error_type"`
	Cached             bool     `json:"cached"`
	TotalResponseTime  float64  `json:"total_response_time"`
	VectorSearchTime   float64  `json:"vector_search_time"`
	GenerationTime     float64  `json:"generation_time"`
	QueryLength        int      `json:"query_length"`
	AnswerLength       int      `json:"answer_length"`
	DocumentsRetrieved int      `json:"documents_retrieved"`
	UniqueSources      int      `json:"unique_sources"`

	SessionDurationSeconds    float64  `json:"session_duration_seconds"`
	QuerySimilarityToPrevious *float64 `json:"query_similarity_to_previous"`
	TimeSinceLastQuery        *float64 `json:"time_since_last_query"`

	QueryHash string `json:"query_hash"`
}

// UnmarshalJSON decodes a wire record, requiring a parseable timestamp.
func (r *QueryRecord) UnmarshalJSON(data []byte) error {
	var w wireRecord
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	if w.Timestamp == nil {
		return fmt.Errorf("missing required field: timestamp")
	}

	ts, err := parseTimestamp(*w.Timestamp)
	if err != nil {
		return err
	}

	*r = QueryRecord{
		Timestamp:                 ts,
		SessionID:                 w.SessionID,
		Success:                   w.Success,
		ErrorType:                 w.ErrorType,
		Cached:                    w.Cached,
		TotalResponseTime:         w.TotalResponseTime,
		VectorSearchTime:          w.VectorSearchTime,
		GenerationTime:            w.GenerationTime,
		QueryLength:               w.QueryLength,
		AnswerLength:              w.AnswerLength,
		DocumentsRetrieved:        w.DocumentsRetrieved,
		UniqueSources:             w.UniqueSources,
		SessionDurationSeconds:    w.SessionDurationSeconds,
		QuerySimilarityToPrevious: w.QuerySimilarityToPrevious,
		TimeSinceLastQuery:        w.TimeSinceLastQuery,
		QueryHash:                 w.QueryHash,
	}

	return r.validate()
}

// parseTimestamp parses an ISO-8601-compatible timestamp, normalized to UTC.
func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp: %q", s)
}

// validate checks the field constraints of a decoded record.
func (r *QueryRecord) validate() error {
	if r.TotalResponseTime < 0 {
		return fmt.Errorf("total_response_time must be >= 0, got %v", r.TotalResponseTime)
	}
	if r.VectorSearchTime < 0 {
		return fmt.Errorf("vector_search_time must be >= 0, got %v", r.VectorSearchTime)
	}
	if r.GenerationTime < 0 {
		return fmt.Errorf("generation_time must be >= 0, got %v", r.GenerationTime)
	}
	if r.QueryLength < 0 {
		return fmt.Errorf("query_length must be >= 0, got %d", r.QueryLength)
	}
	if r.AnswerLength < 0 {
		return fmt.Errorf("answer_length must be >= 0, got %d", r.AnswerLength)
	}
	if r.DocumentsRetrieved < 0 {
		return fmt.Errorf("documents_retrieved must be >= 0, got %d", r.DocumentsRetrieved)
	}
	if r.UniqueSources < 0 {
		return fmt.Errorf("unique_sources must be >= 0, got %d", r.UniqueSources)
	}
	if r.SessionDurationSeconds < 0 {
		return fmt.Errorf("session_duration_seconds must be >= 0, got %v", r.SessionDurationSeconds)
	}
	if s := r.QuerySimilarityToPrevious; s != nil && (*s < 0 || *s > 1) {
		return fmt.Errorf("query_similarity_to_previous must be in [0,1], got %v", *s)
	}
	if g := r.TimeSinceLastQuery; g != nil && *g < 0 {
		return fmt.Errorf("time_since_last_query must be >= 0, got %v", *g)
	}
	return nil
}

// HourBucket returns the record's timestamp floored to the enclosing
// clock hour, in UTC.
func (r *QueryRecord) HourBucket() time.Time {
	return r.Timestamp.UTC().Truncate(time.Hour)
}
