package telemetry

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

const validLine = `{"timestamp":"2025-06-01T10:15:30Z","session_id":"s1","success":true,"cached":false,"total_response_time":1.25,"vector_search_time":0.2,"generation_time":0.9,"query_length":42,"answer_length":300,"documents_retrieved":5,"unique_sources":3,"session_duration_seconds":12.5,"query_similarity_to_previous":0.8,"time_since_last_query":4.0,"query_hash":"abc123"}`

func TestQueryRecord_Unmarshal(t *testing.T) {
	var rec QueryRecord
	if err := json.Unmarshal([]byte(validLine), &rec); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	want := time.Date(2025, 6, 1, 10, 15, 30, 0, time.UTC)
	if !rec.Timestamp.Equal(want) {
		t.Errorf("Timestamp = %v, want %v", rec.Timestamp, want)
	}

	if rec.SessionID != "s1" {
		t.Errorf("SessionID = %s, want s1", rec.SessionID)
	}

	if !rec.Success || rec.Cached {
		t.Errorf("Success = %v, Cached = %v, want true/false", rec.Success, rec.Cached)
	}

	if rec.QuerySimilarityToPrevious == nil || *rec.QuerySimilarityToPrevious != 0.8 {
		t.Errorf("QuerySimilarityToPrevious = %v, want 0.8", rec.QuerySimilarityToPrevious)
	}

	if rec.TimeSinceLastQuery == nil || *rec.TimeSinceLastQuery != 4.0 {
		t.Errorf("TimeSinceLastQuery = %v, want 4.0", rec.TimeSinceLastQuery)
	}

	if rec.ErrorType != nil {
		t.Errorf("ErrorType = %v, want nil", rec.ErrorType)
	}
}

func TestQueryRecord_TimestampFormats(t *testing.T) {
	tests := []struct {
		name string
		ts   string
		want time.Time
	}{
		{"rfc3339 utc", "2025-06-01T10:15:30Z", time.Date(2025, 6, 1, 10, 15, 30, 0, time.UTC)},
		{"rfc3339 offset", "2025-06-01T12:15:30+02:00", time.Date(2025, 6, 1, 10, 15, 30, 0, time.UTC)},
		{"rfc3339 fractional", "2025-06-01T10:15:30.123456Z", time.Date(2025, 6, 1, 10, 15, 30, 123456000, time.UTC)},
		{"naive iso", "2025-06-01T10:15:30", time.Date(2025, 6, 1, 10, 15, 30, 0, time.UTC)},
		{"naive fractional", "2025-06-01T10:15:30.5", time.Date(2025, 6, 1, 10, 15, 30, 500000000, time.UTC)},
		{"space separated", "2025-06-01 10:15:30", time.Date(2025, 6, 1, 10, 15, 30, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := `{"timestamp":"` + tt.ts + `","session_id":"s1","success":true,"cached":false,"query_hash":"h"}`

			var rec QueryRecord
			if err := json.Unmarshal([]byte(line), &rec); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if !rec.Timestamp.Equal(tt.want) {
				t.Errorf("Timestamp = %v, want %v", rec.Timestamp, tt.want)
			}
		})
	}
}

func TestQueryRecord_UnmarshalErrors(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		wantErr string
	}{
		{
			name:    "missing timestamp",
			line:    `{"session_id":"s1","success":true,"cached":false}`,
			wantErr: "missing required field: timestamp",
		},
		{
			name:    "bad timestamp",
			line:    `{"timestamp":"yesterday","session_id":"s1"}`,
			wantErr: "invalid timestamp",
		},
		{
			name:    "not json",
			line:    `{"timestamp":`,
			wantErr: "unexpected end",
		},
		{
			name:    "negative response time",
			line:    `{"timestamp":"2025-06-01T10:15:30Z","total_response_time":-1}`,
			wantErr: "total_response_time",
		},
		{
			name:    "similarity above one",
			line:    `{"timestamp":"2025-06-01T10:15:30Z","query_similarity_to_previous":1.5}`,
			wantErr: "query_similarity_to_previous",
		},
		{
			name:    "negative gap",
			line:    `{"timestamp":"2025-06-01T10:15:30Z","time_since_last_query":-0.1}`,
			wantErr: "time_since_last_query",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec QueryRecord
			err := json.Unmarshal([]byte(tt.line), &rec)
			if err == nil {
				t.Fatal("Unmarshal() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Unmarshal() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestQueryRecord_NullErrorType(t *testing.T) {
	line := `{"timestamp":"2025-06-01T10:15:30Z","session_id":"s1","success":false,"error_type":null}`

	var rec QueryRecord
	if err := json.Unmarshal([]byte(line), &rec); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if rec.ErrorType != nil {
		t.Errorf("ErrorType = %v, want nil for null", rec.ErrorType)
	}
}

func TestQueryRecord_HourBucket(t *testing.T) {
	var rec QueryRecord
	line := `{"timestamp":"2025-06-01T10:59:59.999Z","session_id":"s1"}`
	if err := json.Unmarshal([]byte(line), &rec); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	want := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	if got := rec.HourBucket(); !got.Equal(want) {
		t.Errorf("HourBucket() = %v, want %v", got, want)
	}
}
