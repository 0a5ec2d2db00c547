package telemetry

import (
	"reflect"
	"testing"
)

// TestKafkaSource_Validation tests configuration validation.
func TestKafkaSource_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     KafkaSourceConfig
		wantErr bool
	}{
		{
			name: "valid config",
			cfg: KafkaSourceConfig{
				Brokers: []string{"localhost:9092"},
				Topic:   "query-telemetry",
			},
			wantErr: false,
		},
		{
			name: "empty brokers",
			cfg: KafkaSourceConfig{
				Brokers: []string{},
				Topic:   "query-telemetry",
			},
			wantErr: true,
		},
		{
			name: "empty topic",
			cfg: KafkaSourceConfig{
				Brokers: []string{"localhost:9092"},
				Topic:   "",
			},
			wantErr: true,
		},
		{
			name: "invalid kafka version",
			cfg: KafkaSourceConfig{
				Brokers: []string{"localhost:9092"},
				Topic:   "query-telemetry",
				Version: "invalid",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := NewKafkaSourceWithConfig(tt.cfg, nil)
			if (err != nil) != tt.wantErr {
				// Skip the test if Kafka is not running (only for valid config test)
				if tt.name == "valid config" && err != nil {
					t.Skip("Skipping test - Kafka not running")
					return
				}
				t.Errorf("NewKafkaSourceWithConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if src != nil {
				src.Close()
			}
		})
	}
}

func TestParseBrokers(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", nil},
		{"localhost:9092", []string{"localhost:9092"}},
		{"a:9092, b:9092 ,c:9092", []string{"a:9092", "b:9092", "c:9092"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseBrokers(tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseBrokers(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
