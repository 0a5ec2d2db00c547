package telemetry

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/raglens/rag-lens/internal/config"
	"github.com/raglens/rag-lens/internal/pkg/errors"
	"github.com/raglens/rag-lens/internal/pkg/logger"
)

// Source loads a closed batch of query records. Load semantics are
// all-or-nothing: a single undecodable record invalidates the whole batch.
type Source interface {
	// Load reads the full record set in producer order.
	Load(ctx context.Context) ([]QueryRecord, error)

	// Close releases any connections held by the source.
	Close() error
}

// NewSource creates the source selected by the configuration.
func NewSource(cfg config.SourceConfig, log *logger.Logger) (Source, error) {
	switch cfg.Type {
	case "file":
		return NewFileSource(cfg.Path, log), nil
	case "redis":
		return NewRedisSource(cfg.RedisURL, cfg.RedisKey, log)
	case "kafka":
		return NewKafkaSource(ParseBrokers(cfg.KafkaBrokers), cfg.KafkaTopic, log)
	default:
		return nil, errors.ValidationError(fmt.Sprintf("unknown source type: %s", cfg.Type))
	}
}

// decodeRecord decodes one record line, attributing failures to its
// 1-based position in the batch.
func decodeRecord(data []byte, line int) (QueryRecord, error) {
	var rec QueryRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return QueryRecord{}, errors.MalformedRecordError(line, err)
	}
	return rec, nil
}
