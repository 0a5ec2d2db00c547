package telemetry

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/raglens/rag-lens/internal/pkg/errors"
	"github.com/raglens/rag-lens/internal/pkg/logger"
)

// RedisSource reads a batch snapshot of records from a Redis list. The
// producing service mirrors its log lines with RPUSH, so list order is
// log order.
type RedisSource struct {
	client *redis.Client
	key    string
	log    *logger.Logger
}

// NewRedisSource creates a Redis source and verifies the connection.
func NewRedisSource(url, key string, log *logger.Logger) (*RedisSource, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(errors.CodeValidation, "parsing redis URL", err)
	}

	client := redis.NewClient(opts)

	// Test connection with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrap(errors.CodeUnavailable, "connecting to redis", err)
	}

	if log == nil {
		log = logger.Default()
	}

	return &RedisSource{
		client: client,
		key:    key,
		log:    log.WithSource("redis"),
	}, nil
}

// Load reads the full list contents in one snapshot. The list is a closed
// input for this run; nothing is consumed or trimmed.
func (s *RedisSource) Load(ctx context.Context) ([]QueryRecord, error) {
	lines, err := s.client.LRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		return nil, errors.SourceError("reading record list", err)
	}

	var records []QueryRecord
	for i, line := range lines {
		if line == "" {
			continue
		}

		rec, err := decodeRecord([]byte(line), i+1)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	s.log.Info("Loaded query records", "key", s.key, "records", len(records))
	return records, nil
}

// Close closes the Redis connection.
func (s *RedisSource) Close() error {
	return s.client.Close()
}
