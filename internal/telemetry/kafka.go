package telemetry

import (
	"context"
	"strings"
	"time"

	"github.com/IBM/sarama"

	"github.com/raglens/rag-lens/internal/pkg/errors"
	"github.com/raglens/rag-lens/internal/pkg/logger"
)

// KafkaSource drains a batch snapshot of records from a Kafka topic. Each
// partition is consumed from the oldest offset up to the high-water mark
// observed at load time, then the source stops: a closed input, not a
// subscription.
type KafkaSource struct {
	client   sarama.Client
	consumer sarama.Consumer
	topic    string
	log      *logger.Logger
}

// KafkaSourceConfig holds Kafka connection settings.
type KafkaSourceConfig struct {
	Brokers []string
	Topic   string
	Version string // Kafka version (e.g., "2.8.0")
}

// NewKafkaSource creates a Kafka source for the given brokers and topic.
func NewKafkaSource(brokers []string, topic string, log *logger.Logger) (*KafkaSource, error) {
	return NewKafkaSourceWithConfig(KafkaSourceConfig{Brokers: brokers, Topic: topic}, log)
}

// NewKafkaSourceWithConfig creates a Kafka source with explicit settings.
func NewKafkaSourceWithConfig(cfg KafkaSourceConfig, log *logger.Logger) (*KafkaSource, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New(errors.CodeValidation, "kafka brokers cannot be empty")
	}
	if cfg.Topic == "" {
		return nil, errors.New(errors.CodeValidation, "kafka topic cannot be empty")
	}
	if cfg.Version == "" {
		cfg.Version = "2.8.0"
	}

	version, err := sarama.ParseKafkaVersion(cfg.Version)
	if err != nil {
		return nil, errors.Wrap(errors.CodeValidation, "invalid kafka version", err)
	}

	kafkaConfig := sarama.NewConfig()
	kafkaConfig.Version = version
	kafkaConfig.ClientID = "rag-lens-source"
	kafkaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	kafkaConfig.Consumer.Return.Errors = true
	kafkaConfig.Net.DialTimeout = 10 * time.Second
	kafkaConfig.Net.ReadTimeout = 10 * time.Second
	kafkaConfig.Net.WriteTimeout = 10 * time.Second

	client, err := sarama.NewClient(cfg.Brokers, kafkaConfig)
	if err != nil {
		return nil, errors.Wrap(errors.CodeUnavailable, "failed to create kafka client", err)
	}

	consumer, err := sarama.NewConsumerFromClient(client)
	if err != nil {
		client.Close()
		return nil, errors.Wrap(errors.CodeUnavailable, "failed to create kafka consumer", err)
	}

	if log == nil {
		log = logger.Default()
	}

	return &KafkaSource{
		client:   client,
		consumer: consumer,
		topic:    cfg.Topic,
		log:      log.WithSource("kafka"),
	}, nil
}

// Load drains every partition of the topic up to its high-water mark.
func (s *KafkaSource) Load(ctx context.Context) ([]QueryRecord, error) {
	partitions, err := s.consumer.Partitions(s.topic)
	if err != nil {
		return nil, errors.SourceError("listing topic partitions", err)
	}

	var records []QueryRecord
	line := 0
	for _, partition := range partitions {
		batch, consumed, err := s.drainPartition(ctx, partition, line)
		if err != nil {
			return nil, err
		}
		records = append(records, batch...)
		line += consumed
	}

	s.log.Info("Loaded query records", "topic", s.topic, "partitions", len(partitions), "records", len(records))
	return records, nil
}

// drainPartition consumes one partition from the oldest offset up to the
// high-water mark observed at call time.
func (s *KafkaSource) drainPartition(ctx context.Context, partition int32, lineOffset int) ([]QueryRecord, int, error) {
	newest, err := s.client.GetOffset(s.topic, partition, sarama.OffsetNewest)
	if err != nil {
		return nil, 0, errors.SourceError("reading high-water mark", err)
	}
	oldest, err := s.client.GetOffset(s.topic, partition, sarama.OffsetOldest)
	if err != nil {
		return nil, 0, errors.SourceError("reading oldest offset", err)
	}

	// Empty partition
	if newest <= oldest {
		return nil, 0, nil
	}

	pc, err := s.consumer.ConsumePartition(s.topic, partition, oldest)
	if err != nil {
		return nil, 0, errors.SourceError("consuming partition", err)
	}
	defer pc.Close()

	var records []QueryRecord
	consumed := 0
	for {
		select {
		case <-ctx.Done():
			return nil, 0, errors.Wrap(errors.CodeTimeout, "load cancelled", ctx.Err())
		case kerr := <-pc.Errors():
			return nil, 0, errors.SourceError("partition consumer error", kerr)
		case msg := <-pc.Messages():
			consumed++
			if len(msg.Value) > 0 {
				rec, err := decodeRecord(msg.Value, lineOffset+consumed)
				if err != nil {
					return nil, 0, err
				}
				records = append(records, rec)
			}

			// High-water mark reached for this snapshot
			if msg.Offset >= newest-1 {
				return records, consumed, nil
			}
		}
	}
}

// Close closes the Kafka consumer and client.
func (s *KafkaSource) Close() error {
	var errs []string
	if err := s.consumer.Close(); err != nil {
		errs = append(errs, err.Error())
	}
	if err := s.client.Close(); err != nil {
		errs = append(errs, err.Error())
	}
	if len(errs) > 0 {
		return errors.New(errors.CodeInternal, "errors during close: "+strings.Join(errs, "; "))
	}
	return nil
}

// ParseBrokers parses a comma-separated string of Kafka brokers.
func ParseBrokers(brokersStr string) []string {
	if brokersStr == "" {
		return nil
	}
	brokers := strings.Split(brokersStr, ",")
	for i := range brokers {
		brokers[i] = strings.TrimSpace(brokers[i])
	}
	return brokers
}
