package refunds

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"stagepass/pkg/logger"
)

// Publisher publishes event cancellations for the refund workers.
type Publisher interface {
	PublishEventCancelled(ctx context.Context, msg *EventCancelledMessage) error
	Close() error
}

type ProducerConfig struct {
	Brokers      []string
	Topic        string
	RetryMax     int
	Timeout      time.Duration
	RequiredAcks sarama.RequiredAcks
}

func DefaultProducerConfig(brokers []string, topic string) *ProducerConfig {
	return &ProducerConfig{
		Brokers:      brokers,
		Topic:        topic,
		RetryMax:     3,
		Timeout:      10 * time.Second,
		RequiredAcks: sarama.WaitForAll,
	}
}

type kafkaPublisher struct {
	producer sarama.SyncProducer
	config   *ProducerConfig
	log      *logger.Logger
}

func NewKafkaPublisher(config *ProducerConfig) (Publisher, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = config.RequiredAcks
	saramaConfig.Producer.Retry.Max = config.RetryMax
	saramaConfig.Producer.Timeout = config.Timeout
	saramaConfig.Producer.Idempotent = true
	saramaConfig.Net.MaxOpenRequests = 1
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(config.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	return &kafkaPublisher{
		producer: producer,
		config:   config,
		log:      logger.GetDefault(),
	}, nil
}

func (p *kafkaPublisher) PublishEventCancelled(ctx context.Context, msg *EventCancelledMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal cancellation message: %w", err)
	}

	// Key by event id so replays for the same event land on one partition.
	message := &sarama.ProducerMessage{
		Topic:     p.config.Topic,
		Key:       sarama.StringEncoder(msg.EventID.String()),
		Value:     sarama.ByteEncoder(payload),
		Timestamp: msg.CancelledAt,
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to publish event cancellation: %w", err)
	}

	p.log.Info("event cancellation published",
		"topic", p.config.Topic,
		"partition", partition,
		"offset", offset,
		"event_id", msg.EventID,
	)
	return nil
}

func (p *kafkaPublisher) Close() error {
	if p.producer != nil {
		if err := p.producer.Close(); err != nil {
			return fmt.Errorf("failed to close Kafka producer: %w", err)
		}
	}
	return nil
}
