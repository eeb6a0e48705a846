package refunds

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"stagepass/pkg/logger"
)

type Consumer interface {
	Start(ctx context.Context) error
	Stop() error
}

type ConsumerConfig struct {
	Brokers        []string
	GroupID        string
	Topics         []string
	SessionTimeout time.Duration
	Heartbeat      time.Duration
	OffsetOldest   bool
}

func DefaultConsumerConfig(brokers []string, groupID, topic string) *ConsumerConfig {
	return &ConsumerConfig{
		Brokers:        brokers,
		GroupID:        groupID,
		Topics:         []string{topic},
		SessionTimeout: 30 * time.Second,
		Heartbeat:      3 * time.Second,
		OffsetOldest:   true,
	}
}

type kafkaConsumer struct {
	consumerGroup sarama.ConsumerGroup
	config        *ConsumerConfig
	service       Service
	cancel        context.CancelFunc
	log           *logger.Logger
}

func NewKafkaConsumer(config *ConsumerConfig, service Service) (Consumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Consumer.Group.Session.Timeout = config.SessionTimeout
	saramaConfig.Consumer.Group.Heartbeat.Interval = config.Heartbeat
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
	saramaConfig.Consumer.Offsets.AutoCommit.Interval = time.Second
	if config.OffsetOldest {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	}

	consumerGroup, err := sarama.NewConsumerGroup(config.Brokers, config.GroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return &kafkaConsumer{
		consumerGroup: consumerGroup,
		config:        config,
		service:       service,
		log:           logger.GetDefault(),
	}, nil
}

func (c *kafkaConsumer) Start(ctx context.Context) error {
	ctx, c.cancel = context.WithCancel(ctx)

	go c.handleErrors()
	go func() {
		handler := &cancellationHandler{service: c.service, log: c.log}
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if err := c.consumerGroup.Consume(ctx, c.config.Topics, handler); err != nil {
					c.log.WithError(err).Error("refund consumer error")
					time.Sleep(time.Second)
				}
			}
		}
	}()

	c.log.Info("refund consumer started", "topics", c.config.Topics, "group", c.config.GroupID)
	return nil
}

func (c *kafkaConsumer) handleErrors() {
	for err := range c.consumerGroup.Errors() {
		c.log.WithError(err).Error("refund consumer group error")
	}
}

func (c *kafkaConsumer) Stop() error {
	if c.cancel != nil {
		c.cancel()
	}
	if err := c.consumerGroup.Close(); err != nil {
		return fmt.Errorf("failed to close consumer group: %w", err)
	}
	return nil
}

type cancellationHandler struct {
	service Service
	log     *logger.Logger
}

func (h *cancellationHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *cancellationHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *cancellationHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message := <-claim.Messages():
			if message == nil {
				return nil
			}

			var msg EventCancelledMessage
			if err := json.Unmarshal(message.Value, &msg); err != nil {
				// poison message, skip past it
				h.log.WithError(err).Error("failed to decode cancellation message")
				session.MarkMessage(message, "")
				continue
			}

			if err := h.service.ProcessEventCancellation(session.Context(), msg.EventID); err != nil {
				h.log.WithError(err).Error("failed to process event cancellation", "event_id", msg.EventID)
				continue
			}
			session.MarkMessage(message, "")

		case <-session.Context().Done():
			return nil
		}
	}
}
