package kafka

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Shopify/sarama"

	"github.com/sv1nxmmvt/fincontrol/internal/logger"
	"github.com/sv1nxmmvt/fincontrol/internal/model/events"
)

type consumerConfig interface {
	producerConfig
	ConsumerGroup() string
}

type eventRecorder interface {
	RecordEvent(ctx context.Context, ev events.Event) error
}

type Consumer struct {
	consumerGroup sarama.ConsumerGroup
	topic         string
	recorder      eventRecorder
}

func NewConsumer(cfg consumerConfig, recorder eventRecorder) (*Consumer, error) {
	config := sarama.NewConfig()
	config.Version = sarama.V2_5_0_0
	config.Consumer.Offsets.Initial = sarama.OffsetOldest

	consumerGroup, err := sarama.NewConsumerGroup(cfg.Brokers(), cfg.ConsumerGroup(), config)
	return &Consumer{
		consumerGroup: consumerGroup,
		topic:         cfg.EventsTopic(),
		recorder:      recorder,
	}, err
}

func (c *Consumer) StartConsuming(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
			err := c.consumerGroup.Consume(ctx, []string{c.topic}, c)
			if err != nil {
				return errors.Wrap(err, fmt.Sprintf("consume from %s", c.topic))
			}
		}
	}
}

func (c *Consumer) Setup(sarama.ConsumerGroupSession) error {
	logger.Info("consumer - setup")
	return nil
}

func (c *Consumer) Cleanup(sarama.ConsumerGroupSession) error {
	logger.Info("consumer - cleanup")
	return nil
}

func (c *Consumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		ev, err := events.Unmarshal(message.Value)
		if err != nil {
			logger.Error("cannot unmarshal kafka message", zap.Error(err))
		} else {
			logger.Info(
				"received ledger event",
				zap.ByteString("key", message.Key),
				zap.String("type", string(ev.Type)),
				zap.String("userID", ev.UserID.String()),
			)
			if err = c.recorder.RecordEvent(session.Context(), ev); err != nil {
				logger.Error("failed to record event", zap.Error(err))
			}
		}
		session.MarkMessage(message, "")
	}

	return nil
}
