package consumer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/IBM/sarama"
)

// Group drives a sarama consumer group until the context is canceled.
type Group struct {
	log     *slog.Logger
	group   sarama.ConsumerGroup
	topics  []string
	handler sarama.ConsumerGroupHandler
}

func NewGroup(
	log *slog.Logger,
	brokerAddress []string,
	groupID string,
	topics []string,
	handler sarama.ConsumerGroupHandler,
) (*Group, error) {
	config := sarama.NewConfig()
	config.Consumer.Offsets.Initial = sarama.OffsetOldest
	config.Consumer.Offsets.AutoCommit.Enable = true
	config.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(brokerAddress, groupID, config)
	if err != nil {
		return nil, fmt.Errorf("new consumer group: %w", err)
	}

	return New(log, group, topics, handler), nil
}

func New(log *slog.Logger, group sarama.ConsumerGroup, topics []string, handler sarama.ConsumerGroupHandler) *Group {
	return &Group{
		log:     log,
		group:   group,
		topics:  topics,
		handler: handler,
	}
}

func (g *Group) Run(ctx context.Context) error {
	const op = "brokers.kafka.consumer.Group.Run"

	go func() {
		for err := range g.group.Errors() {
			g.log.Error(op, slog.String("error", err.Error()))
		}
	}()

	for {
		if err := g.group.Consume(ctx, g.topics, g.handler); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}

			return fmt.Errorf("%s: consume: %w", op, err)
		}

		if ctx.Err() != nil {
			return nil
		}

		g.log.Info(op, slog.String("status", "rebalanced"))
	}
}

func (g *Group) Close() error {
	return g.group.Close()
}
