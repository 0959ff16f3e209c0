package producer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/IBM/sarama"
)

// Producer sends order messages to a Kafka topic and waits for the broker ack,
// so a returned nil means the message is durable.
type Producer struct {
	log *slog.Logger

	producer sarama.SyncProducer
}

func NewProducer(log *slog.Logger, brokerAddress []string) (*Producer, error) {
	producerConfig := sarama.NewConfig()
	producerConfig.Producer.RequiredAcks = sarama.WaitForAll
	producerConfig.Producer.Compression = sarama.CompressionNone
	producerConfig.Producer.Return.Successes = true
	producerConfig.Producer.Return.Errors = true

	producer, err := sarama.NewSyncProducer(brokerAddress, producerConfig)
	if err != nil {
		return nil, err
	}

	return New(log, producer), nil
}

func New(log *slog.Logger, producer sarama.SyncProducer) *Producer {
	return &Producer{
		log:      log,
		producer: producer,
	}
}

func (p *Producer) Send(ctx context.Context, topic, key string, body []byte) error {
	const op = "brokers.kafka.producer.Send"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	message := &sarama.ProducerMessage{
		Topic: topic,
		Value: sarama.ByteEncoder(body),
	}
	if key != "" {
		message.Key = sarama.StringEncoder(key)
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		p.log.Error(op, slog.String("error", err.Error()))
		return fmt.Errorf("%s: send message: %w", op, err)
	}

	p.log.Debug(op,
		slog.String("topic", topic),
		slog.Int("partition", int(partition)),
		slog.Int64("offset", offset),
	)

	return nil
}

func (p *Producer) Close() error {
	return p.producer.Close()
}
