package publisher

//go:generate mockgen -source=publisher.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jeevanjot011/bevflow/internal/domain/models"
	internalErrors "github.com/jeevanjot011/bevflow/internal/lib/errors"
)

type AddressResolver interface {
	QueueURL(ctx context.Context) (string, error)
	TopicARN(ctx context.Context) (string, error)
}

type QueueSender interface {
	Send(ctx context.Context, addr, key string, body []byte) error
}

type TopicClient interface {
	PublishText(ctx context.Context, topicARN, text string) error
	EnsureSubscription(ctx context.Context, topicARN, protocol, endpoint string) (bool, error)
}

const protocolEmail = "email"

type Publisher struct {
	log       *slog.Logger
	addresses AddressResolver
	queue     QueueSender
	topic     TopicClient
}

func New(log *slog.Logger, addresses AddressResolver, queue QueueSender, topic TopicClient) *Publisher {
	return &Publisher{
		log:       log,
		addresses: addresses,
		queue:     queue,
		topic:     topic,
	}
}

// Publish enqueues msg and then announces it on the topic. Only the enqueue
// decides the outcome: topic failures are logged and dropped.
func (p *Publisher) Publish(ctx context.Context, msg models.OrderMessage) error {
	const op = "publisher.Publisher.Publish"

	log := p.log.With(slog.String("op", op), slog.String("order_id", msg.OrderID.String()))

	if err := msg.Validate(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	body, err := msg.Marshal()
	if err != nil {
		return fmt.Errorf("%s: marshal: %w", op, errors.Join(internalErrors.ErrInvalidMessage, err))
	}

	queueURL, err := p.addresses.QueueURL(ctx)
	if err != nil {
		log.Error("queue unavailable", slog.String("error", err.Error()))
		return fmt.Errorf("%s: resolve queue: %w", op, errors.Join(internalErrors.ErrEnqueueFailed, err))
	}

	if err = p.queue.Send(ctx, queueURL, msg.OrderID.String(), body); err != nil {
		log.Error("enqueue failed", slog.String("error", err.Error()))
		return fmt.Errorf("%s: send: %w", op, errors.Join(internalErrors.ErrEnqueueFailed, err))
	}

	log.Info("order enqueued")

	if p.topic == nil {
		return nil
	}

	topicARN, err := p.addresses.TopicARN(ctx)
	if err != nil {
		log.Warn("topic unavailable, notification dropped", slog.String("error", err.Error()))
		return nil
	}

	if err = p.topic.PublishText(ctx, topicARN, msg.NotificationText()); err != nil {
		log.Warn("notification dropped", slog.String("error", err.Error()))
	}

	return nil
}

// SubscribeEmail subscribes address to order notifications. It reports
// whether a new subscription was requested.
func (p *Publisher) SubscribeEmail(ctx context.Context, address string) (bool, error) {
	const op = "publisher.Publisher.SubscribeEmail"

	if p.topic == nil {
		return false, fmt.Errorf("%s: %w", op, internalErrors.ErrResourceNotFound)
	}

	topicARN, err := p.addresses.TopicARN(ctx)
	if err != nil {
		return false, fmt.Errorf("%s: resolve topic: %w", op, err)
	}

	created, err := p.topic.EnsureSubscription(ctx, topicARN, protocolEmail, address)
	if err != nil {
		p.log.Error(op, slog.String("error", err.Error()))
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return created, nil
}
