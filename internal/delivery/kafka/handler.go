package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"
	"github.com/cenkalti/backoff/v4"

	"github.com/jeevanjot011/bevflow/internal/consumer"
)

var errRedeliver = errors.New("record needs redelivery")

type recordProcessor interface {
	ProcessRecord(ctx context.Context, record consumer.Record) consumer.RecordResult
}

// Handler is a sarama consumer group handler. Records that ask for
// redelivery are retried in place up to maxRetries times, then committed.
type Handler struct {
	log        *slog.Logger
	processor  recordProcessor
	maxRetries uint64
	newBackOff func() backoff.BackOff
}

func NewHandler(log *slog.Logger, processor recordProcessor, maxRetries uint64) *Handler {
	return &Handler{
		log:        log,
		processor:  processor,
		maxRetries: maxRetries,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 200 * time.Millisecond
			b.MaxInterval = 5 * time.Second
			b.MaxElapsedTime = 0
			return b
		},
	}
}

func (h *Handler) Setup(sarama.ConsumerGroupSession) error { return nil }

func (h *Handler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *Handler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	ctx := session.Context()

	for {
		select {
		case msg, ok := <-claim.Messages():
			if !ok {
				return nil
			}

			if err := h.handle(ctx, msg); err != nil {
				return err
			}

			session.MarkMessage(msg, "")
		case <-ctx.Done():
			return nil
		}
	}
}

// handle returns an error only when the session ends mid-retry; the offset
// then stays uncommitted and the record is consumed again.
func (h *Handler) handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	const op = "delivery.kafka.Handler.handle"

	record := consumer.Record{
		ID:   fmt.Sprintf("%s/%d/%d", msg.Topic, msg.Partition, msg.Offset),
		Body: msg.Value,
	}

	log := h.log.With(slog.String("op", op), slog.String("record_id", record.ID))

	attempt := 0
	policy := backoff.WithContext(backoff.WithMaxRetries(h.newBackOff(), h.maxRetries), ctx)

	err := backoff.Retry(func() error {
		attempt++

		if h.processor.ProcessRecord(ctx, record).Redeliver {
			log.Warn("record will be retried", slog.Int("attempt", attempt))
			return errRedeliver
		}

		return nil
	}, policy)

	switch {
	case err == nil:
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	default:
		log.Error("giving up on record", slog.Int("attempts", attempt))
		return nil
	}
}
