package lambda

import (
	"context"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"
	"github.com/samber/lo"

	"github.com/jeevanjot011/bevflow/internal/consumer"
)

type batchProcessor interface {
	ProcessBatch(ctx context.Context, records []consumer.Record) consumer.BatchResult
}

// Handler adapts SQS event batches to the processor and reports the records
// that must be redelivered.
type Handler struct {
	log       *slog.Logger
	processor batchProcessor
}

func NewHandler(log *slog.Logger, processor batchProcessor) *Handler {
	return &Handler{
		log:       log,
		processor: processor,
	}
}

func (h *Handler) Handle(ctx context.Context, event events.SQSEvent) (events.SQSEventResponse, error) {
	const op = "delivery.lambda.Handler.Handle"

	records := lo.Map(event.Records, func(m events.SQSMessage, _ int) consumer.Record {
		return consumer.Record{ID: m.MessageId, Body: []byte(m.Body)}
	})

	result := h.processor.ProcessBatch(ctx, records)

	failures := lo.Map(result.FailedRecordIDs(), func(id string, _ int) events.SQSBatchItemFailure {
		return events.SQSBatchItemFailure{ItemIdentifier: id}
	})

	if len(failures) > 0 {
		h.log.Warn(op, slog.Int("batch_item_failures", len(failures)))
	}

	return events.SQSEventResponse{BatchItemFailures: failures}, nil
}
