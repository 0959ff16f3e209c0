package consumer

//go:generate mockgen -source=consumer.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samber/lo"

	"github.com/jeevanjot011/bevflow/internal/domain/models"
	"github.com/jeevanjot011/bevflow/internal/estimator"
	internalErrors "github.com/jeevanjot011/bevflow/internal/lib/errors"
)

type SummaryStore interface {
	Upsert(ctx context.Context, summary models.OrderSummary) error
}

type LogArchive interface {
	Put(ctx context.Context, key string, entry models.ProcessingLogEntry) error
}

type Notifier interface {
	Notify(ctx context.Context, notification models.Notification) error
}

type Step string

const (
	StepDecode   Step = "decode"
	StepEstimate Step = "estimate"
	StepSummary  Step = "summary"
	StepArchive  Step = "archive"
	StepNotify   Step = "notify"
)

type Status string

const (
	StatusOK       Status = "ok"
	StatusFailed   Status = "failed"
	StatusSkipped  Status = "skipped"
	StatusFallback Status = "fallback"
)

type StepResult struct {
	Step      Step
	Status    Status
	Err       error
	Retryable bool
}

// Record is one queue delivery. ID is the transport's message id.
type Record struct {
	ID   string
	Body []byte
}

type RecordResult struct {
	RecordID string
	OrderID  string
	Steps    []StepResult
	// Redeliver is set when a persistence step failed with a retryable error.
	Redeliver bool
}

func (r RecordResult) Step(step Step) (StepResult, bool) {
	return lo.Find(r.Steps, func(s StepResult) bool { return s.Step == step })
}

type BatchResult struct {
	Records []RecordResult
}

// FailedRecordIDs lists the records the transport should redeliver.
func (b BatchResult) FailedRecordIDs() []string {
	return lo.FilterMap(b.Records, func(r RecordResult, _ int) (string, bool) {
		return r.RecordID, r.Redeliver
	})
}

type Processor struct {
	log       *slog.Logger
	summaries SummaryStore
	archive   LogArchive
	notifier  Notifier
	estimator estimator.Estimator
}

func NewProcessor(
	log *slog.Logger,
	summaries SummaryStore,
	archive LogArchive,
	notifier Notifier,
	est estimator.Estimator,
) *Processor {
	return &Processor{
		log:       log,
		summaries: summaries,
		archive:   archive,
		notifier:  notifier,
		estimator: est,
	}
}

// ProcessBatch handles every record independently. A failing record never
// prevents the others from being processed.
func (p *Processor) ProcessBatch(ctx context.Context, records []Record) BatchResult {
	const op = "consumer.Processor.ProcessBatch"

	result := BatchResult{Records: make([]RecordResult, 0, len(records))}
	for _, record := range records {
		result.Records = append(result.Records, p.ProcessRecord(ctx, record))
	}

	p.log.Info(op,
		slog.Int("records", len(records)),
		slog.Int("redeliver", len(result.FailedRecordIDs())),
	)

	return result
}

func (p *Processor) ProcessRecord(ctx context.Context, record Record) RecordResult {
	const op = "consumer.Processor.ProcessRecord"

	log := p.log.With(slog.String("op", op), slog.String("record_id", record.ID))

	result := RecordResult{RecordID: record.ID}

	msg, err := models.DecodeOrderMessage(record.Body)
	if err != nil {
		log.Warn("skipping malformed record", slog.String("error", err.Error()))
		result.Steps = append(result.Steps, failed(StepDecode, err))
		return result
	}
	result.OrderID = msg.OrderID.String()
	result.Steps = append(result.Steps, StepResult{Step: StepDecode, Status: StatusOK})

	log = log.With(slog.String("order_id", result.OrderID))

	estimate, err := estimator.Compute(p.estimator, msg.CustomerAreaCode, msg.ManufacturerAreaCode)
	if err != nil {
		log.Warn("distance unavailable, using fallback", slog.String("error", err.Error()))
		result.Steps = append(result.Steps, StepResult{Step: StepEstimate, Status: StatusFallback, Err: err})
	} else {
		result.Steps = append(result.Steps, StepResult{Step: StepEstimate, Status: StatusOK})
	}

	summaryStep := p.storeSummary(ctx, msg)
	archiveStep := p.archiveLog(ctx, msg, estimate)
	notifyStep := p.notify(ctx, msg, estimate)

	result.Steps = append(result.Steps, summaryStep, archiveStep, notifyStep)
	result.Redeliver = summaryStep.Retryable || archiveStep.Retryable

	for _, step := range result.Steps {
		if step.Status == StatusFailed {
			log.Error("step failed",
				slog.String("step", string(step.Step)),
				slog.Bool("retryable", step.Retryable),
				slog.String("error", step.Err.Error()),
			)
		}
	}

	return result
}

func (p *Processor) storeSummary(ctx context.Context, msg models.OrderMessage) StepResult {
	if p.summaries == nil {
		return StepResult{Step: StepSummary, Status: StatusSkipped}
	}

	if err := p.summaries.Upsert(ctx, models.NewOrderSummary(msg)); err != nil {
		return failed(StepSummary, err)
	}

	return StepResult{Step: StepSummary, Status: StatusOK}
}

func (p *Processor) archiveLog(ctx context.Context, msg models.OrderMessage, estimate estimator.Estimate) StepResult {
	if p.archive == nil {
		return StepResult{Step: StepArchive, Status: StatusSkipped}
	}

	entry := models.ProcessingLogEntry{
		Message:    msg,
		DistanceKm: estimate.DistanceKm,
		ETADays:    estimate.ETADays,
	}

	if err := p.archive.Put(ctx, msg.LogKey(), entry); err != nil {
		return failed(StepArchive, err)
	}

	return StepResult{Step: StepArchive, Status: StatusOK}
}

// notify failures are reported but never mark the record for redelivery.
func (p *Processor) notify(ctx context.Context, msg models.OrderMessage, estimate estimator.Estimate) StepResult {
	if msg.ManufacturerEmail == "" || p.notifier == nil {
		return StepResult{Step: StepNotify, Status: StatusSkipped}
	}

	notification, err := RenderNotification(msg, estimate)
	if err != nil {
		return StepResult{Step: StepNotify, Status: StatusFailed, Err: err}
	}

	if err = p.notifier.Notify(ctx, notification); err != nil {
		return StepResult{Step: StepNotify, Status: StatusFailed, Err: fmt.Errorf("notify %s: %w", msg.ManufacturerEmail, err)}
	}

	return StepResult{Step: StepNotify, Status: StatusOK}
}

func failed(step Step, err error) StepResult {
	return StepResult{
		Step:      step,
		Status:    StatusFailed,
		Err:       err,
		Retryable: internalErrors.IsRetryable(err),
	}
}
