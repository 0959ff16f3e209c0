package provisioner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/singleflight"

	"github.com/jeevanjot011/bevflow/internal/domain/models"
	internalErrors "github.com/jeevanjot011/bevflow/internal/lib/errors"
	"github.com/jeevanjot011/bevflow/internal/resources"
)

const (
	StepQueue        = "queue"
	StepTopic        = "topic"
	StepSubscription = "subscription"
	StepTable        = "table"
	StepArchive      = "archive"
	StepFunction     = "function"
	StepParams       = "params"
)

type Status string

const (
	StatusOK      Status = "ok"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

type StepReport struct {
	Name     string        `json:"name"`
	Status   Status        `json:"status"`
	Err      error         `json:"-"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

type Report struct {
	Config models.ResourceConfig `json:"config"`
	Steps  []StepReport          `json:"steps"`
}

func (r Report) Step(name string) (StepReport, bool) {
	return lo.Find(r.Steps, func(s StepReport) bool { return s.Name == name })
}

func (r Report) Failed() []StepReport {
	return lo.Filter(r.Steps, func(s StepReport, _ int) bool { return s.Status == StatusFailed })
}

type TableEnsurer interface {
	EnsureTable(ctx context.Context) (name string, created bool, err error)
}

type QueueSubscriber interface {
	Subscribe(ctx context.Context, queueURL, topicARN string) error
}

type FunctionDeployer interface {
	Deploy(ctx context.Context, cfg models.ResourceConfig) (string, error)
}

type Options struct {
	Queue         resources.Resource
	Topic         resources.Resource
	Archive       resources.Resource
	FunctionParam string
}

// Provisioner converges the pipeline resources. Subscriber and deployer are
// optional; their steps are skipped when nil.
type Provisioner struct {
	log        *slog.Logger
	opts       Options
	resolver   *resources.Resolver
	table      TableEnsurer
	subscriber QueueSubscriber
	deployer   FunctionDeployer

	group singleflight.Group
}

func New(
	log *slog.Logger,
	opts Options,
	resolver *resources.Resolver,
	table TableEnsurer,
	subscriber QueueSubscriber,
	deployer FunctionDeployer,
) *Provisioner {
	return &Provisioner{
		log:        log,
		opts:       opts,
		resolver:   resolver,
		table:      table,
		subscriber: subscriber,
		deployer:   deployer,
	}
}

type step struct {
	name     string
	requires []string
	enabled  bool
	run      func(ctx context.Context, cfg *models.ResourceConfig) error
}

// EnsureAll runs every step once. Concurrent callers share a single run.
// The returned error wraps ErrProvisioningFailed and every step error.
func (p *Provisioner) EnsureAll(ctx context.Context) (Report, error) {
	res, err, shared := p.group.Do("ensure-all", func() (any, error) {
		return p.ensureAll(ctx)
	})
	if shared {
		p.log.Debug("provisioner.Provisioner.EnsureAll", slog.Bool("shared", shared))
	}

	report, _ := res.(Report)

	return report, err
}

func (p *Provisioner) ensureAll(ctx context.Context) (Report, error) {
	const op = "provisioner.Provisioner.EnsureAll"

	var (
		report Report
		errs   []error
	)

	for _, s := range p.steps() {
		sr := p.runStep(ctx, s, report.Steps, &report.Config)
		report.Steps = append(report.Steps, sr)

		if sr.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.name, sr.Err))
		}
	}

	if len(errs) > 0 {
		p.log.Error(op, slog.Int("failed_steps", len(errs)))
		return report, fmt.Errorf("%s: %w", op, errors.Join(append([]error{internalErrors.ErrProvisioningFailed}, errs...)...))
	}

	p.log.Info(op, slog.String("status", "converged"))

	return report, nil
}

func (p *Provisioner) runStep(ctx context.Context, s step, done []StepReport, cfg *models.ResourceConfig) StepReport {
	log := p.log.With(slog.String("step", s.name))

	if !s.enabled {
		log.Debug("step disabled")
		return StepReport{Name: s.name, Status: StatusSkipped}
	}

	for _, dep := range s.requires {
		prev, ok := lo.Find(done, func(r StepReport) bool { return r.Name == dep })
		if !ok || prev.Status != StatusOK {
			log.Warn("step skipped", slog.String("requires", dep))
			return StepReport{Name: s.name, Status: StatusSkipped, Error: "requires " + dep}
		}
	}

	start := time.Now()
	err := s.run(ctx, cfg)
	sr := StepReport{Name: s.name, Status: StatusOK, Duration: time.Since(start)}

	if err != nil {
		log.Error("step failed", slog.String("error", err.Error()))
		sr.Status, sr.Err, sr.Error = StatusFailed, err, err.Error()
		return sr
	}

	log.Info("step done", slog.Duration("duration", sr.Duration))

	return sr
}

func (p *Provisioner) steps() []step {
	return []step{
		{
			name:    StepQueue,
			enabled: true,
			run: func(ctx context.Context, cfg *models.ResourceConfig) error {
				addr, _, err := p.resolver.Ensure(ctx, p.opts.Queue)
				cfg.QueueURL = addr
				return err
			},
		},
		{
			name:    StepTopic,
			enabled: true,
			run: func(ctx context.Context, cfg *models.ResourceConfig) error {
				addr, _, err := p.resolver.Ensure(ctx, p.opts.Topic)
				cfg.TopicARN = addr
				return err
			},
		},
		{
			name:     StepSubscription,
			requires: []string{StepQueue, StepTopic},
			enabled:  p.subscriber != nil,
			run: func(ctx context.Context, cfg *models.ResourceConfig) error {
				return p.subscriber.Subscribe(ctx, cfg.QueueURL, cfg.TopicARN)
			},
		},
		{
			name:    StepTable,
			enabled: p.table != nil,
			run: func(ctx context.Context, cfg *models.ResourceConfig) error {
				name, _, err := p.table.EnsureTable(ctx)
				cfg.TableName = name
				return err
			},
		},
		{
			name:    StepArchive,
			enabled: true,
			run: func(ctx context.Context, cfg *models.ResourceConfig) error {
				bucket, err := p.resolver.Resolve(ctx, p.opts.Archive)
				cfg.ArchiveBucket = bucket
				return err
			},
		},
		{
			name:     StepFunction,
			requires: []string{StepQueue, StepTable, StepArchive},
			enabled:  p.deployer != nil,
			run: func(ctx context.Context, cfg *models.ResourceConfig) error {
				name, err := p.deployer.Deploy(ctx, *cfg)
				cfg.FunctionName = name
				return err
			},
		},
		{
			name:    StepParams,
			enabled: true,
			run:     p.persist,
		},
	}
}

func (p *Provisioner) persist(ctx context.Context, cfg *models.ResourceConfig) error {
	values := []struct {
		res  resources.Resource
		addr string
	}{
		{res: p.opts.Queue, addr: cfg.QueueURL},
		{res: p.opts.Topic, addr: cfg.TopicARN},
		{res: p.opts.Archive, addr: cfg.ArchiveBucket},
		{res: resources.Resource{Kind: "function", Param: p.opts.FunctionParam}, addr: cfg.FunctionName},
	}

	var errs []error
	for _, v := range values {
		if v.addr == "" || v.res.Param == "" {
			continue
		}

		if err := p.resolver.Persist(ctx, v.res, v.addr); err != nil {
			errs = append(errs, fmt.Errorf("persist %s: %w", v.res.Kind, err))
		}
	}

	return errors.Join(errs...)
}
