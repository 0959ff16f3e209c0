package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/IBM/sarama"

	httpapp "github.com/jeevanjot011/bevflow/internal/app/http"
	"github.com/jeevanjot011/bevflow/internal/cache_impl"
	"github.com/jeevanjot011/bevflow/internal/config"
	"github.com/jeevanjot011/bevflow/internal/consumer"
	order_service_http "github.com/jeevanjot011/bevflow/internal/delivery/http"
	kafkadelivery "github.com/jeevanjot011/bevflow/internal/delivery/kafka"
	lambdadelivery "github.com/jeevanjot011/bevflow/internal/delivery/lambda"
	"github.com/jeevanjot011/bevflow/internal/domain/models"
	"github.com/jeevanjot011/bevflow/internal/estimator"
	"github.com/jeevanjot011/bevflow/internal/notifier"
	"github.com/jeevanjot011/bevflow/internal/provisioner"
	"github.com/jeevanjot011/bevflow/internal/publisher"
	"github.com/jeevanjot011/bevflow/internal/repository/archive"
	"github.com/jeevanjot011/bevflow/internal/repository/paramstore"
	"github.com/jeevanjot011/bevflow/internal/repository/summary"
	"github.com/jeevanjot011/bevflow/internal/resources"
	kafkaconsumer "github.com/jeevanjot011/bevflow/pkg/brokers/kafka/consumer"
	"github.com/jeevanjot011/bevflow/pkg/brokers/kafka/producer"
	brokersns "github.com/jeevanjot011/bevflow/pkg/brokers/sns"
	brokersqs "github.com/jeevanjot011/bevflow/pkg/brokers/sqs"
	"github.com/jeevanjot011/bevflow/pkg/databases/postgres"
)

type summaryStore interface {
	Upsert(ctx context.Context, summary models.OrderSummary) error
	Get(ctx context.Context, orderID string) (models.OrderSummary, error)
	EnsureTable(ctx context.Context) (string, bool, error)
}

type App struct {
	log *slog.Logger
	cfg *config.Config

	HTTPServer  *httpapp.App
	Provisioner *provisioner.Provisioner
	Publisher   *publisher.Publisher
	Processor   *consumer.Processor
	Resolver    *resources.Resolver

	queue   resources.Resource
	closers []func() error
}

// NewApp wires every component. Only the Kafka and Postgres backends open
// connections here; AWS resources are resolved on first use.
func NewApp(ctx context.Context, log *slog.Logger, cfg *config.Config) (*App, error) {
	a := &App{log: log, cfg: cfg}

	clients, err := newAWSClients(ctx, cfg.AWS)
	if err != nil {
		return nil, err
	}

	params := paramstore.NewCached(
		paramstore.New(log, clients.ssm),
		cache_impl.NewExpirable[string, string](log, cfg.Cache.Size, cfg.Cache.TTL),
	)
	a.Resolver = resources.NewResolver(log, params)

	topic := resources.Resource{
		Kind:    "topic",
		Name:    cfg.Resources.TopicName,
		Param:   cfg.Params.TopicARN,
		Backend: resources.NewSNSTopics(clients.sns),
	}
	bucket := resources.Resource{
		Kind:    "bucket",
		Name:    cfg.Resources.ArchiveBucket,
		Param:   cfg.Params.ArchiveBucket,
		Backend: resources.NewS3Buckets(clients.s3, clients.region),
		Mint:    resources.BucketMinter(cfg.Resources.ArchivePrefix, cfg.AWS.EnvID),
	}

	var sender publisher.QueueSender

	sqsQueues := resources.NewSQSQueues(clients.sqs)

	switch cfg.Queue.Backend {
	case config.QueueBackendKafka:
		admin, err := sarama.NewClusterAdmin(cfg.Kafka.BrokerList, sarama.NewConfig())
		if err != nil {
			return nil, fmt.Errorf("kafka admin: %w", err)
		}
		a.closers = append(a.closers, admin.Close)

		prod, err := producer.NewProducer(log, cfg.Kafka.BrokerList)
		if err != nil {
			_ = a.Stop()
			return nil, fmt.Errorf("kafka producer: %w", err)
		}
		a.closers = append(a.closers, prod.Close)

		a.queue = resources.Resource{
			Kind:    "queue",
			Name:    cfg.Resources.QueueName,
			Param:   cfg.Params.QueueURL,
			Backend: resources.NewKafkaTopics(admin, cfg.Kafka.Partitions, cfg.Kafka.ReplicationFactor),
		}
		sender = prod
	default:
		a.queue = resources.Resource{
			Kind:    "queue",
			Name:    cfg.Resources.QueueName,
			Param:   cfg.Params.QueueURL,
			Backend: sqsQueues,
		}
		sender = brokersqs.NewSender(clients.sqs)
	}

	summaries, err := a.summaryStore(ctx, clients)
	if err != nil {
		_ = a.Stop()
		return nil, err
	}

	logArchive := archive.New(log, clients.s3, clients.presign, a.archiveBucket(bucket))

	var mailer consumer.Notifier
	if cfg.Notifier.Sender != "" {
		mailer = notifier.NewSES(log, clients.ses, cfg.Notifier.Sender)
	}

	a.Processor = consumer.NewProcessor(log, summaries, logArchive, mailer, estimator.NewDublin())

	topicClient := brokersns.New(clients.sns)
	a.Publisher = publisher.New(log, resources.NewAddresses(a.Resolver, a.queue, topic), sender, topicClient)

	var (
		subscriber provisioner.QueueSubscriber
		deployer   provisioner.FunctionDeployer
	)
	if cfg.Queue.Backend == config.QueueBackendSQS {
		subscriber = provisioner.NewSQSSubscriber(log, clients.sqs, topicClient)
		deployer = provisioner.NewLambdaDeployer(log, a.functionConfig(), clients.iam, clients.lambda, sqsQueues)
	}

	a.Provisioner = provisioner.New(log, provisioner.Options{
		Queue:         a.queue,
		Topic:         topic,
		Archive:       bucket,
		FunctionParam: cfg.Params.FunctionName,
	}, a.Resolver, summaries, subscriber, deployer)

	a.HTTPServer = httpapp.NewApp(
		log,
		order_service_http.NewHandler(log, a.Publisher, summaries, logArchive, a.Provisioner),
		cfg.HTTP,
	)

	return a, nil
}

func (a *App) summaryStore(ctx context.Context, clients *awsClients) (summaryStore, error) {
	p := a.cfg.Provisioner

	if a.cfg.Summary.Backend != config.SummaryBackendPostgres {
		return summary.NewDynamoDB(a.log, clients.dynamodb, a.cfg.Resources.TableName, p.TableWaitAttempts, p.TableWaitDelay), nil
	}

	db, err := postgres.NewPostgresDB(ctx, a.log, a.cfg.PostgresDSN())
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	a.closers = append(a.closers, db.Close)

	return summary.NewPostgres(a.log, db.GetDB()), nil
}

// archiveBucket pins the bucket handed over by the provisioner (LOGS_BUCKET)
// and resolves it through the config store otherwise.
func (a *App) archiveBucket(bucket resources.Resource) archive.BucketResolver {
	if a.cfg.Resources.ArchiveBucket != "" {
		return archive.StaticBucket(a.cfg.Resources.ArchiveBucket)
	}

	return func(ctx context.Context) (string, error) {
		return a.Resolver.Resolve(ctx, bucket)
	}
}

func (a *App) functionConfig() provisioner.FunctionConfig {
	cfg := a.cfg

	return provisioner.FunctionConfig{
		Name:      cfg.Resources.FunctionName,
		RoleName:  cfg.Resources.RoleName,
		Binary:    cfg.Provisioner.FunctionBinary,
		Timeout:   cfg.Provisioner.FunctionTimeout,
		BatchSize: cfg.Provisioner.BatchSize,
		Env: map[string]string{
			"BEVFLOW_ENV":             cfg.Env,
			"BEVFLOW_ENV_ID":          cfg.AWS.EnvID,
			"BEVFLOW_SUMMARY_BACKEND": cfg.Summary.Backend,
			"BEVFLOW_AWS_ENDPOINT":    cfg.AWS.Endpoint,
			"SES_SENDER":              cfg.Notifier.Sender,
		},
	}
}

func (a *App) LambdaHandler() *lambdadelivery.Handler {
	return lambdadelivery.NewHandler(a.log, a.Processor)
}

// KafkaWorker ensures the order topic exists and returns a consumer group
// feeding it to the processor.
func (a *App) KafkaWorker(ctx context.Context) (*kafkaconsumer.Group, error) {
	const op = "app.App.KafkaWorker"

	if a.cfg.Queue.Backend != config.QueueBackendKafka {
		return nil, fmt.Errorf("%s: queue backend is %q", op, a.cfg.Queue.Backend)
	}

	topic, _, err := a.Resolver.Ensure(ctx, a.queue)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	k := a.cfg.Kafka
	handler := kafkadelivery.NewHandler(a.log, a.Processor, k.MaxRetries)

	group, err := kafkaconsumer.NewGroup(a.log, k.BrokerList, k.GroupID, []string{topic}, handler)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	a.closers = append(a.closers, group.Close)

	return group, nil
}

// Stop releases broker and database connections in reverse order.
func (a *App) Stop() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil

	return errors.Join(errs...)
}
