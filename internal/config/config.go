package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	QueueBackendSQS   = "sqs"
	QueueBackendKafka = "kafka"

	SummaryBackendDynamoDB = "dynamodb"
	SummaryBackendPostgres = "postgres"
)

type Config struct {
	Env         string            `yaml:"env" env:"BEVFLOW_ENV" env-default:"local"`
	AWS         AWSConfig         `yaml:"aws"`
	Resources   ResourcesConfig   `yaml:"resources"`
	Params      ParamsConfig      `yaml:"params"`
	Provisioner ProvisionerConfig `yaml:"provisioner"`
	Queue       QueueConfig       `yaml:"queue"`
	Summary     SummaryConfig     `yaml:"summary"`
	HTTP        HTTPConfig        `yaml:"http"`
	Postgres    PostgresConfig    `yaml:"postgres"`
	Kafka       KafkaConfig       `yaml:"kafka"`
	Notifier    NotifierConfig    `yaml:"notifier"`
	Cache       CacheConfig       `yaml:"cache"`
}

type AWSConfig struct {
	Region string `yaml:"region" env:"AWS_REGION" env-default:"us-east-1"`
	// Endpoint overrides every service endpoint, e.g. a LocalStack URL.
	Endpoint string `yaml:"endpoint" env:"BEVFLOW_AWS_ENDPOINT"`
	EnvID    string `yaml:"env_id" env:"BEVFLOW_ENV_ID" env-default:"dev"`
}

// ResourcesConfig holds logical resource names. Empty names are derived from the env id.
type ResourcesConfig struct {
	QueueName     string `yaml:"queue_name" env:"BEVFLOW_QUEUE_NAME"`
	TopicName     string `yaml:"topic_name" env:"BEVFLOW_TOPIC_NAME"`
	TableName     string `yaml:"table_name" env:"DDB_TABLE"`
	FunctionName  string `yaml:"function_name" env:"BEVFLOW_FUNCTION_NAME"`
	RoleName      string `yaml:"role_name" env:"BEVFLOW_ROLE_NAME"`
	ArchivePrefix string `yaml:"archive_prefix" env:"BEVFLOW_ARCHIVE_PREFIX" env-default:"bevflow-logs"`
	// ArchiveBucket pins the log archive. The consumer receives it from the provisioner.
	ArchiveBucket string `yaml:"archive_bucket" env:"LOGS_BUCKET"`
}

// ParamsConfig holds the configuration store keys. Empty keys are derived from the env id.
type ParamsConfig struct {
	QueueURL      string `yaml:"queue_url" env:"BEVFLOW_PARAM_QUEUE_URL"`
	TopicARN      string `yaml:"topic_arn" env:"BEVFLOW_PARAM_TOPIC_ARN"`
	FunctionName  string `yaml:"function_name" env:"BEVFLOW_PARAM_FUNCTION"`
	ArchiveBucket string `yaml:"archive_bucket" env:"BEVFLOW_PARAM_LOGS_BUCKET"`
}

type ProvisionerConfig struct {
	SkipOnStartup     bool          `yaml:"skip_on_startup" env:"BEVFLOW_SKIP_PROVISION_ON_STARTUP"`
	TableWaitAttempts uint64        `yaml:"table_wait_attempts" env:"BEVFLOW_TABLE_WAIT_ATTEMPTS" env-default:"10"`
	TableWaitDelay    time.Duration `yaml:"table_wait_delay" env:"BEVFLOW_TABLE_WAIT_DELAY" env-default:"2s"`
	FunctionBinary    string        `yaml:"function_binary" env:"BEVFLOW_FUNCTION_BINARY" env-default:"bin/order_processor/bootstrap"`
	FunctionTimeout   int32         `yaml:"function_timeout" env:"BEVFLOW_FUNCTION_TIMEOUT" env-default:"30"`
	BatchSize         int32         `yaml:"batch_size" env:"BEVFLOW_BATCH_SIZE" env-default:"1"`
}

type QueueConfig struct {
	Backend string `yaml:"backend" env:"BEVFLOW_QUEUE_BACKEND" env-default:"sqs"`
}

type SummaryConfig struct {
	Backend string `yaml:"backend" env:"BEVFLOW_SUMMARY_BACKEND" env-default:"dynamodb"`
}

type HTTPConfig struct {
	Port            int           `yaml:"port" env:"BEVFLOW_HTTP_PORT" env-default:"8080"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"BEVFLOW_HTTP_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

type PostgresConfig struct {
	Port    string `yaml:"port" env:"POSTGRES_PORT" env-default:"5432"`
	Host    string `yaml:"host" env:"POSTGRES_HOST" env-default:"localhost"`
	DbName  string `yaml:"db_name" env:"POSTGRES_DB" env-default:"bevflow"`
	User    string `yaml:"user" env:"POSTGRES_USER" env-default:"postgres"`
	Pwd     string `yaml:"password" env:"POSTGRES_PASSWORD"`
	SslMode string `yaml:"sslmode" env:"POSTGRES_SSLMODE" env-default:"disable"`
}

type KafkaConfig struct {
	BrokerList        []string `yaml:"broker_list" env:"KAFKA_BROKERS" env-separator:"," env-default:"localhost:9092"`
	GroupID           string   `yaml:"group_id" env:"KAFKA_GROUP_ID" env-default:"bevflow-order-processor"`
	Partitions        int32    `yaml:"partitions" env:"KAFKA_PARTITIONS" env-default:"3"`
	ReplicationFactor int16    `yaml:"replication_factor" env:"KAFKA_REPLICATION_FACTOR" env-default:"1"`
	MaxRetries        uint64   `yaml:"max_retries" env:"KAFKA_MAX_RETRIES" env-default:"3"`
}

type NotifierConfig struct {
	Sender string `yaml:"sender" env:"SES_SENDER"`
}

type CacheConfig struct {
	Size int           `yaml:"size" env:"BEVFLOW_CACHE_SIZE" env-default:"16"`
	TTL  time.Duration `yaml:"ttl" env:"BEVFLOW_CACHE_TTL" env-default:"5m"`
}

// InitConfig loads the config from the -config flag, CONFIG_PATH, or the
// environment alone when neither is set. It panics on invalid configuration.
func InitConfig() Config {
	cfg, err := Load(getConfigPath())
	if err != nil {
		panic(err.Error())
	}

	return cfg
}

// Load reads an optional .env file, then path (if non-empty) and the environment.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	var cfg Config

	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return Config{}, fmt.Errorf("read config from env: %w", err)
		}
	} else {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return Config{}, fmt.Errorf("config file does not exist: %s", path)
		}

		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	id := c.AWS.EnvID

	setDefault(&c.Resources.QueueName, "bevflow-orders-"+id)
	setDefault(&c.Resources.TopicName, "bevflow-orders-topic-"+id)
	setDefault(&c.Resources.TableName, "bevflow-orders-table-"+id)
	setDefault(&c.Resources.FunctionName, "bevflow-order-processor-"+id)
	setDefault(&c.Resources.RoleName, "BevFlowLambdaRole-"+id)

	setDefault(&c.Params.QueueURL, "/bevflow/sqs-url-"+id)
	setDefault(&c.Params.TopicARN, "/bevflow/sns-arn-"+id)
	setDefault(&c.Params.FunctionName, "/bevflow/lambda-arn-"+id)
	setDefault(&c.Params.ArchiveBucket, "/bevflow/logs-bucket-"+id)
}

func (c *Config) validate() error {
	switch c.Queue.Backend {
	case QueueBackendSQS, QueueBackendKafka:
	default:
		return fmt.Errorf("unknown queue backend %q", c.Queue.Backend)
	}

	switch c.Summary.Backend {
	case SummaryBackendDynamoDB, SummaryBackendPostgres:
	default:
		return fmt.Errorf("unknown summary backend %q", c.Summary.Backend)
	}

	if c.Provisioner.BatchSize < 1 {
		return fmt.Errorf("batch size must be positive, got %d", c.Provisioner.BatchSize)
	}

	return nil
}

// PostgresDSN builds a lib/pq connection string.
func (c *Config) PostgresDSN() string {
	p := c.Postgres

	return fmt.Sprintf("host=%s port=%s user=%s dbname=%s password=%s sslmode=%s",
		p.Host, p.Port, p.User, p.DbName, p.Pwd, p.SslMode)
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

func getConfigPath() string {
	var path string

	flag.StringVar(&path, "config", "", "path to config file")
	flag.Parse()

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}

	return path
}
