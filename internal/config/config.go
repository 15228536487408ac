package config

import (
	"errors"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// WhatsAppConfig holds provider settings. Credentials are not required here;
// their absence is reported per request as a configuration error.
type WhatsAppConfig struct {
	Token          string   `envconfig:"META_WA_TOKEN"`
	PhoneNumberID  string   `envconfig:"PHONE_NUMBER_ID"`
	BaseURL        string   `envconfig:"WA_BASE_URL" default:"https://graph.facebook.com"`
	APIVersion     string   `envconfig:"WA_API_VERSION" default:"v20.0"`
	HTTPTimeoutSec int      `envconfig:"WA_HTTP_TIMEOUT_SECONDS" default:"8"`
	TemplateName   string   `envconfig:"WA_TEMPLATE_NAME" default:"obra_criada"`
	TemplateLang   string   `envconfig:"WA_TEMPLATE_LANG" default:"pt_BR"`
	TemplateParams []string `envconfig:"WA_TEMPLATE_PARAMS"`
	RPSPerPod      float64  `envconfig:"WA_RPS_PER_POD" default:"20"`
	Burst          int      `envconfig:"WA_BURST" default:"40"`

	RequireDescription  bool `envconfig:"REQUIRE_DESCRIPTION" default:"false"`
	RequireDeliveryDate bool `envconfig:"REQUIRE_DELIVERY_DATE" default:"false"`
}

// StoreConfig selects the customer record lookup. RECORD_STORE is one of
// none, postgres, dynamodb.
type StoreConfig struct {
	RecordStore string `envconfig:"RECORD_STORE" default:"none"`

	DBDSN               string `envconfig:"DB_DSN"`
	DBMaxConns          int32  `envconfig:"DB_POOL_MAX_CONNS" default:"10"`
	DBMinConns          int32  `envconfig:"DB_POOL_MIN_CONNS" default:"0"`
	DBMaxConnLifetime   string `envconfig:"DB_POOL_MAX_CONN_LIFETIME" default:"30m"`
	DBMaxConnIdleTime   string `envconfig:"DB_POOL_MAX_CONN_IDLE_TIME" default:"5m"`
	DBHealthCheckPeriod string `envconfig:"DB_POOL_HEALTH_CHECK_PERIOD" default:"1m"`
	DynamoTable         string `envconfig:"DYNAMO_TABLE" default:"customers"`
}

type AWSConfig struct {
	AWSRegion          string `envconfig:"AWS_REGION" default:"us-east-1"`
	LocalstackEndpoint string `envconfig:"LOCALSTACK_ENDPOINT"`
	OutcomeQueueURL    string `envconfig:"OUTCOME_QUEUE_URL"`
}

type APIConfig struct {
	Port      string `envconfig:"PORT" default:"8080"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	WhatsAppConfig
	StoreConfig
	AWSConfig
}

type WorkerConfig struct {
	Port      string `envconfig:"PORT" default:"8080"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	SQSQueueURL   string `envconfig:"SQS_QUEUE_URL" required:"true"`
	SQSWaitTime   int32  `envconfig:"SQS_WAIT_TIME" default:"20"`
	SQSMaxMsgs    int32  `envconfig:"SQS_MAX_MSGS" default:"10"`
	SQSVizTimeout int32  `envconfig:"SQS_VISIBILITY_TIMEOUT" default:"60"`

	WorkerConcurrency int `envconfig:"WORKER_CONCURRENCY" default:"4"`

	WhatsAppConfig
	StoreConfig
	AWSConfig
}

func LoadAPI() (APIConfig, error) {
	loadDotEnv()
	var cfg APIConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return APIConfig{}, err
	}
	return cfg, nil
}

func LoadWorker() (WorkerConfig, error) {
	loadDotEnv()
	var cfg WorkerConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return WorkerConfig{}, err
	}
	return cfg, nil
}

// LoadWhatsApp is used by the CLI, which only needs provider settings.
func LoadWhatsApp() (WhatsAppConfig, error) {
	loadDotEnv()
	var cfg WhatsAppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return WhatsAppConfig{}, err
	}
	return cfg, nil
}

// .env is optional; real environment variables always win.
func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("could not load .env", "err", err)
	}
}
