package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DatabaseURL    string `env:"DATABASE_URL" envDefault:"sqlite://podsync.db"`
	DatabaseDriver string `env:"DATABASE_DRIVER" envDefault:"pgx" validate:"oneof=pgx pq"`

	// Kafka
	KafkaBrokers      []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:"," validate:"min=1"`
	KafkaGroupID      string   `env:"KAFKA_GROUP_ID" envDefault:"podsync-worker"`
	KafkaTriggerTopic string   `env:"KAFKA_TRIGGER_TOPIC" envDefault:"inventory-sync-requests" validate:"required"`
	KafkaOutcomeTopic string   `env:"KAFKA_OUTCOME_TOPIC" envDefault:"inventory-sync-outcomes" validate:"required"`

	// API Configuration
	APIPort            string   `env:"API_PORT" envDefault:"8080"`
	APIHost            string   `env:"API_HOST" envDefault:"0.0.0.0"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Worker
	WorkerMetricsAddr string `env:"WORKER_METRICS_ADDR" envDefault:":9090"`

	// Printify is checked by ValidatePrintify in binaries that build a client.
	Printify PrintifyConfig `envPrefix:"PRINTIFY_" validate:"-"`

	// Sync
	Sync SyncConfig `envPrefix:"SYNC_"`

	// Environment
	Env      string `env:"ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
}

type PrintifyConfig struct {
	BaseURL    string        `env:"BASE_URL" envDefault:"https://api.printify.com/v1" validate:"url"`
	APIToken   string        `env:"API_TOKEN" validate:"required"`
	ShopID     string        `env:"SHOP_ID" validate:"required"`
	Timeout    time.Duration `env:"TIMEOUT" envDefault:"30s" validate:"gt=0"`
	RetryCount int           `env:"RETRY_COUNT" envDefault:"3" validate:"gte=0,lte=10"`
	PageLimit  int           `env:"PAGE_LIMIT" envDefault:"50" validate:"gte=1,lte=100"`
}

type SyncConfig struct {
	// ProductDelay is the minimum spacing between two products of a pass.
	ProductDelay time.Duration `env:"PRODUCT_DELAY" envDefault:"1s" validate:"gte=0"`
	Interval     time.Duration `env:"INTERVAL" envDefault:"6h" validate:"gte=0"`
}

func Load() (*Config, error) {
	// Load .env file
	godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the constraints declared in the struct tags.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// ValidatePrintify checks the storefront credentials and client settings.
func (c *Config) ValidatePrintify() error {
	if err := validator.New().Struct(c.Printify); err != nil {
		return fmt.Errorf("invalid printify configuration: %w", err)
	}
	return nil
}
