package config

import (
	"errors"
	"fmt"
	"os"
	"time"
)

const (
	defaultPort         = "8080"
	defaultRegion       = "us-east-1"
	defaultStoreTimeout = 5 * time.Second
	defaultMetricsNS    = "OrdersService"
)

type (
	HTTPServer struct {
		Port     string
		RunLocal bool
	}

	Store struct {
		TableName string
		Timeout   time.Duration
	}

	Events struct {
		QueueURL         string // empty disables order event publishing
		MetricsNamespace string
	}

	Config struct {
		Env    string
		Region string
		Server HTTPServer
		Store  Store
		Events Events
	}
)

// Load reads the service configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg, err := loadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("environment loading: %w", err)
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("validation: %w", err)
	}
	return cfg, nil
}

func loadFromEnv() (*Config, error) {
	storeTimeout, err := osGetDuration("STORE_TIMEOUT", defaultStoreTimeout)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	return &Config{
		Env:    osGetDefault("APP_ENV", "development"),
		Region: osGetDefault("AWS_REGION", defaultRegion),
		Server: HTTPServer{
			Port:     osGetDefault("PORT", defaultPort),
			RunLocal: os.Getenv("RUN_LOCAL") == "true",
		},
		Store: Store{
			TableName: os.Getenv("ORDERS_TABLE"),
			Timeout:   storeTimeout,
		},
		Events: Events{
			QueueURL:         os.Getenv("ORDERS_QUEUE_URL"),
			MetricsNamespace: osGetDefault("METRICS_NAMESPACE", defaultMetricsNS),
		},
	}, nil
}

func validateConfig(cfg *Config) error {
	if cfg.Store.TableName == "" {
		return errors.New("ORDERS_TABLE is required")
	}
	if cfg.Store.Timeout <= 0 {
		return errors.New("STORE_TIMEOUT must be positive")
	}
	return nil
}

func osGetDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func osGetDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
