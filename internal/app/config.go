package app

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the dashboard.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`
	ShutdownTimeout   time.Duration `envconfig:"APP_SHUTDOWN_TIMEOUT" default:"10s"`
	RateLimit         int           `envconfig:"APP_RATE_LIMIT" default:"120"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	SessionSecret string        `envconfig:"SESSION_SECRET" required:"true"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"720h"`
	CSRFSecret    string        `envconfig:"CSRF_SECRET" required:"true"`

	Backends BackendConfig
}

// BackendConfig points at the upstream services.
type BackendConfig struct {
	ProductURL  string        `envconfig:"PRODUCT_API_URL" default:"http://127.0.0.1:8081/api/product-groups"`
	SupplierURL string        `envconfig:"SUPPLIER_API_URL" default:"http://127.0.0.1:8082/api/suppliers"`
	DeliveryURL string        `envconfig:"DELIVERY_API_URL" default:"http://127.0.0.1:8083/api/deliveries"`
	AccountURL  string        `envconfig:"ACCOUNT_API_URL" default:"http://127.0.0.1:8084/api/accounts"`
	CategoryURL string        `envconfig:"CATEGORY_API_URL" default:"http://127.0.0.1:8085/api/categories"`
	Timeout     time.Duration `envconfig:"BACKEND_TIMEOUT" default:"10s"`
	RetryMax    int           `envconfig:"BACKEND_RETRY_MAX" default:"0"`
}

// LoadConfig reads an optional .env file, then the environment. The .env
// file is skipped in test mode.
func LoadConfig() (*Config, error) {
	if !InTestMode() {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.SessionSecret == "" {
		return nil, errors.New("session secret must be provided")
	}
	if cfg.CSRFSecret == "" {
		return nil, errors.New("csrf secret must be provided")
	}
	if cfg.Backends.RetryMax < 0 {
		return nil, errors.New("backend retry max must not be negative")
	}
	return &cfg, nil
}

// IsProduction returns true when the dashboard runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
