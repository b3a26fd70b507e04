package api

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.temporal.io/sdk/client"
)

// Config carries environment-driven settings for the API and worker processes.
type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	PostgresDSN string `envconfig:"POSTGRES_DSN"`
	// AutoMigrate applies pending schema migrations on startup.
	AutoMigrate bool `envconfig:"AUTO_MIGRATE" default:"false"`

	TemporalAddress   string `envconfig:"TEMPORAL_ADDRESS"`
	TemporalNamespace string `envconfig:"TEMPORAL_NAMESPACE"`
	TemporalDisabled  bool   `envconfig:"TEMPORAL_DISABLED" default:"false"`

	KafkaBrokers []string `envconfig:"KAFKA_BROKERS"`
	KafkaTopic   string   `envconfig:"KAFKA_ORDERS_TOPIC" default:"ventrest.orders"`

	JWTSecret string        `envconfig:"JWT_SECRET" default:"ventrest-dev-secret"`
	TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"168h"`

	PricingURL     string        `envconfig:"PRICING_API_URL"`
	PricingTimeout time.Duration `envconfig:"PRICING_API_TIMEOUT" default:"5s"`

	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`

	SessionPurgeInterval time.Duration `envconfig:"SESSION_PURGE_INTERVAL" default:"1h"`
}

// LoadConfig reads an optional .env file, then the environment, and validates basic constraints.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	if cfg.TemporalAddress == "" {
		cfg.TemporalAddress = client.DefaultHostPort
	}
	if cfg.TemporalNamespace == "" {
		cfg.TemporalNamespace = client.DefaultNamespace
	}
	if cfg.TokenTTL <= 0 {
		return Config{}, errors.New("TOKEN_TTL must be positive")
	}
	if cfg.SessionPurgeInterval <= 0 {
		return Config{}, errors.New("SESSION_PURGE_INTERVAL must be positive")
	}
	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}

// KafkaEnabled reports whether order events go to a broker.
func (c Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}
