package config

import (
	"time"

	"github.com/coreforge/storefront/internal/domain"
	"github.com/coreforge/storefront/pkg/config"
	"github.com/coreforge/storefront/pkg/database"
)

// Config is the full storefront server configuration, loaded from the
// environment.
type Config struct {
	HTTPPort        int           `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`

	Postgres PostgresConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Pricing  PricingConfig
	Probe    ProbeConfig
}

// PostgresConfig holds database settings.
type PostgresConfig struct {
	Host     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	Port     int    `env:"POSTGRES_PORT" envDefault:"5432"`
	User     string `env:"POSTGRES_USER" envDefault:"storefront"`
	Password string `env:"POSTGRES_PASSWORD" envDefault:"storefront_secret"`
	DBName   string `env:"POSTGRES_DB" envDefault:"storefront"`
	SSLMode  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`
	MaxConns int32  `env:"POSTGRES_MAX_CONNS" envDefault:"25"`
}

// RedisConfig holds cart store settings.
type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password string        `env:"REDIS_PASSWORD" envDefault:""`
	DB       int           `env:"REDIS_DB" envDefault:"0"`
	CartTTL  time.Duration `env:"CART_TTL" envDefault:"720h"`
}

// KafkaConfig holds event publishing settings. An empty broker list disables
// publishing.
type KafkaConfig struct {
	Brokers []string `env:"KAFKA_BROKERS" envSeparator:","`
}

// PricingConfig holds the checkout pricing table.
type PricingConfig struct {
	FreeShippingThreshold float64 `env:"FREE_SHIPPING_THRESHOLD" envDefault:"1000"`
	FlatShippingFee       float64 `env:"FLAT_SHIPPING_FEE" envDefault:"50"`
	TaxRate               float64 `env:"TAX_RATE" envDefault:"0.08"`
}

// ProbeConfig holds connectivity watcher settings. An empty target disables
// the watcher.
type ProbeConfig struct {
	Target   string        `env:"CONNECTIVITY_PROBE_TARGET" envDefault:""`
	Interval time.Duration `env:"CONNECTIVITY_PROBE_INTERVAL" envDefault:"30s"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DomainPricing converts the pricing table to its domain form.
func (c *Config) DomainPricing() domain.PricingConfig {
	return domain.PricingConfig{
		FreeShippingThreshold: c.Pricing.FreeShippingThreshold,
		FlatShippingFee:       c.Pricing.FlatShippingFee,
		TaxRate:               c.Pricing.TaxRate,
	}
}

// PostgresPoolConfig converts the database settings to pool configuration.
func (c *Config) PostgresPoolConfig() database.PostgresConfig {
	pg := database.DefaultPostgresConfig()
	pg.Host = c.Postgres.Host
	pg.Port = c.Postgres.Port
	pg.User = c.Postgres.User
	pg.Password = c.Postgres.Password
	pg.DBName = c.Postgres.DBName
	pg.SSLMode = c.Postgres.SSLMode
	pg.MaxConns = c.Postgres.MaxConns
	return pg
}
