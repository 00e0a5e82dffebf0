package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// TwilioConfig holds credentials and routing for the WhatsApp transport.
type TwilioConfig struct {
	AccountSID string `yaml:"account_sid" envconfig:"TWILIO_ACCOUNT_SID"`
	AuthToken  string `yaml:"auth_token" envconfig:"TWILIO_AUTH_TOKEN"`
	// From is the sending address, e.g. "whatsapp:+14155238886".
	From string `yaml:"from" envconfig:"TWILIO_WHATSAPP_NUMBER"`
	// BaseURL overrides the Twilio API origin; used by tests.
	BaseURL string `yaml:"base_url" envconfig:"TWILIO_BASE_URL"`
}

// HTTPConfig specifies webhook listener settings.
type HTTPConfig struct {
	Listen string `yaml:"listen" envconfig:"HTTP_LISTEN"`
	Port   int    `yaml:"port" envconfig:"PORT"`
}

// LoggingConfig defines logging related configuration.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Format      string `yaml:"format"`
	KeysOrder   string `yaml:"keys_order"`
	DebugSample string `yaml:"debug_sample"`
	Dir         string `yaml:"dir"`
	File        string `yaml:"file"`
	// Profile indicates environment profile such as "debug" or "prod".
	Profile string `yaml:"profile"`
}

const (
	// StoreMemory keeps all records in process memory.
	StoreMemory = "memory"
	// StorePostgres persists records via PostgreSQL.
	StorePostgres = "postgres"
	// StoreRedis persists records via Redis.
	StoreRedis = "redis"
)

// PostgresConfig holds connection settings for the PostgreSQL store backend.
type PostgresConfig struct {
	Host           string `yaml:"host" envconfig:"DB_HOST"`
	Port           string `yaml:"port" envconfig:"DB_PORT"`
	User           string `yaml:"user" envconfig:"DB_USER"`
	Password       string `yaml:"password" envconfig:"DB_PASSWORD"`
	Name           string `yaml:"name" envconfig:"DB_NAME"`
	SSLMode        string `yaml:"sslmode" envconfig:"DB_SSLMODE"`
	MaxConnections int    `yaml:"max_connections" envconfig:"DB_MAX_CONNECTIONS"`
}

// RedisConfig holds connection settings for the Redis store backend.
type RedisConfig struct {
	Addr     string `yaml:"addr" envconfig:"REDIS_ADDR"`
	Password string `yaml:"password" envconfig:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" envconfig:"REDIS_DB"`
}

// StoreConfig selects and configures the user record backend.
type StoreConfig struct {
	Driver   string         `yaml:"driver" envconfig:"STORE_DRIVER"`
	Postgres PostgresConfig `yaml:"postgres"`
	Redis    RedisConfig    `yaml:"redis"`
}

// Config aggregates the service configuration.
type Config struct {
	Twilio  TwilioConfig  `yaml:"twilio"`
	HTTP    HTTPConfig    `yaml:"http"`
	Store   StoreConfig   `yaml:"store"`
	Logging LoggingConfig `yaml:"logging"`
}

// Load reads configuration from an optional YAML file and environment variables.
// An empty path skips the file and keeps the environment as the only source.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize performs basic validation of required configuration fields and adjusts defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	if strings.TrimSpace(cfg.Twilio.AccountSID) == "" {
		return fmt.Errorf("twilio account sid is required")
	}
	if strings.TrimSpace(cfg.Twilio.AuthToken) == "" {
		return fmt.Errorf("twilio auth token is required")
	}
	if strings.TrimSpace(cfg.Twilio.From) == "" {
		cfg.Twilio.From = "whatsapp:+14155238886"
	}

	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 3000
	}
	if cfg.HTTP.Port < 0 {
		return fmt.Errorf("http.port must be > 0")
	}

	driver := strings.ToLower(strings.TrimSpace(cfg.Store.Driver))
	if driver == "" {
		driver = StoreMemory
	}
	switch driver {
	case StoreMemory:
	case StorePostgres:
		if strings.TrimSpace(cfg.Store.Postgres.Host) == "" {
			return fmt.Errorf("store.postgres.host is required when store.driver is 'postgres'")
		}
		if strings.TrimSpace(cfg.Store.Postgres.Name) == "" {
			return fmt.Errorf("store.postgres.name is required when store.driver is 'postgres'")
		}
		if strings.TrimSpace(cfg.Store.Postgres.Port) == "" {
			cfg.Store.Postgres.Port = "5432"
		}
		if strings.TrimSpace(cfg.Store.Postgres.SSLMode) == "" {
			cfg.Store.Postgres.SSLMode = "disable"
		}
		if cfg.Store.Postgres.MaxConnections <= 0 {
			cfg.Store.Postgres.MaxConnections = 10
		}
	case StoreRedis:
		if strings.TrimSpace(cfg.Store.Redis.Addr) == "" {
			return fmt.Errorf("store.redis.addr is required when store.driver is 'redis'")
		}
	default:
		return fmt.Errorf("invalid store.driver %q; allowed: memory, postgres, redis", cfg.Store.Driver)
	}
	cfg.Store.Driver = driver

	return nil
}
