package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store drivers
const (
	StoreSupabase = "supabase"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Supabase  SupabaseConfig  `mapstructure:"supabase"`
	Store     StoreConfig     `mapstructure:"store"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Narrative NarrativeConfig `mapstructure:"narrative"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Env            string   `mapstructure:"env"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	// RateLimit is requests per minute per client; 0 disables limiting
	RateLimit int `mapstructure:"rate_limit"`
}

// SupabaseConfig holds Supabase-specific configuration. Auth always goes
// through Supabase; data only does when Store.Driver is "supabase".
type SupabaseConfig struct {
	URL        string `mapstructure:"url"`
	ServiceKey string `mapstructure:"service_key"`
}

// StoreConfig selects the data store
type StoreConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// RedisConfig enables the shared recompute lock. An empty Addr keeps locking in-process.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	LockTTL  time.Duration `mapstructure:"lock_ttl"`
}

// NarrativeConfig configures the narrative model. An empty APIKey uses the
// offline generator.
type NarrativeConfig struct {
	APIKey        string        `mapstructure:"api_key"`
	BaseURL       string        `mapstructure:"base_url"`
	Model         string        `mapstructure:"model"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RatePerMinute int           `mapstructure:"rate_per_minute"`
	MaxRetries    int           `mapstructure:"max_retries"`
}

// AnalyticsConfig holds engine settings
type AnalyticsConfig struct {
	// Timezone is the IANA zone used to turn timestamps into days
	Timezone   string        `mapstructure:"timezone"`
	InsightTTL time.Duration `mapstructure:"insight_ttl"`
	// RecomputeTimeout bounds one insight generation run
	RecomputeTimeout time.Duration `mapstructure:"recompute_timeout"`
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Format  string `mapstructure:"format"`
	Backend string `mapstructure:"backend"`
}

// Location resolves Analytics.Timezone
func (a AnalyticsConfig) Location() (*time.Location, error) {
	if a.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid analytics timezone %q: %w", a.Timezone, err)
	}
	return loc, nil
}

// Load reads configuration from .env, environment variables and config files
func Load() (*Config, error) {
	// A missing .env is fine; real environment variables take precedence
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	// Set default values
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.allowed_origins", []string{})
	v.SetDefault("server.rate_limit", 120)
	v.SetDefault("store.driver", StoreSupabase)
	v.SetDefault("redis.lock_ttl", 30*time.Second)
	v.SetDefault("narrative.model", "gpt-4o-mini")
	v.SetDefault("narrative.timeout", 20*time.Second)
	v.SetDefault("narrative.rate_per_minute", 30)
	v.SetDefault("narrative.max_retries", 2)
	v.SetDefault("analytics.timezone", "UTC")
	v.SetDefault("analytics.insight_ttl", 7*24*time.Hour)
	v.SetDefault("analytics.recompute_timeout", 2*time.Minute)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.backend", "slog")

	// Read from environment variables
	v.SetEnvPrefix("STRIDE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Also bind to non-prefixed environment variables used by hosting platforms
	v.BindEnv("server.port", "STRIDE_SERVER_PORT", "PORT")
	v.BindEnv("supabase.url", "STRIDE_SUPABASE_URL", "SUPABASE_URL")
	v.BindEnv("supabase.service_key", "STRIDE_SUPABASE_SERVICE_KEY", "SUPABASE_SERVICE_KEY")
	v.BindEnv("store.dsn", "STRIDE_STORE_DSN", "DATABASE_URL")
	v.BindEnv("redis.addr", "STRIDE_REDIS_ADDR", "REDIS_ADDR")
	v.BindEnv("narrative.api_key", "STRIDE_NARRATIVE_API_KEY", "OPENAI_API_KEY")

	// Read from config file if it exists
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// It's okay if config file doesn't exist
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks that all required configuration values are present
func (c *Config) Validate() error {
	if c.Supabase.URL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}
	if c.Supabase.ServiceKey == "" {
		return fmt.Errorf("SUPABASE_SERVICE_KEY is required")
	}

	switch c.Store.Driver {
	case StoreSupabase:
	case StorePostgres, StoreSQLite:
		if c.Store.DSN == "" {
			return fmt.Errorf("store.dsn is required for the %s driver", c.Store.Driver)
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}

	if _, err := c.Analytics.Location(); err != nil {
		return err
	}

	return nil
}
