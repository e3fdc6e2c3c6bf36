package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

var ErrConfigNotFound = errors.New("config file not found, using defaults and environment variables")

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Registry   RegistryConfig   `mapstructure:"registry"`
	Moderation ModerationConfig `mapstructure:"moderation"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
}

type ServerConfig struct {
	Port      int    `mapstructure:"port"`
	SecretKey string `mapstructure:"secret_key"`
	BaseURL   string `mapstructure:"base_url"`
	// CORSOrigins lists browser origins allowed to call the API.
	CORSOrigins []string `mapstructure:"cors_origins"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TLS      bool   `mapstructure:"tls"`
	// TTL in seconds of cached guardrails. Redis is disabled when Host is empty.
	TTL int `mapstructure:"ttl"`
}

type RegistryConfig struct {
	Store   string `mapstructure:"store"`
	DataDir string `mapstructure:"data_dir"`
}

type ModerationConfig struct {
	APIKey         string               `mapstructure:"api_key"`
	Environment    string               `mapstructure:"environment"`
	BaseURL        string               `mapstructure:"base_url"`
	TimeoutMs      int                  `mapstructure:"timeout_ms"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

type CircuitBreakerConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	MaxFailures int  `mapstructure:"max_failures"`
	// OpenSeconds is how long the breaker stays open before probing again.
	OpenSeconds int `mapstructure:"open_seconds"`
}

type ClassifierConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	TimeoutMs int    `mapstructure:"timeout_ms"`
}

func (c ModerationConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

func (c ClassifierConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

func (c RedisConfig) CacheTTL() time.Duration {
	return time.Duration(c.TTL) * time.Second
}

var globalConfig Config

// Load reads config.yaml from configPath (then ./config and .) and applies
// environment overrides such as SERVER_PORT or REGISTRY_STORE. A missing file
// is reported with ErrConfigNotFound but the defaults are still loaded.
func Load(configPath string) error {
	cfg, err := loadConfigFile(configPath, "config")
	if cfg != nil {
		globalConfig = *cfg
	}
	return err
}

func loadConfigFile(configPath, fileName string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(fileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	registerDefaults(v)

	var readErr error
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file %s.yaml: %w", fileName, err)
		}
		readErr = ErrConfigNotFound
	}

	var cfg Config
	// Comma separated env values, e.g. SERVER_CORS_ORIGINS="https://a,https://b", decode into slices.
	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, decodeHook); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s config: %w", fileName, err)
	}
	setDefaultValues(&cfg)
	return &cfg, readErr
}

// registerDefaults makes every key known to viper so environment overrides
// apply even without a config file.
func registerDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.secret_key", "")
	v.SetDefault("server.base_url", "")
	v.SetDefault("server.cors_origins", []string{})
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "consensus_sentry")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("redis.host", "")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.tls", false)
	v.SetDefault("redis.ttl", 300)
	v.SetDefault("registry.store", StoreMemory)
	v.SetDefault("registry.data_dir", "")
	v.SetDefault("moderation.api_key", "")
	v.SetDefault("moderation.environment", "production")
	v.SetDefault("moderation.base_url", "https://consensussentry-app.eastus.azurecontainer.io:8080")
	v.SetDefault("moderation.timeout_ms", 5000)
	v.SetDefault("moderation.circuit_breaker.enabled", true)
	v.SetDefault("moderation.circuit_breaker.max_failures", 5)
	v.SetDefault("moderation.circuit_breaker.open_seconds", 30)
	v.SetDefault("classifier.base_url", "https://toxic-classifier-api-936459055446.us-central1.run.app")
	v.SetDefault("classifier.timeout_ms", 10000)
}

func setDefaultValues(cfg *Config) {
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Moderation.Environment == "" {
		cfg.Moderation.Environment = "production"
	}
	if cfg.Moderation.TimeoutMs <= 0 {
		cfg.Moderation.TimeoutMs = 5000
	}
	if cfg.Moderation.CircuitBreaker.MaxFailures <= 0 {
		cfg.Moderation.CircuitBreaker.MaxFailures = 5
	}
	if cfg.Moderation.CircuitBreaker.OpenSeconds <= 0 {
		cfg.Moderation.CircuitBreaker.OpenSeconds = 30
	}
	if cfg.Classifier.TimeoutMs <= 0 {
		cfg.Classifier.TimeoutMs = 10000
	}
	if cfg.Redis.TTL <= 0 {
		cfg.Redis.TTL = 300
	}
	cfg.Registry.Store = strings.ToLower(strings.TrimSpace(cfg.Registry.Store))
	if cfg.Registry.Store == "" {
		cfg.Registry.Store = StoreMemory
	}
}

func (c *Config) Validate() error {
	switch c.Registry.Store {
	case StorePostgres, StoreMemory:
	default:
		return fmt.Errorf("unknown registry store %q, expected %q or %q", c.Registry.Store, StorePostgres, StoreMemory)
	}
	if c.Server.SecretKey == "" {
		return errors.New("server.secret_key is required to verify caller tokens")
	}
	return nil
}

func GetConfig() *Config {
	return &globalConfig
}
