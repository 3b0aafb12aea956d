// Package config loads n8n client settings from a YAML file, a .env file and
// N8N_* environment variables.
//
// Precedence, highest first: process environment, .env file, config file,
// defaults. Every setting has an environment variable named after its key,
// e.g. http.retry_times is read from N8N_HTTP_RETRY_TIMES.
//
// # Example Usage
//
//	cfg, err := config.Load(config.WithEnvFile(".env"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	client, err := n8n.NewWithConfig(cfg.ClientConfig(logger, nil))
package config

import (
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/lexfrei/go-n8n/observability"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "N8N"

// Queue connections.
const (
	ConnectionDefault = "default"
	ConnectionMemory  = "memory"
	ConnectionRedis   = "redis"
)

// Config is the complete client configuration.
type Config struct {
	BaseURL         string        `mapstructure:"base_url" validate:"required,url"`
	APIKey          string        `mapstructure:"api_key" validate:"required"`
	DefaultStrategy string        `mapstructure:"default_strategy" validate:"oneof=sync async queued"`
	HTTP            HTTPConfig    `mapstructure:"http"`
	Queue           QueueConfig   `mapstructure:"queue"`
	Events          EventsConfig  `mapstructure:"events"`
	Logging         LoggingConfig `mapstructure:"logging"`
}

// HTTPConfig configures the transport.
type HTTPConfig struct {
	// Timeout in seconds.
	Timeout int `mapstructure:"timeout" validate:"gte=0"`
	// RetryTimes is the number of retries after the first attempt.
	RetryTimes int `mapstructure:"retry_times" validate:"gte=0"`
	// RetrySleep in milliseconds.
	RetrySleep int  `mapstructure:"retry_sleep" validate:"gte=0"`
	VerifySSL  bool `mapstructure:"verify_ssl"`
	// RateLimit in requests per minute, 0 for unlimited.
	RateLimit int `mapstructure:"rate_limit" validate:"gte=0"`
}

// QueueConfig configures the queued strategy backend.
type QueueConfig struct {
	Connection string `mapstructure:"connection" validate:"oneof=default memory redis"`
	Name       string `mapstructure:"name" validate:"required"`
	RedisAddr  string `mapstructure:"redis_addr" validate:"required_if=Connection redis"`
	Workers    int    `mapstructure:"workers" validate:"gte=0"`
}

// EventsConfig configures lifecycle event publishing.
type EventsConfig struct {
	Enabled      bool     `mapstructure:"enabled"`
	KafkaBrokers []string `mapstructure:"kafka_brokers"`
	KafkaTopic   string   `mapstructure:"kafka_topic"`
}

// LoggingConfig configures the per-request log line.
type LoggingConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Level   string `mapstructure:"level" validate:"oneof=debug info warn warning error"`
	Channel string `mapstructure:"channel"`
	// Format is "console" or "json".
	Format string `mapstructure:"format" validate:"oneof=console json"`
}

// defaults lists every key with its default value. Keys double as the
// registry of known settings for environment binding.
var defaults = map[string]any{
	"base_url":             "http://localhost:5678",
	"api_key":              "",
	"default_strategy":     "sync",
	"http.timeout":         30,
	"http.retry_times":     3,
	"http.retry_sleep":     1000,
	"http.verify_ssl":      true,
	"http.rate_limit":      0,
	"queue.connection":     ConnectionDefault,
	"queue.name":           "n8n",
	"queue.redis_addr":     "",
	"queue.workers":        1,
	"events.enabled":       true,
	"events.kafka_brokers": []string{},
	"events.kafka_topic":   "",
	"logging.enabled":      true,
	"logging.level":        "info",
	"logging.channel":      "default",
	"logging.format":       "console",
}

type loaderOptions struct {
	configFile string
	envFile    string
}

// Option configures Load.
type Option func(*loaderOptions)

// WithConfigFile reads settings from a YAML, JSON or TOML file.
func WithConfigFile(path string) Option {
	return func(o *loaderOptions) { o.configFile = path }
}

// WithEnvFile reads N8N_* variables from a .env file. Variables already set
// in the process environment win.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) { o.envFile = path }
}

// Load reads and validates the configuration.
func Load(opts ...Option) (*Config, error) {
	var lo loaderOptions
	for _, opt := range opts {
		opt(&lo)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if lo.configFile != "" {
		v.SetConfigFile(lo.configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", lo.configFile)
		}
	}

	if lo.envFile != "" {
		if err := applyEnvFile(v, lo.envFile); err != nil {
			return nil, err
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to decode configuration")
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// EnvName returns the environment variable read for key.
func EnvName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// applyEnvFile copies known N8N_* entries of a .env file into v unless the
// process environment already defines them.
func applyEnvFile(v *viper.Viper, path string) error {
	entries, err := godotenv.Read(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read env file %s", path)
	}

	for key := range defaults {
		name := EnvName(key)

		value, ok := entries[name]
		if !ok {
			continue
		}
		if _, set := os.LookupEnv(name); set {
			continue
		}

		v.Set(key, value)
	}

	return nil
}

// normalize lower-cases the enumerated settings, which are matched
// case-insensitively everywhere they are consumed.
func (c *Config) normalize() {
	for _, field := range []*string{
		&c.DefaultStrategy,
		&c.Queue.Connection,
		&c.Logging.Level,
		&c.Logging.Format,
	} {
		*field = strings.ToLower(strings.TrimSpace(*field))
	}
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	var msgs []string

	err := validator.New(validator.WithRequiredStructEnabled()).Struct(c)
	if err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return errors.Wrap(err, "invalid configuration")
		}

		for _, fe := range verrs {
			msgs = append(msgs, fieldMessage(fe))
		}
	}

	if len(c.Events.KafkaBrokers) > 0 && c.Events.KafkaTopic == "" {
		msgs = append(msgs, "Config.Events.KafkaTopic is required when Kafka brokers are set")
	}

	if len(msgs) == 0 {
		return nil
	}

	return errors.Newf("invalid configuration: %s", strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.StructNamespace()

	switch fe.Tag() {
	case "required", "required_if":
		return field + " is required"
	case "oneof":
		return field + " must be one of [" + fe.Param() + "]"
	case "gte":
		return field + " must be >= " + fe.Param()
	case "url":
		return field + " must be a valid URL"
	default:
		return field + " failed " + fe.Tag()
	}
}

// TimeoutDuration returns the HTTP timeout.
func (c *Config) TimeoutDuration() time.Duration {
	return time.Duration(c.HTTP.Timeout) * time.Second
}

// RetrySleepDuration returns the delay between retries.
func (c *Config) RetrySleepDuration() time.Duration {
	return time.Duration(c.HTTP.RetrySleep) * time.Millisecond
}

// LogLevel returns the parsed logging level.
func (c *Config) LogLevel() observability.Level {
	level, err := observability.ParseLevel(c.Logging.Level)
	if err != nil {
		return observability.LevelInfo
	}

	return level
}
