package config

import (
	"io"

	"github.com/cockroachdb/errors"
	goredis "github.com/redis/go-redis/v9"

	n8n "github.com/lexfrei/go-n8n"
	"github.com/lexfrei/go-n8n/events"
	"github.com/lexfrei/go-n8n/observability"
	"github.com/lexfrei/go-n8n/queue"
	"github.com/lexfrei/go-n8n/strategy"
)

// Logger returns a zerolog-backed logger writing to w in the configured format.
//
//nolint:ireturn // Factory function must return interface for dependency injection pattern
func (c *Config) Logger(w io.Writer) observability.Logger {
	if c.Logging.Format == "json" {
		return observability.NewJSONLogger(w, c.LogLevel())
	}

	return observability.NewConsoleLogger(w, c.LogLevel())
}

// ClientConfig maps the configuration onto n8n.ClientConfig. publisher may
// be nil, in which case the client uses its in-process bus when events are enabled.
func (c *Config) ClientConfig(logger observability.Logger, publisher events.Publisher) *n8n.ClientConfig {
	verify := c.HTTP.VerifySSL

	// Zero means "off" here, while n8n.ClientConfig reads zero as "default"
	// and negative as "off".
	retries := c.HTTP.RetryTimes
	if retries == 0 {
		retries = -1
	}
	timeout := c.TimeoutDuration()
	if timeout == 0 {
		timeout = -1
	}
	sleep := c.RetrySleepDuration()
	if sleep == 0 {
		sleep = -1
	}

	return &n8n.ClientConfig{
		BaseURL:            c.BaseURL,
		APIKey:             c.APIKey,
		Timeout:            timeout,
		RetryTimes:         retries,
		RetrySleep:         sleep,
		TLSVerify:          &verify,
		RateLimitPerMinute: c.HTTP.RateLimit,
		EventsEnabled:      c.Events.Enabled,
		Events:             publisher,
		Logging: n8n.LoggingConfig{
			Enabled: c.Logging.Enabled,
			Level:   c.LogLevel(),
			Channel: c.Logging.Channel,
		},
		Logger: logger,
	}
}

// KafkaPublisher returns the Kafka event sink, or nil when no brokers are configured.
func (c *Config) KafkaPublisher(logger observability.Logger) (*events.KafkaPublisher, error) {
	if len(c.Events.KafkaBrokers) == 0 {
		return nil, nil //nolint:nilnil // Kafka is optional
	}

	//nolint:wrapcheck // Constructor errors are descriptive
	return events.NewKafkaPublisher(events.KafkaConfig{
		Brokers: c.Events.KafkaBrokers,
		Topic:   c.Events.KafkaTopic,
	}, logger)
}

// NewQueue returns the configured queue backend. Connection "redis" uses
// go-redis against RedisAddr; anything else is an in-memory queue.
//
//nolint:ireturn // Backend is selected by configuration
func (c *Config) NewQueue() (queue.Queue, error) {
	if c.Queue.Connection != ConnectionRedis {
		return queue.NewMemoryQueue(queue.DefaultCapacity), nil
	}

	if c.Queue.RedisAddr == "" {
		return nil, errors.New("queue.redis_addr is required for the redis connection")
	}

	rdb := goredis.NewClient(&goredis.Options{Addr: c.Queue.RedisAddr})

	return queue.NewRedisQueue(rdb, queue.RedisConfig{Queue: c.Queue.Name}), nil
}

// Strategy builds the default strategy. enqueuer is only used by "queued".
//
//nolint:ireturn // Strategy is selected by configuration
func (c *Config) Strategy(reg *strategy.Registry, enqueuer strategy.Enqueuer, logger observability.Logger) (strategy.Strategy, error) {
	opts := []strategy.Option{
		strategy.WithRegistry(reg),
		strategy.WithQueueName(c.Queue.Name),
		strategy.WithLogger(logger),
	}
	if enqueuer != nil {
		opts = append(opts, strategy.WithEnqueuer(enqueuer))
	}

	//nolint:wrapcheck // Factory errors are descriptive
	return strategy.New(c.DefaultStrategy, opts...)
}
