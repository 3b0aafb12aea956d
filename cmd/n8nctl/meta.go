package main

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/mitchellh/cli"

	n8n "github.com/lexfrei/go-n8n"
	"github.com/lexfrei/go-n8n/config"
	"github.com/lexfrei/go-n8n/events"
	"github.com/lexfrei/go-n8n/observability"
	"github.com/lexfrei/go-n8n/observer"
	"github.com/lexfrei/go-n8n/queue"
	"github.com/lexfrei/go-n8n/strategy"
)

// meta carries what every command needs.
type meta struct {
	ui        cli.Ui
	logOutput io.Writer
}

// session is one configured client with its strategy and collaborators.
type session struct {
	cfg      *config.Config
	logger   observability.Logger
	client   *n8n.Client
	registry *strategy.Registry
	queue    queue.Queue
	strategy strategy.Strategy
	closers  []func() error
}

func loadConfig() (*config.Config, error) {
	var opts []config.Option

	if path := os.Getenv("N8N_CONFIG_FILE"); path != "" {
		opts = append(opts, config.WithConfigFile(path))
	}
	if _, err := os.Stat(".env"); err == nil {
		opts = append(opts, config.WithEnvFile(".env"))
	}

	//nolint:wrapcheck // Configuration errors are descriptive
	return config.Load(opts...)
}

// open builds a client from the environment. Extra observers are attached
// before any request is made.
func (m *meta) open(extra ...observer.Observer) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg, logger: cfg.Logger(m.logOutput), registry: strategy.NewRegistry()}

	var publisher events.Publisher
	kafka, err := cfg.KafkaPublisher(s.logger)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Kafka publisher")
	}
	if kafka != nil {
		publisher = events.Multi{events.NewBus(), kafka}
		s.closers = append(s.closers, kafka.Close)
	}

	client, err := n8n.NewWithConfig(cfg.ClientConfig(s.logger, publisher))
	if err != nil {
		_ = s.Close()
		return nil, errors.Wrap(err, "failed to create client")
	}
	s.client = client

	client.AddObserver(observer.NewLoggingObserver(s.logger))
	for _, o := range extra {
		client.AddObserver(o)
	}
	client.RegisterOperations(s.registry)

	if cfg.DefaultStrategy == strategy.NameQueued {
		q, err := cfg.NewQueue()
		if err != nil {
			_ = s.Close()
			return nil, errors.Wrap(err, "failed to create queue")
		}
		s.queue = q
	}

	var enqueuer strategy.Enqueuer
	if s.queue != nil {
		enqueuer = s.queue
	}

	st, err := cfg.Strategy(s.registry, enqueuer, s.logger)
	if err != nil {
		_ = s.Close()
		return nil, errors.Wrap(err, "failed to create strategy")
	}
	s.strategy = st

	if a, ok := st.(*strategy.Async); ok {
		s.closers = append(s.closers, func() error { return a.Shutdown(context.Background()) })
	}

	return s, nil
}

// Close releases the session's collaborators in reverse order.
func (s *session) Close() error {
	var errs error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = errors.CombineErrors(errs, s.closers[i]())
	}

	return errs
}

// dispatch runs one API call under the configured strategy. Async results
// are awaited so the command can print them.
func (s *session) dispatch(ctx context.Context, method, endpoint string, data map[string]any) (any, error) {
	op, err := n8n.RequestOperation(method, endpoint, data)
	if err != nil {
		//nolint:wrapcheck // Encoding errors come straight from encoding/json
		return nil, err
	}

	result, err := s.strategy.Execute(ctx, op)
	if err != nil {
		//nolint:wrapcheck // Strategy errors carry the API error unchanged
		return nil, err
	}

	if async, ok := result.(strategy.AsyncResult); ok {
		if future, ok := async.Future(); ok {
			//nolint:wrapcheck // Strategy errors carry the API error unchanged
			return future.Wait(ctx)
		}
	}

	return result, nil
}

// output prints v as indented JSON.
func (m *meta) output(v any) int {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		m.ui.Error("failed to encode output: " + err.Error())
		return 1
	}

	m.ui.Output(string(data))

	return 0
}

// fail reports err, adding the HTTP status for API errors.
func (m *meta) fail(err error) int {
	if apiErr, ok := n8n.AsAPIError(err); ok {
		m.ui.Error(apiErr.Error())
		return 2
	}

	m.ui.Error(err.Error())

	return 1
}
