package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/lexfrei/go-n8n/observability"
)

// MessageWriter is the subset of *kafka.Writer used by KafkaPublisher.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// KafkaConfig configures NewKafkaPublisher.
type KafkaConfig struct {
	Brokers []string
	Topic   string
	// WriteTimeout bounds a single batch write. Zero uses the kafka-go default.
	WriteTimeout time.Duration
}

// KafkaPublisher writes events as JSON records to a Kafka topic.
// Records are keyed by request URL so calls to one endpoint stay ordered.
type KafkaPublisher struct {
	writer MessageWriter
	logger observability.Logger
}

// NewKafkaPublisher returns a publisher backed by an asynchronous kafka-go
// writer. Write errors are logged.
func NewKafkaPublisher(cfg KafkaConfig, logger observability.Logger) (*KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka publisher requires at least one broker")
	}
	if cfg.Topic == "" {
		return nil, errors.New("kafka publisher requires a topic")
	}
	if logger == nil {
		logger = observability.NoopLogger()
	}

	logger = logger.With(observability.Field{Key: "topic", Value: cfg.Topic})

	writer := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireOne,
		WriteTimeout: cfg.WriteTimeout,
		Async:        true,
		Completion: func(msgs []kafkago.Message, err error) {
			if err != nil {
				logger.Error("kafka event delivery failed",
					observability.Field{Key: "messages", Value: len(msgs)},
					observability.Field{Key: "error", Value: err.Error()},
				)
			}
		},
	}

	return NewKafkaPublisherWithWriter(writer, logger), nil
}

// NewKafkaPublisherWithWriter wraps an existing writer.
func NewKafkaPublisherWithWriter(w MessageWriter, logger observability.Logger) *KafkaPublisher {
	if logger == nil {
		logger = observability.NoopLogger()
	}

	return &KafkaPublisher{writer: w, logger: logger}
}

// Publish implements Publisher.
func (p *KafkaPublisher) Publish(ctx context.Context, event Event) {
	msg, err := encodeMessage(event)
	if err != nil {
		p.logger.Error("failed to encode event",
			observability.Field{Key: "event", Value: event.Name()},
			observability.Field{Key: "error", Value: err.Error()},
		)
		return
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("failed to publish event",
			observability.Field{Key: "event", Value: event.Name()},
			observability.Field{Key: "error", Value: err.Error()},
		)
	}
}

// Close flushes pending records and releases the writer.
func (p *KafkaPublisher) Close() error {
	return errors.Wrap(p.writer.Close(), "closing kafka writer")
}

func encodeMessage(event Event) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, errors.Wrap(err, "marshal event")
	}

	return kafkago.Message{
		Key:   []byte(keyOf(event)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "content-type", Value: []byte("application/json")},
			{Key: "event", Value: []byte(event.Name())},
		},
	}, nil
}

func keyOf(event Event) string {
	switch e := event.(type) {
	case RequestSent:
		return e.URL
	case ResponseReceived:
		return e.URL
	case RequestFailed:
		return e.URL
	default:
		return event.Name()
	}
}
