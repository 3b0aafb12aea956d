package n8n

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/lexfrei/go-n8n/events"
	"github.com/lexfrei/go-n8n/internal/httpclient"
	"github.com/lexfrei/go-n8n/internal/middleware"
	"github.com/lexfrei/go-n8n/internal/ratelimit"
	"github.com/lexfrei/go-n8n/internal/response"
	"github.com/lexfrei/go-n8n/observability"
	"github.com/lexfrei/go-n8n/observer"
)

const (
	// APIPath is the path prefix of the n8n public REST API.
	APIPath = "/api/v1"

	// DefaultTimeout is the default HTTP client timeout.
	DefaultTimeout = 30 * time.Second
	// DefaultRetryTimes is the default number of retries after the first attempt.
	DefaultRetryTimes = 3
	// DefaultRetrySleep is the default delay between attempts.
	DefaultRetrySleep = 1000 * time.Millisecond
	// DefaultLogChannel is the channel name attached to request log lines.
	DefaultLogChannel = "default"

	redacted = "***"
)

// LoggingConfig controls the per-request log line.
type LoggingConfig struct {
	// Enabled turns on one log line per successful request.
	Enabled bool
	// Level is the severity of the log line.
	Level observability.Level
	// Channel is added to every log line as the "channel" field.
	Channel string
}

// ClientConfig holds configuration for the n8n API client.
type ClientConfig struct {
	// BaseURL is the n8n instance URL, e.g. https://n8n.example.com (required)
	BaseURL string

	// APIKey is the n8n public API key (required)
	APIKey string

	// Timeout bounds each call including retries (defaults to 30s, negative disables)
	Timeout time.Duration

	// RetryTimes is the number of retries after the first attempt (defaults to 3, negative disables)
	RetryTimes int

	// RetrySleep is the constant delay between attempts (defaults to 1s, negative means none)
	RetrySleep time.Duration

	// TLSVerify enables certificate verification (nil means true)
	TLSVerify *bool

	// RateLimitPerMinute throttles outgoing requests (0 means unlimited)
	RateLimitPerMinute int

	// EventsEnabled publishes request lifecycle events to Events
	EventsEnabled bool

	// Events receives lifecycle events (defaults to an in-process bus when EventsEnabled)
	Events events.Publisher

	// Logging configures the per-request log line
	Logging LoggingConfig

	// Logger for observability (optional, uses noop logger if nil)
	Logger observability.Logger

	// Metrics recorder for transport metrics (optional, uses noop recorder if nil)
	Metrics observability.MetricsRecorder

	// HTTPClient supplies the base transport (optional)
	HTTPClient *http.Client

	// UserAgent is sent with every request (optional)
	UserAgent string
}

// Client executes requests against the n8n public API and notifies observers
// about each call. It is safe for concurrent use.
type Client struct {
	baseURL   string
	http      *httpclient.Client
	header    http.Header
	envelope  map[string]string
	observers *observer.Registry

	eventsEnabled bool
	events        events.Publisher

	logging LoggingConfig
	logger  observability.Logger
}

// Compile-time check to ensure Client implements the API interface.
var _ API = (*Client)(nil)

// New creates a client for baseURL authenticated with apiKey, using default settings.
//
// Default settings:
//   - Timeout: 30 seconds
//   - Retries: 3, one second apart
//   - TLS verification: on
//
// For custom configuration, use NewWithConfig.
//
// Example:
//
//	client, err := n8n.New("https://n8n.example.com", "your-api-key")
func New(baseURL, apiKey string) (*Client, error) {
	return NewWithConfig(&ClientConfig{
		BaseURL: baseURL,
		APIKey:  apiKey,
	})
}

// NewWithConfig creates a client with custom configuration. The configuration
// is copied; later changes to cfg do not affect the client.
//
// Example:
//
//	verify := false
//	client, err := n8n.NewWithConfig(&n8n.ClientConfig{
//	    BaseURL:    "https://n8n.internal",
//	    APIKey:     "your-api-key",
//	    RetryTimes: 5,
//	    TLSVerify:  &verify,
//	    Logger:     myLogger,
//	})
func NewWithConfig(cfg *ClientConfig) (*Client, error) {
	if cfg == nil {
		return nil, &ConfigurationError{Field: "config", Message: "n8n client config is required"}
	}
	if cfg.BaseURL == "" {
		return nil, &ConfigurationError{Field: "base_url", Message: "n8n base URL is required"}
	}
	if cfg.APIKey == "" {
		return nil, &ConfigurationError{Field: "api_key", Message: "n8n API key is required"}
	}

	c := *cfg

	// Set defaults
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Timeout < 0 {
		c.Timeout = 0
	}
	if c.RetryTimes == 0 {
		c.RetryTimes = DefaultRetryTimes
	}
	if c.RetryTimes < 0 {
		c.RetryTimes = 0
	}
	if c.RetrySleep == 0 {
		c.RetrySleep = DefaultRetrySleep
	}
	if c.RetrySleep < 0 {
		c.RetrySleep = 0
	}
	if c.Logger == nil {
		c.Logger = observability.NoopLogger()
	}
	if c.Metrics == nil {
		c.Metrics = observability.NoopMetricsRecorder()
	}
	if c.Logging.Channel == "" {
		c.Logging.Channel = DefaultLogChannel
	}
	if c.EventsEnabled && c.Events == nil {
		c.Events = events.NewBus()
	}

	verify := c.TLSVerify == nil || *c.TLSVerify

	opts := []httpclient.Option{}
	if c.HTTPClient != nil {
		base := *c.HTTPClient
		opts = append(opts, httpclient.WithHTTPClient(&base))
	}
	opts = append(opts, httpclient.WithTransport(baseTransport(c.HTTPClient)))

	// Build middleware chain (applied in reverse order: last = innermost, applied first)
	// Order from outside to inside: Observability -> Auth -> RateLimit -> Retry -> TLS
	opts = append(opts,
		httpclient.WithTimeout(c.Timeout),
		httpclient.WithMiddleware(
			middleware.Observability(c.Logger, c.Metrics),
			middleware.APIKey(c.APIKey),
			middleware.RateLimit(middleware.RateLimitConfig{
				Limiter: ratelimit.NewRateLimiter(c.RateLimitPerMinute),
				Logger:  c.Logger,
				Metrics: c.Metrics,
			}),
			middleware.Retry(middleware.RetryConfig{
				MaxRetries: c.RetryTimes,
				Wait:       c.RetrySleep,
				Logger:     c.Logger,
				Metrics:    c.Metrics,
			}),
			middleware.TLSVerify(verify),
		),
	)

	header := http.Header{}
	header.Set("Accept", "application/json")
	header.Set("Content-Type", "application/json")
	if c.UserAgent != "" {
		header.Set("User-Agent", c.UserAgent)
	}

	envelope := response.FlattenHeaders(header)
	envelope["Authorization"] = "Bearer " + redacted
	envelope[middleware.APIKeyHeader] = redacted

	return &Client{
		baseURL:       c.BaseURL,
		http:          httpclient.New(opts...),
		header:        header,
		envelope:      envelope,
		observers:     observer.NewRegistry(),
		eventsEnabled: c.EventsEnabled,
		events:        c.Events,
		logging:       c.Logging,
		logger:        c.Logger.With(observability.Field{Key: "channel", Value: c.Logging.Channel}),
	}, nil
}

// BaseURL returns the configured instance URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// AddObserver registers o for request lifecycle notifications.
func (c *Client) AddObserver(o observer.Observer) {
	c.observers.Add(o)
}

// RemoveObserver unregisters o. Removing an unknown observer is a no-op.
func (c *Client) RemoveObserver(o observer.Observer) {
	c.observers.Remove(o)
}

// Observers returns the client's observer registry.
func (c *Client) Observers() *observer.Registry {
	return c.observers
}

// baseTransport returns the round tripper the middleware chain wraps: the
// caller's transport when one is set, otherwise a private clone of
// http.DefaultTransport so TLS settings never reach the shared default.
func baseTransport(hc *http.Client) http.RoundTripper {
	if hc != nil && hc.Transport != nil {
		return hc.Transport
	}

	if t, ok := http.DefaultTransport.(*http.Transport); ok {
		return t.Clone()
	}

	return http.DefaultTransport
}

// Events returns the publisher receiving lifecycle events, or nil when events are disabled.
//
//nolint:ireturn // The publisher is supplied by the caller
func (c *Client) Events() events.Publisher {
	if !c.eventsEnabled {
		return nil
	}

	return c.events
}

// Execute sends a request to {BaseURL}/api/v1/{endpoint}.
//
// GET sends data as query parameters; other methods send it as a JSON body
// when it is non-empty. The decoded response object is returned. A JSON array
// response is returned as {"data": [...]}.
//
// Non-success statuses and unsupported methods yield *APIError. Transport
// failures are returned as produced by the transport. Either way observers
// and events are notified before Execute returns.
func (c *Client) Execute(ctx context.Context, method, endpoint string, data map[string]any) (map[string]any, error) {
	return c.execute(ctx, method, endpoint, data, data)
}

// ExecuteList is like Execute but sends a JSON array body. Observers see the
// items as the payload's "data" entry.
func (c *Client) ExecuteList(ctx context.Context, method, endpoint string, items []map[string]any) (map[string]any, error) {
	return c.execute(ctx, method, endpoint, map[string]any{"data": items}, items)
}

func (c *Client) execute(ctx context.Context, method, endpoint string, payload map[string]any, body any) (map[string]any, error) {
	target := buildURL(c.baseURL, endpoint)
	verb := strings.ToUpper(method)
	start := time.Now()

	if payload == nil {
		payload = map[string]any{}
	}

	req := observer.RequestEnvelope{
		ID:        uuid.NewString(),
		Method:    verb,
		URL:       target,
		Headers:   maps.Clone(c.envelope),
		Payload:   payload,
		Timestamp: start,
	}

	c.observers.NotifyRequestSent(ctx, req)
	c.publish(ctx, events.RequestSent{
		Method:    verb,
		URL:       target,
		Headers:   req.Headers,
		Payload:   payload,
		Timestamp: start,
	})

	resp, err := c.roundTrip(ctx, verb, target, payload, body)
	duration := time.Since(start)

	if err != nil {
		c.observers.NotifyRequestFailed(ctx, observer.FailureEnvelope{
			ID:        req.ID,
			Method:    verb,
			URL:       target,
			Headers:   req.Headers,
			Payload:   payload,
			Err:       err,
			Duration:  duration,
			Timestamp: start,
		})
		c.publish(ctx, events.RequestFailed{
			Method:    verb,
			URL:       target,
			Headers:   req.Headers,
			Payload:   payload,
			Err:       err,
			Timestamp: start,
		})

		return nil, err
	}

	headers := response.FlattenHeaders(resp.Header)

	c.observers.NotifyResponseReceived(ctx, observer.ResponseEnvelope{
		ID:         req.ID,
		Method:     verb,
		URL:        target,
		StatusCode: resp.StatusCode,
		Headers:    headers,
		Body:       resp.Data,
		Duration:   duration,
		Timestamp:  start,
	})
	c.publish(ctx, events.ResponseReceived{
		Method:     verb,
		URL:        target,
		StatusCode: resp.StatusCode,
		Headers:    headers,
		Response:   resp.Data,
		Duration:   duration,
		Timestamp:  start,
	})
	c.logRequest(verb, target, resp.StatusCode, duration)

	return resp.Data, nil
}

type decodedResponse struct {
	StatusCode int
	Header     http.Header
	Data       map[string]any
}

// roundTrip performs the HTTP exchange and classifies the status.
func (c *Client) roundTrip(ctx context.Context, verb, target string, query map[string]any, body any) (*decodedResponse, error) {
	var payload []byte

	switch verb {
	case http.MethodGet:
		if len(query) > 0 {
			target += "?" + encodeQuery(query)
		}
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		if !isEmptyBody(body) {
			encoded, err := json.Marshal(body)
			if err != nil {
				return nil, errors.Wrap(err, "failed to encode request body")
			}
			payload = encoded
		}
	default:
		return nil, &APIError{
			Message:      "Unsupported HTTP method: " + verb,
			StatusCode:   http.StatusBadRequest,
			ResponseBody: map[string]any{},
		}
	}

	resp, err := c.http.Send(ctx, verb, target, c.header, payload)
	if err != nil {
		//nolint:wrapcheck // Transport failures are returned unchanged
		return nil, err
	}

	data := response.Decode(resp.Body)
	if !response.Successful(resp.StatusCode) {
		return nil, &APIError{
			Message:      response.ErrorMessage(data),
			StatusCode:   resp.StatusCode,
			ResponseBody: data,
		}
	}

	return &decodedResponse{StatusCode: resp.StatusCode, Header: resp.Header, Data: data}, nil
}

func (c *Client) publish(ctx context.Context, event events.Event) {
	if !c.eventsEnabled || c.events == nil {
		return
	}

	c.events.Publish(ctx, event)
}

// logRequest writes the per-request log line. A misbehaving logger never fails the call.
func (c *Client) logRequest(method, target string, status int, duration time.Duration) {
	if !c.logging.Enabled {
		return
	}

	defer func() {
		_ = recover()
	}()

	observability.Log(c.logger, c.logging.Level, "n8n API request",
		observability.Field{Key: "method", Value: method},
		observability.Field{Key: "url", Value: target},
		observability.Field{Key: "status", Value: status},
		observability.Field{Key: "duration", Value: duration.Seconds()},
	)
}

// buildURL joins base and endpoint under the API prefix. Exactly one trailing
// slash is trimmed from base and one leading slash from endpoint.
func buildURL(base, endpoint string) string {
	base = strings.TrimSuffix(base, "/")
	endpoint = strings.TrimPrefix(endpoint, "/")

	return base + APIPath + "/" + endpoint
}

func isEmptyBody(body any) bool {
	switch v := body.(type) {
	case nil:
		return true
	case map[string]any:
		return len(v) == 0
	case []map[string]any:
		return len(v) == 0
	default:
		return false
	}
}

// encodeQuery renders query parameters in key order. Nil values are skipped,
// booleans become "true"/"false" and slices repeat the key.
func encodeQuery(params map[string]any) string {
	values := url.Values{}

	for key, value := range params {
		switch v := value.(type) {
		case nil:
		case []string:
			for _, item := range v {
				values.Add(key, item)
			}
		case []any:
			for _, item := range v {
				values.Add(key, queryValue(item))
			}
		default:
			values.Add(key, queryValue(v))
		}
	}

	return values.Encode()
}

func queryValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}
