// Package observability provides interfaces for logging and metrics collection
// in the go-n8n library.
//
// This package defines standard interfaces that allow users to integrate their
// own logging and metrics implementations with the n8n API client.
//
// # Logger Interface
//
// The Logger interface supports structured logging with key-value pairs:
//
//	logger := observability.NewConsoleLogger(os.Stderr, observability.LevelDebug)
//	client, err := n8n.NewWithConfig(&n8n.ClientConfig{
//		BaseURL: "http://localhost:5678",
//		APIKey:  apiKey,
//		Logger:  logger,
//	})
//
// Supported log levels:
//   - Debug: Detailed diagnostic information
//   - Info: General informational messages
//   - Warn: Warning messages for potentially problematic situations
//   - Error: Error messages for failures
//
// When the level is chosen by configuration (for example the per-request log
// line written by the client), use ParseLevel and Log.
//
// # MetricsRecorder Interface
//
// The MetricsRecorder interface tracks transport metrics:
//   - HTTP request count, status codes, and duration
//   - Retry attempts for failed requests
//   - Rate limiting events and wait times
//   - Error occurrences by type
//
// Request lifecycle metrics (sent, received, failed, average latency) are
// collected by observers in the observer package instead.
//
// # Default Behavior
//
// If no logger or metrics recorder is provided, the client uses no-op
// implementations that discard all events.
package observability
