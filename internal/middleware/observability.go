package middleware

import (
	"net/http"
	"regexp"
	"sync"
	"time"

	"github.com/lexfrei/go-n8n/observability"
)

// Observability returns a middleware that logs and records metrics for HTTP requests.
// It sits outside retries, so one record covers all attempts of a call.
func Observability(logger observability.Logger, metrics observability.MetricsRecorder) func(http.RoundTripper) http.RoundTripper {
	if logger == nil {
		logger = observability.NoopLogger()
	}
	if metrics == nil {
		metrics = observability.NoopMetricsRecorder()
	}

	return func(next http.RoundTripper) http.RoundTripper {
		return &observabilityTransport{
			next:    next,
			logger:  logger,
			metrics: metrics,
		}
	}
}

type observabilityTransport struct {
	next    http.RoundTripper
	logger  observability.Logger
	metrics observability.MetricsRecorder
}

func (t *observabilityTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	urlStr := req.URL.String()
	path := normalizePath(req.URL.Path)

	t.logger.Debug("http request started",
		observability.Field{Key: "method", Value: req.Method},
		observability.Field{Key: "url", Value: urlStr},
	)

	resp, err := t.next.RoundTrip(req)

	duration := time.Since(start)

	if err != nil {
		t.logger.Error("http request failed",
			observability.Field{Key: "method", Value: req.Method},
			observability.Field{Key: "url", Value: urlStr},
			observability.Field{Key: "duration", Value: duration},
			observability.Field{Key: "error", Value: err.Error()},
		)

		t.metrics.RecordError("http_request", "NetworkError")

		//nolint:wrapcheck // Observability middleware logs error but passes it through unchanged
		return nil, err
	}

	fields := []observability.Field{
		{Key: "method", Value: req.Method},
		{Key: "url", Value: urlStr},
		{Key: "status", Value: resp.StatusCode},
		{Key: "duration", Value: duration},
	}

	if resp.StatusCode >= http.StatusBadRequest {
		t.logger.Warn("http request completed with error", fields...)
	} else {
		t.logger.Debug("http request completed", fields...)
	}

	t.metrics.RecordHTTPRequest(req.Method, path, resp.StatusCode, duration)

	return resp, nil
}

var (
	// resourceIDPattern matches the identifier segment that follows an n8n
	// resource collection: /workflows/{id}, /executions/{id}, /users/{idOrEmail}.
	resourceIDPattern = regexp.MustCompile(`/(workflows|credentials|executions|users|tags|variables|projects)/([^/]+)`)
	// schemaTypePattern matches /credentials/schema/{credentialTypeName}.
	schemaTypePattern = regexp.MustCompile(`/credentials/schema/[^/]+`)

	// normalizedPathCache caches normalized paths; most traffic hits a small set of endpoints.
	normalizedPathCache sync.Map
)

// normalizePath replaces identifiers in n8n API paths with placeholders to keep
// metric label cardinality bounded.
//
// Examples:
//   - /api/v1/workflows/2tUt1wbLX592XDdX/activate → /api/v1/workflows/:id/activate
//   - /api/v1/users/jane@example.com/role → /api/v1/users/:id/role
//   - /api/v1/credentials/schema/githubApi → /api/v1/credentials/schema/:type
func normalizePath(path string) string {
	if cached, ok := normalizedPathCache.Load(path); ok {
		//nolint:forcetypeassert // Cache only stores strings, type assertion is safe
		return cached.(string)
	}

	normalized := schemaTypePattern.ReplaceAllString(path, "/credentials/schema/:type")
	normalized = resourceIDPattern.ReplaceAllStringFunc(normalized, func(match string) string {
		sub := resourceIDPattern.FindStringSubmatch(match)
		if sub[2] == "schema" || sub[2] == ":type" {
			return match
		}
		return "/" + sub[1] + "/:id"
	})

	normalizedPathCache.Store(path, normalized)

	return normalized
}
