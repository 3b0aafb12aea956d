package middleware_test

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexfrei/go-n8n/internal/middleware"
	"github.com/lexfrei/go-n8n/observability"
)

func TestAuth(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Custom-Token"); got != "test-key-123" {
			t.Errorf("X-Custom-Token = %s, want %s", got, "test-key-123")
		}

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	transport := middleware.Auth("X-Custom-Token", "test-key-123")(http.DefaultTransport)

	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
	resp, err := transport.RoundTrip(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPIKey(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer n8n_api_secret", r.Header.Get("Authorization"))
		assert.Equal(t, "n8n_api_secret", r.Header.Get(middleware.APIKeyHeader))

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	transport := middleware.APIKey("n8n_api_secret")(http.DefaultTransport)

	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
	resp, err := transport.RoundTrip(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPIKeyReplacesCallerCredentials(t *testing.T) {
	t.Parallel()

	var got http.Header
	base := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		got = req.Header.Clone()
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
	})

	transport := middleware.APIKey("n8n_api_secret")(base)

	req, _ := http.NewRequest(http.MethodGet, "http://n8n.invalid/api/v1/workflows", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	req.Header.Set(middleware.APIKeyHeader, "stale")
	req.Header.Set("Accept", "application/json")

	resp, err := transport.RoundTrip(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, []string{"Bearer n8n_api_secret"}, got.Values("Authorization"))
	assert.Equal(t, []string{"n8n_api_secret"}, got.Values(middleware.APIKeyHeader))
	assert.Equal(t, "application/json", got.Get("Accept"))
}

func TestAuthDoesNotModifyOriginalRequest(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	transport := middleware.APIKey("test-key")(http.DefaultTransport)

	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
	originalHeaders := len(req.Header)

	resp, err := transport.RoundTrip(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Len(t, req.Header, originalHeaders, "original request was modified")
	assert.Empty(t, req.Header.Get(middleware.APIKeyHeader))
}

func TestTLSConfig(t *testing.T) {
	t.Parallel()

	config := &tls.Config{
		MinVersion: tls.VersionTLS12,
	}

	transport := middleware.TLSConfig(config)(http.DefaultTransport)

	httpTransport, ok := transport.(*http.Transport)
	require.True(t, ok, "transport is not *http.Transport")
	require.NotNil(t, httpTransport.TLSClientConfig)
	assert.Equal(t, uint16(tls.VersionTLS12), httpTransport.TLSClientConfig.MinVersion)

	// The shared default transport must stay untouched
	//nolint:forcetypeassert // DefaultTransport is always *http.Transport
	assert.NotSame(t, http.DefaultTransport.(*http.Transport), httpTransport)
}

func TestTLSConfigNonTransport(t *testing.T) {
	t.Parallel()

	base := roundTripFunc(func(*http.Request) (*http.Response, error) { return nil, nil })

	wrapped := middleware.TLSConfig(middleware.InsecureSkipVerify())(base)

	_, ok := wrapped.(*http.Transport)
	assert.False(t, ok)
}

func TestTLSVerify(t *testing.T) {
	t.Parallel()

	t.Run("verification on keeps transport", func(t *testing.T) {
		t.Parallel()

		base := http.DefaultTransport.(*http.Transport).Clone() //nolint:forcetypeassert // DefaultTransport is always *http.Transport

		got := middleware.TLSVerify(true)(base)

		assert.Same(t, base, got)
	})

	t.Run("verification off skips certificate checks", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		transport := middleware.TLSVerify(false)(http.DefaultTransport)

		httpTransport, ok := transport.(*http.Transport)
		require.True(t, ok)
		assert.True(t, httpTransport.TLSClientConfig.InsecureSkipVerify)

		req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
		resp, err := transport.RoundTrip(req)
		require.NoError(t, err)
		resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestInsecureSkipVerify(t *testing.T) {
	t.Parallel()

	config := middleware.InsecureSkipVerify()

	require.NotNil(t, config)
	assert.True(t, config.InsecureSkipVerify)
}

func TestObservability(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	metrics := &countingMetrics{}

	transport := middleware.Observability(observability.NoopLogger(), metrics)(http.DefaultTransport)

	req, _ := http.NewRequest(http.MethodGet, server.URL+"/api/v1/workflows/abc123", nil)
	resp, err := transport.RoundTrip(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(1), metrics.requests.Load())
	assert.Equal(t, "/api/v1/workflows/:id", metrics.lastPath.Load())
}

func TestObservabilityNetworkError(t *testing.T) {
	t.Parallel()

	metrics := &countingMetrics{}
	failing := roundTripFunc(func(*http.Request) (*http.Response, error) {
		return nil, assert.AnError
	})

	transport := middleware.Observability(nil, metrics)(failing)

	req, _ := http.NewRequest(http.MethodGet, "http://n8n.invalid/api/v1/workflows", nil)
	resp, err := transport.RoundTrip(req) //nolint:bodyclose // nil response on error
	require.ErrorIs(t, err, assert.AnError)
	assert.Nil(t, resp)
	assert.Equal(t, int32(1), metrics.errors.Load())
	assert.Equal(t, int32(0), metrics.requests.Load())
}

func TestObservabilityWithNilParams(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	transport := middleware.Observability(nil, nil)(http.DefaultTransport)

	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
	resp, err := transport.RoundTrip(req)
	require.NoError(t, err)
	resp.Body.Close()
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

type countingMetrics struct {
	requests   atomic.Int32
	retries    atomic.Int32
	rateLimits atomic.Int32
	errors     atomic.Int32
	lastPath   atomic.Value
}

func (m *countingMetrics) RecordHTTPRequest(_, path string, _ int, _ time.Duration) {
	m.requests.Add(1)
	m.lastPath.Store(path)
}

func (m *countingMetrics) RecordRetry(int, string) { m.retries.Add(1) }

func (m *countingMetrics) RecordRateLimit(string, time.Duration) { m.rateLimits.Add(1) }

func (m *countingMetrics) RecordError(string, string) { m.errors.Add(1) }
