// Package testutil provides common testing utilities and helpers.
package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// APIKeyHeader mirrors the header the client sends the n8n API key in.
const APIKeyHeader = "X-N8N-API-KEY"

// NewMockServer creates a test HTTP server with predefined response.
// It validates the request path and both credential headers, then returns the specified response.
func NewMockServer(t *testing.T, expectedPath, apiKey, responseBody string, statusCode int) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, expectedPath, r.URL.Path, "Request path should match expected")

		if apiKey != "" {
			assert.Equal(t, apiKey, r.Header.Get(APIKeyHeader), "X-N8N-API-KEY header should be set")
			assert.Equal(t, "Bearer "+apiKey, r.Header.Get("Authorization"), "Bearer token should be set")
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		_, err := w.Write([]byte(responseBody))
		require.NoError(t, err, "Failed to write response body")
	}))
}

// NewMockServerWithHandler creates a test HTTP server with custom handler.
// Use this for more complex test scenarios that need custom request handling.
func NewMockServerWithHandler(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(handler)
}

// NewMockServerMulti creates a test HTTP server with multiple route handlers.
// The handlers map keys are "METHOD /path" or a bare path matching any method.
func NewMockServerMulti(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler, ok := handlers[r.Method+" "+r.URL.Path]
		if !ok {
			handler, ok = handlers[r.URL.Path]
		}
		if !ok {
			t.Errorf("Unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		handler(w, r)
	}))
}

// MockResponse is one canned reply of a sequence server.
type MockResponse struct {
	Body       string
	StatusCode int
	Header     map[string]string
}

// NewMockServerSequence creates a test server that returns responses in sequence.
// Each call to the server returns the next response in the slice.
// Useful for testing retry logic.
func NewMockServerSequence(t *testing.T, responses []MockResponse) *httptest.Server {
	t.Helper()

	var mu sync.Mutex
	callCount := 0

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		if callCount >= len(responses) {
			mu.Unlock()
			t.Errorf("More requests than configured responses (got %d requests, have %d responses)",
				callCount+1, len(responses))
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		resp := responses[callCount]
		callCount++
		mu.Unlock()

		for k, v := range resp.Header {
			w.Header().Set(k, v)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(resp.StatusCode)
		_, err := w.Write([]byte(resp.Body))
		require.NoError(t, err, "Failed to write response body")
	}))
}

// RecordedRequest is a request captured by a recording server.
type RecordedRequest struct {
	Method   string
	Path     string
	RawQuery string
	Header   http.Header
	Body     []byte
}

// Recorder captures every request a recording server receives.
type Recorder struct {
	mu       sync.Mutex
	requests []RecordedRequest
}

// Requests returns a copy of the captured requests in arrival order.
func (r *Recorder) Requests() []RecordedRequest {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]RecordedRequest, len(r.requests))
	copy(out, r.requests)

	return out
}

// Last returns the most recent request. It fails the test when nothing was captured.
func (r *Recorder) Last(t *testing.T) RecordedRequest {
	t.Helper()

	reqs := r.Requests()
	require.NotEmpty(t, reqs, "no requests recorded")

	return reqs[len(reqs)-1]
}

// Count returns how many requests were captured.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.requests)
}

// NewRecordingServer creates a test server that records each request and
// replies with the given status and body.
func NewRecordingServer(t *testing.T, statusCode int, responseBody string) (*httptest.Server, *Recorder) {
	t.Helper()

	rec := &Recorder{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err, "Failed to read request body")

		rec.mu.Lock()
		rec.requests = append(rec.requests, RecordedRequest{
			Method:   r.Method,
			Path:     r.URL.Path,
			RawQuery: r.URL.RawQuery,
			Header:   r.Header.Clone(),
			Body:     body,
		})
		rec.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		_, _ = w.Write([]byte(responseBody))
	}))

	return server, rec
}
