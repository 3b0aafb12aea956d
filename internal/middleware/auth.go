package middleware

import (
	"maps"
	"net/http"
)

// APIKeyHeader is the header n8n reads the public API key from.
const APIKeyHeader = "X-N8N-API-KEY"

// Auth returns a middleware that sets one header on every request.
func Auth(headerName, headerValue string) func(http.RoundTripper) http.RoundTripper {
	return func(next http.RoundTripper) http.RoundTripper {
		return &authTransport{
			next:  next,
			name:  headerName,
			value: headerValue,
		}
	}
}

// APIKey returns a middleware that attaches the static credential both as a
// bearer token and as the n8n API key header.
func APIKey(key string) func(http.RoundTripper) http.RoundTripper {
	bearer := Auth("Authorization", "Bearer "+key)
	apiKey := Auth(APIKeyHeader, key)

	return func(next http.RoundTripper) http.RoundTripper {
		return bearer(apiKey(next))
	}
}

type authTransport struct {
	next  http.RoundTripper
	name  string
	value string
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone request to avoid modifying original
	req = cloneRequest(req)

	req.Header.Set(t.name, t.value)

	//nolint:wrapcheck // Middleware passes through errors from next handler in chain
	return t.next.RoundTrip(req)
}

// cloneRequest creates a shallow copy of the request with a cloned header map.
func cloneRequest(req *http.Request) *http.Request {
	r := new(http.Request)
	*r = *req
	r.Header = make(http.Header, len(req.Header))
	maps.Copy(r.Header, req.Header)
	return r
}
