package httpclient

import (
	"net/http"
	"time"
)

// Option configures a Client built by New.
type Option func(*Client)

// WithHTTPClient replaces the base http.Client. The client is used as given,
// so callers sharing it elsewhere should pass a copy. Nil keeps the default
// client with DefaultTimeout.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.base = client
		}
	}
}

// WithTimeout bounds each Send, retries and rate-limit waits included.
// Zero disables the timeout; negative values keep the current one.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout >= 0 {
			c.base.Timeout = timeout
		}
	}
}

// WithTransport sets the innermost round tripper. Middleware wraps it, and the
// TLS layer can only adjust an *http.Transport. Nil keeps the base client's
// transport, falling back to http.DefaultTransport.
func WithTransport(transport http.RoundTripper) Option {
	return func(c *Client) {
		if transport != nil {
			c.base.Transport = transport
		}
	}
}

// WithMiddleware appends layers to the chain. Earlier layers wrap later ones,
// so WithMiddleware(A, B, C) sends a request through A, B, C and then the
// transport. The n8n client lists observability first and the TLS layer last.
func WithMiddleware(middleware ...Middleware) Option {
	return func(c *Client) {
		c.middleware = append(c.middleware, middleware...)
	}
}
