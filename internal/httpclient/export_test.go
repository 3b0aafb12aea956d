package httpclient

import "net/http"

// HTTPClient exposes the configured base client to tests.
func (c *Client) HTTPClient() *http.Client {
	return c.base
}
