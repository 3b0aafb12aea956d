package n8n

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

// APIError is returned when n8n answers with a non-success status, or when a
// request uses an HTTP method the client does not support.
type APIError struct {
	// Message is the "message" field of the response body, or a generic text.
	Message string
	// StatusCode is the HTTP status of the response.
	StatusCode int
	// ResponseBody is the decoded response body; empty when it was not JSON.
	ResponseBody map[string]any
}

func (e *APIError) Error() string {
	return fmt.Sprintf("n8n API error (status %d): %s", e.StatusCode, e.Message)
}

// HTTPStatus returns the status code. It lets observers classify failures
// without depending on this package.
func (e *APIError) HTTPStatus() int {
	return e.StatusCode
}

// ConfigurationError is returned by NewWithConfig when a required setting is missing.
type ConfigurationError struct {
	Field   string
	Message string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

// AsAPIError returns the *APIError in err's chain, if any.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}

	return nil, false
}

// IsNotFound reports whether err is an API error with status 404.
func IsNotFound(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.StatusCode == http.StatusNotFound
}
