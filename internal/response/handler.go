// Package response decodes n8n API response bodies and classifies status codes.
package response

import (
	"bytes"
	"encoding/json"
	"net/http"
)

// GenericErrorMessage is used when a failed response carries no message field.
const GenericErrorMessage = "API request failed"

// Successful reports whether the status code counts as a successful round-trip.
// Redirects that reach the caller are treated as success.
func Successful(statusCode int) bool {
	return statusCode >= http.StatusOK && statusCode < http.StatusBadRequest
}

// Decode parses a response body into a JSON object.
//
// Empty or non-JSON bodies decode to an empty map. A top-level JSON array is
// wrapped as {"data": [...]}, matching the shape n8n uses for list endpoints.
// Scalars decode to an empty map.
func Decode(body []byte) map[string]any {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return map[string]any{}
	}

	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return map[string]any{}
	}

	switch v := decoded.(type) {
	case map[string]any:
		return v
	case []any:
		return map[string]any{"data": v}
	default:
		return map[string]any{}
	}
}

// ErrorMessage returns the body's string "message" field, or GenericErrorMessage.
func ErrorMessage(body map[string]any) string {
	if msg, ok := body["message"].(string); ok && msg != "" {
		return msg
	}

	return GenericErrorMessage
}

// FlattenHeaders converts multi-value headers to their first value.
func FlattenHeaders(h http.Header) map[string]string {
	result := make(map[string]string, len(h))
	for k, v := range h {
		if len(v) > 0 {
			result[k] = v[0]
		}
	}

	return result
}
