package observer

import "github.com/cockroachdb/errors"

// HTTPStatusError is implemented by errors that carry the HTTP status of a
// completed call, such as the client's API error.
type HTTPStatusError interface {
	error
	HTTPStatus() int
}

// StatusCode extracts the HTTP status carried by err, or 0 when the call
// never produced a response.
func StatusCode(err error) int {
	var statusErr HTTPStatusError
	if errors.As(err, &statusErr) {
		return statusErr.HTTPStatus()
	}

	return 0
}
