package n8n

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"

	"github.com/lexfrei/go-n8n/strategy"
)

// RequestOperationName names the operation that performs one n8n API call.
const RequestOperationName = "n8n.request"

// RequestArgs are the serialized arguments of a request operation.
type RequestArgs struct {
	Method   string         `json:"method"`
	Endpoint string         `json:"endpoint"`
	Data     map[string]any `json:"data,omitempty"`
}

// RequestOperation builds a named operation that performs one API call when
// run. Named operations can be queued; register the handler with
// RegisterOperations on the consuming side.
//
// Example:
//
//	op, err := n8n.RequestOperation(http.MethodPost, "workflows/42/activate", nil)
//	res, err := queued.Execute(ctx, op)
func RequestOperation(method, endpoint string, data map[string]any) (strategy.Operation, error) {
	//nolint:wrapcheck // Encoding errors come straight from encoding/json
	return strategy.Named(RequestOperationName, RequestArgs{
		Method:   method,
		Endpoint: endpoint,
		Data:     data,
	})
}

// RegisterOperations registers the request operation handler backed by c.
func (c *Client) RegisterOperations(reg *strategy.Registry) {
	reg.Register(RequestOperationName, func(ctx context.Context, raw json.RawMessage) (any, error) {
		var args RequestArgs
		if err := json.Unmarshal(raw, &args); err != nil {
			return nil, errors.Wrap(err, "failed to decode request operation arguments")
		}

		return c.Execute(ctx, args.Method, args.Endpoint, args.Data)
	})
}
