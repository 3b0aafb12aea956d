package strategy

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/cockroachdb/errors"
)

// Handler runs a named operation with its JSON arguments.
type Handler func(ctx context.Context, args json.RawMessage) (any, error)

// Operation is a unit of work handed to a Strategy. It is either an
// in-process closure built with Func or a named, serializable operation
// built with Named and resolved through a Registry.
type Operation struct {
	Name string          `json:"name"`
	Args json.RawMessage `json:"args,omitempty"`

	fn func(ctx context.Context) (any, error)
}

// Func wraps a closure. Closures can run under Sync and Async but cannot be queued.
func Func(fn func(ctx context.Context) (any, error)) Operation {
	return Operation{fn: fn}
}

// Named builds a serializable operation. args is encoded as JSON.
func Named(name string, args any) (Operation, error) {
	if name == "" {
		return Operation{}, errors.New("operation name is required")
	}

	op := Operation{Name: name}
	if args != nil {
		raw, err := json.Marshal(args)
		if err != nil {
			return Operation{}, errors.Wrapf(err, "encoding arguments of %s", name)
		}
		op.Args = raw
	}

	return op, nil
}

// Serializable reports whether op can cross a process boundary.
func (o Operation) Serializable() bool {
	return o.fn == nil && o.Name != ""
}

// Run executes the operation. Named operations are looked up in reg.
func (o Operation) Run(ctx context.Context, reg *Registry) (any, error) {
	if o.fn != nil {
		return o.fn(ctx)
	}

	if reg == nil {
		return nil, errors.Wrapf(ErrUnknownOperation, "%q (no registry)", o.Name)
	}

	h, err := reg.Resolve(o.Name)
	if err != nil {
		return nil, err
	}

	return h(ctx, o.Args)
}

// Registry maps operation names to handlers. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register binds name to h, replacing any previous handler.
func (r *Registry) Register(name string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.handlers[name] = h
}

// Resolve returns the handler bound to name.
func (r *Registry) Resolve(name string) (Handler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.handlers[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownOperation, "%q", name)
	}

	return h, nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.handlers[name]

	return ok
}
