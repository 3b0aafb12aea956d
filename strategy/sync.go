package strategy

import "context"

// Sync runs operations inline on the caller's goroutine.
type Sync struct {
	registry *Registry
}

// NewSync returns a sync strategy.
func NewSync(opts ...Option) *Sync {
	o := buildOptions(opts)

	return &Sync{registry: o.registry}
}

// Execute runs op and returns its result unchanged.
func (s *Sync) Execute(ctx context.Context, op Operation) (any, error) {
	return op.Run(ctx, s.registry)
}

// Name returns "sync".
func (s *Sync) Name() string { return NameSync }
