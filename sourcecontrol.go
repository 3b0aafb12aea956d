package n8n

import (
	"context"
	"net/http"
)

// SourceControlService drives the instance's source control integration.
type SourceControlService struct {
	exec Executor
}

// NewSourceControlService creates a source control service on top of exec.
func NewSourceControlService(exec Executor) *SourceControlService {
	return &SourceControlService{exec: exec}
}

// Pull pulls changes from the connected repository, e.g. {"force": true}.
func (s *SourceControlService) Pull(ctx context.Context, options map[string]any) (map[string]any, error) {
	//nolint:wrapcheck // Executor errors are returned as-is so callers can match *APIError
	return s.exec.Execute(ctx, http.MethodPost, "source-control/pull", options)
}
