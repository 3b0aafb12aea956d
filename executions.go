package n8n

import (
	"context"
	"net/http"
)

// ExecutionsService reads and deletes workflow executions.
type ExecutionsService struct {
	exec Executor
}

// NewExecutionsService creates an executions service on top of exec.
func NewExecutionsService(exec Executor) *ExecutionsService {
	return &ExecutionsService{exec: exec}
}

// List retrieves executions. Supported params include status, workflowId,
// projectId, includeData, limit and cursor.
func (s *ExecutionsService) List(ctx context.Context, params map[string]any) (map[string]any, error) {
	//nolint:wrapcheck // Executor errors are returned as-is so callers can match *APIError
	return s.exec.Execute(ctx, http.MethodGet, "executions", params)
}

// Get retrieves a single execution.
func (s *ExecutionsService) Get(ctx context.Context, id string, params map[string]any) (map[string]any, error) {
	return executeOn(ctx, s.exec, http.MethodGet, "executions", id, params)
}

// Delete deletes an execution and returns it.
func (s *ExecutionsService) Delete(ctx context.Context, id string) (map[string]any, error) {
	return executeOn(ctx, s.exec, http.MethodDelete, "executions", id, nil)
}
