package n8n

import (
	"context"
	"net/http"
)

// VariablesService manages instance variables.
type VariablesService struct {
	exec Executor
}

// NewVariablesService creates a variables service on top of exec.
func NewVariablesService(exec Executor) *VariablesService {
	return &VariablesService{exec: exec}
}

// List retrieves variables.
func (s *VariablesService) List(ctx context.Context, params map[string]any) (map[string]any, error) {
	//nolint:wrapcheck // Executor errors are returned as-is so callers can match *APIError
	return s.exec.Execute(ctx, http.MethodGet, "variables", params)
}

// Create creates a variable, e.g. {"key": "region", "value": "eu"}.
func (s *VariablesService) Create(ctx context.Context, data map[string]any) (map[string]any, error) {
	//nolint:wrapcheck // Executor errors are returned as-is so callers can match *APIError
	return s.exec.Execute(ctx, http.MethodPost, "variables", data)
}

// Update replaces a variable.
func (s *VariablesService) Update(ctx context.Context, id string, data map[string]any) (map[string]any, error) {
	return executeOn(ctx, s.exec, http.MethodPut, "variables", id, data)
}

// Delete deletes a variable.
func (s *VariablesService) Delete(ctx context.Context, id string) error {
	_, err := executeOn(ctx, s.exec, http.MethodDelete, "variables", id, nil)

	return err
}
