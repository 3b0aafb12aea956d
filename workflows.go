package n8n

import (
	"context"
	"net/http"
)

// WorkflowsService manages workflows.
type WorkflowsService struct {
	exec Executor
}

// NewWorkflowsService creates a workflows service on top of exec.
func NewWorkflowsService(exec Executor) *WorkflowsService {
	return &WorkflowsService{exec: exec}
}

// List retrieves workflows. Use QueryParams to build params.
func (s *WorkflowsService) List(ctx context.Context, params map[string]any) (map[string]any, error) {
	//nolint:wrapcheck // Executor errors are returned as-is so callers can match *APIError
	return s.exec.Execute(ctx, http.MethodGet, "workflows", params)
}

// Get retrieves a single workflow.
func (s *WorkflowsService) Get(ctx context.Context, id string, params map[string]any) (map[string]any, error) {
	return s.call(ctx, http.MethodGet, id, params)
}

// Create creates a workflow. Use WorkflowPayload to build data.
func (s *WorkflowsService) Create(ctx context.Context, data map[string]any) (map[string]any, error) {
	//nolint:wrapcheck // Executor errors are returned as-is so callers can match *APIError
	return s.exec.Execute(ctx, http.MethodPost, "workflows", data)
}

// Update replaces a workflow.
func (s *WorkflowsService) Update(ctx context.Context, id string, data map[string]any) (map[string]any, error) {
	return s.call(ctx, http.MethodPut, id, data)
}

// Delete deletes a workflow and returns it.
func (s *WorkflowsService) Delete(ctx context.Context, id string) (map[string]any, error) {
	return s.call(ctx, http.MethodDelete, id, nil)
}

// Activate activates a workflow.
func (s *WorkflowsService) Activate(ctx context.Context, id string) (map[string]any, error) {
	return s.call(ctx, http.MethodPost, id, nil, "activate")
}

// Deactivate deactivates a workflow.
func (s *WorkflowsService) Deactivate(ctx context.Context, id string) (map[string]any, error) {
	return s.call(ctx, http.MethodPost, id, nil, "deactivate")
}

// Transfer moves a workflow to another project.
func (s *WorkflowsService) Transfer(ctx context.Context, id, projectID string) (map[string]any, error) {
	return s.call(ctx, http.MethodPut, id, map[string]any{"destinationProjectId": projectID}, "transfer")
}

// Tags retrieves the tags of a workflow.
func (s *WorkflowsService) Tags(ctx context.Context, id string) (map[string]any, error) {
	return s.call(ctx, http.MethodGet, id, nil, "tags")
}

// UpdateTags replaces the tags of a workflow.
func (s *WorkflowsService) UpdateTags(ctx context.Context, id string, tagIDs []string) (map[string]any, error) {
	return s.call(ctx, http.MethodPut, id, map[string]any{"tagIds": tagIDs}, "tags")
}

func (s *WorkflowsService) call(ctx context.Context, method, id string, data map[string]any, suffix ...string) (map[string]any, error) {
	return executeOn(ctx, s.exec, method, "workflows", id, data, suffix...)
}
