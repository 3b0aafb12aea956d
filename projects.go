package n8n

import (
	"context"
	"net/http"
)

// ProjectsService manages projects.
type ProjectsService struct {
	exec Executor
}

// NewProjectsService creates a projects service on top of exec.
func NewProjectsService(exec Executor) *ProjectsService {
	return &ProjectsService{exec: exec}
}

// List retrieves projects.
func (s *ProjectsService) List(ctx context.Context) (map[string]any, error) {
	//nolint:wrapcheck // Executor errors are returned as-is so callers can match *APIError
	return s.exec.Execute(ctx, http.MethodGet, "projects", nil)
}

// Create creates a project, e.g. {"name": "Marketing"}.
func (s *ProjectsService) Create(ctx context.Context, data map[string]any) (map[string]any, error) {
	//nolint:wrapcheck // Executor errors are returned as-is so callers can match *APIError
	return s.exec.Execute(ctx, http.MethodPost, "projects", data)
}

// Delete deletes a project.
func (s *ProjectsService) Delete(ctx context.Context, id string) error {
	_, err := executeOn(ctx, s.exec, http.MethodDelete, "projects", id, nil)

	return err
}

// AddUsers adds users to a project. data is sent as-is, e.g.
// {"relations": [{"userId": "...", "role": "project:viewer"}]}.
func (s *ProjectsService) AddUsers(ctx context.Context, id string, data map[string]any) (map[string]any, error) {
	return executeOn(ctx, s.exec, http.MethodPost, "projects", id, data, "users")
}
