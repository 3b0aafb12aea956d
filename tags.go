package n8n

import (
	"context"
	"net/http"
)

// TagsService manages workflow tags.
type TagsService struct {
	exec Executor
}

// NewTagsService creates a tags service on top of exec.
func NewTagsService(exec Executor) *TagsService {
	return &TagsService{exec: exec}
}

// List retrieves tags.
func (s *TagsService) List(ctx context.Context, params map[string]any) (map[string]any, error) {
	//nolint:wrapcheck // Executor errors are returned as-is so callers can match *APIError
	return s.exec.Execute(ctx, http.MethodGet, "tags", params)
}

// Get retrieves a single tag.
func (s *TagsService) Get(ctx context.Context, id string) (map[string]any, error) {
	return executeOn(ctx, s.exec, http.MethodGet, "tags", id, nil)
}

// Create creates a tag, e.g. {"name": "production"}.
func (s *TagsService) Create(ctx context.Context, data map[string]any) (map[string]any, error) {
	//nolint:wrapcheck // Executor errors are returned as-is so callers can match *APIError
	return s.exec.Execute(ctx, http.MethodPost, "tags", data)
}

// Update renames a tag.
func (s *TagsService) Update(ctx context.Context, id string, data map[string]any) (map[string]any, error) {
	return executeOn(ctx, s.exec, http.MethodPut, "tags", id, data)
}

// Delete deletes a tag and returns it.
func (s *TagsService) Delete(ctx context.Context, id string) (map[string]any, error) {
	return executeOn(ctx, s.exec, http.MethodDelete, "tags", id, nil)
}
