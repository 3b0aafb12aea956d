package n8n

import (
	"context"
	"net/http"
)

// CredentialsService manages credentials. n8n does not expose credential
// listing or reading through the public API.
type CredentialsService struct {
	exec Executor
}

// NewCredentialsService creates a credentials service on top of exec.
func NewCredentialsService(exec Executor) *CredentialsService {
	return &CredentialsService{exec: exec}
}

// Create creates a credential. Use CredentialPayload to build data.
func (s *CredentialsService) Create(ctx context.Context, data map[string]any) (map[string]any, error) {
	//nolint:wrapcheck // Executor errors are returned as-is so callers can match *APIError
	return s.exec.Execute(ctx, http.MethodPost, "credentials", data)
}

// Delete deletes a credential and returns it.
func (s *CredentialsService) Delete(ctx context.Context, id string) (map[string]any, error) {
	return executeOn(ctx, s.exec, http.MethodDelete, "credentials", id, nil)
}

// Schema retrieves the data schema of a credential type, e.g. "githubApi".
func (s *CredentialsService) Schema(ctx context.Context, typeName string) (map[string]any, error) {
	path, err := resourcePath("credentials/schema", "type", typeName)
	if err != nil {
		return nil, err
	}

	//nolint:wrapcheck // Executor errors are returned as-is so callers can match *APIError
	return s.exec.Execute(ctx, http.MethodGet, path, nil)
}

// Transfer moves a credential to another project.
func (s *CredentialsService) Transfer(ctx context.Context, id, projectID string) (map[string]any, error) {
	return executeOn(ctx, s.exec, http.MethodPut, "credentials", id,
		map[string]any{"destinationProjectId": projectID}, "transfer")
}
