package n8n

import (
	"context"
	"net/http"
)

// UsersService manages instance users.
type UsersService struct {
	exec Executor
}

// NewUsersService creates a users service on top of exec.
func NewUsersService(exec Executor) *UsersService {
	return &UsersService{exec: exec}
}

// List retrieves users.
func (s *UsersService) List(ctx context.Context, params map[string]any) (map[string]any, error) {
	//nolint:wrapcheck // Executor errors are returned as-is so callers can match *APIError
	return s.exec.Execute(ctx, http.MethodGet, "users", params)
}

// Get retrieves a user by ID or email.
func (s *UsersService) Get(ctx context.Context, idOrEmail string, params map[string]any) (map[string]any, error) {
	return executeOn(ctx, s.exec, http.MethodGet, "users", idOrEmail, params)
}

// Create invites one or more users. Each entry carries at least an email and
// optionally a role.
func (s *UsersService) Create(ctx context.Context, users []map[string]any) (map[string]any, error) {
	//nolint:wrapcheck // Executor errors are returned as-is so callers can match *APIError
	return s.exec.ExecuteList(ctx, http.MethodPost, "users", users)
}

// Delete deletes a user.
func (s *UsersService) Delete(ctx context.Context, idOrEmail string) error {
	_, err := executeOn(ctx, s.exec, http.MethodDelete, "users", idOrEmail, nil)

	return err
}

// ChangeRole changes the global role of a user, e.g. {"newRoleName": "global:admin"}.
func (s *UsersService) ChangeRole(ctx context.Context, idOrEmail string, data map[string]any) (map[string]any, error) {
	return executeOn(ctx, s.exec, http.MethodPatch, "users", idOrEmail, data, "role")
}
