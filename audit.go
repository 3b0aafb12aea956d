package n8n

import (
	"context"
	"net/http"
)

// AuditService generates security audits.
type AuditService struct {
	exec Executor
}

// NewAuditService creates an audit service on top of exec.
func NewAuditService(exec Executor) *AuditService {
	return &AuditService{exec: exec}
}

// Generate runs a security audit. options may hold
// {"additionalOptions": {"daysAbandonedWorkflow": 90, "categories": [...]}}.
func (s *AuditService) Generate(ctx context.Context, options map[string]any) (map[string]any, error) {
	//nolint:wrapcheck // Executor errors are returned as-is so callers can match *APIError
	return s.exec.Execute(ctx, http.MethodPost, "audit", options)
}
