package n8n

import (
	"context"

	"github.com/lexfrei/go-n8n/observer"
)

// Executor sends raw requests to the n8n API. Resource services are built on
// it, so a mock Executor is enough to unit test code that uses them.
//
// Example usage with testify/mock:
//
//	type MockExecutor struct {
//	    mock.Mock
//	}
//
//	func (m *MockExecutor) Execute(ctx context.Context, method, endpoint string, data map[string]any) (map[string]any, error) {
//	    args := m.Called(ctx, method, endpoint, data)
//	    return args.Get(0).(map[string]any), args.Error(1)
//	}
type Executor interface {
	// Execute sends data as query (GET) or JSON object body (other methods).
	Execute(ctx context.Context, method, endpoint string, data map[string]any) (map[string]any, error)

	// ExecuteList sends items as a JSON array body.
	ExecuteList(ctx context.Context, method, endpoint string, items []map[string]any) (map[string]any, error)
}

// API is the full surface of Client: raw execution, observer management and
// the resource services.
//
//nolint:interfacebloat // Mirrors the n8n public API resource groups
type API interface {
	Executor

	AddObserver(o observer.Observer)
	RemoveObserver(o observer.Observer)

	Workflows() *WorkflowsService
	Credentials() *CredentialsService
	Executions() *ExecutionsService
	Users() *UsersService
	Tags() *TagsService
	Variables() *VariablesService
	Projects() *ProjectsService
	Audit() *AuditService
	SourceControl() *SourceControlService
}

// Compile-time check to ensure Client implements the Executor interface.
var _ Executor = (*Client)(nil)
