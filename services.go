package n8n

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/oapi-codegen/runtime"
)

// Workflows returns the workflows service.
func (c *Client) Workflows() *WorkflowsService { return NewWorkflowsService(c) }

// Credentials returns the credentials service.
func (c *Client) Credentials() *CredentialsService { return NewCredentialsService(c) }

// Executions returns the executions service.
func (c *Client) Executions() *ExecutionsService { return NewExecutionsService(c) }

// Users returns the users service.
func (c *Client) Users() *UsersService { return NewUsersService(c) }

// Tags returns the tags service.
func (c *Client) Tags() *TagsService { return NewTagsService(c) }

// Variables returns the variables service.
func (c *Client) Variables() *VariablesService { return NewVariablesService(c) }

// Projects returns the projects service.
func (c *Client) Projects() *ProjectsService { return NewProjectsService(c) }

// Audit returns the audit service.
func (c *Client) Audit() *AuditService { return NewAuditService(c) }

// SourceControl returns the source control service.
func (c *Client) SourceControl() *SourceControlService { return NewSourceControlService(c) }

// resourcePath joins a collection with an escaped identifier and optional
// literal suffix segments.
func resourcePath(collection, param, value string, suffix ...string) (string, error) {
	if value == "" {
		return "", errors.Newf("%s is required", param)
	}

	escaped, err := runtime.StyleParamWithLocation("simple", false, param, runtime.ParamLocationPath, value)
	if err != nil {
		return "", errors.Wrapf(err, "invalid %s", param)
	}

	path := collection + "/" + escaped
	for _, s := range suffix {
		path += "/" + s
	}

	return path, nil
}

// executeOn runs method against {collection}/{id}[/suffix...].
func executeOn(ctx context.Context, exec Executor, method, collection, id string, data map[string]any, suffix ...string) (map[string]any, error) {
	path, err := resourcePath(collection, "id", id, suffix...)
	if err != nil {
		return nil, err
	}

	//nolint:wrapcheck // Executor errors are returned as-is so callers can match *APIError
	return exec.Execute(ctx, method, path, data)
}
