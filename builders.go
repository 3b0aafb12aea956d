package n8n

import (
	"maps"
	"strconv"
	"strings"
)

// QueryParams builds query parameters for list endpoints. Setters return the
// same builder so calls can be chained; Build drops unset entries.
//
// Example:
//
//	params := n8n.NewQueryParams().Active(true).Tags("prod", "billing").Limit(50).Build()
//	workflows, err := client.Workflows().List(ctx, params)
type QueryParams struct {
	values map[string]any
}

// NewQueryParams creates an empty query builder.
func NewQueryParams() *QueryParams {
	return &QueryParams{values: map[string]any{}}
}

// Limit sets the page size.
func (q *QueryParams) Limit(limit int) *QueryParams { return q.set("limit", limit) }

// Cursor sets the pagination cursor returned as nextCursor by the previous page.
func (q *QueryParams) Cursor(cursor string) *QueryParams { return q.set("cursor", cursor) }

// IncludeData requests execution data in execution listings.
func (q *QueryParams) IncludeData(include bool) *QueryParams {
	return q.set("includeData", strconv.FormatBool(include))
}

// Status filters executions by status, e.g. "error".
func (q *QueryParams) Status(status string) *QueryParams { return q.set("status", status) }

// WorkflowID filters by workflow.
func (q *QueryParams) WorkflowID(id string) *QueryParams { return q.set("workflowId", id) }

// ProjectID filters by project.
func (q *QueryParams) ProjectID(id string) *QueryParams { return q.set("projectId", id) }

// Active filters workflows by activation state.
func (q *QueryParams) Active(active bool) *QueryParams {
	return q.set("active", strconv.FormatBool(active))
}

// Tags filters workflows by tag names.
func (q *QueryParams) Tags(tags ...string) *QueryParams {
	return q.set("tags", strings.Join(tags, ","))
}

// Name filters workflows by name.
func (q *QueryParams) Name(name string) *QueryParams { return q.set("name", name) }

// ExcludePinnedData omits pinned data from workflow responses.
func (q *QueryParams) ExcludePinnedData(exclude bool) *QueryParams {
	return q.set("excludePinnedData", strconv.FormatBool(exclude))
}

// IncludeRole adds each user's role to user listings.
func (q *QueryParams) IncludeRole(include bool) *QueryParams {
	return q.set("includeRole", strconv.FormatBool(include))
}

// With sets an arbitrary parameter. A nil value is dropped by Build.
func (q *QueryParams) With(key string, value any) *QueryParams { return q.set(key, value) }

// Build returns the parameters without nil entries.
func (q *QueryParams) Build() map[string]any { return build(q.values) }

// Reset clears all parameters.
func (q *QueryParams) Reset() *QueryParams {
	q.values = map[string]any{}

	return q
}

func (q *QueryParams) set(key string, value any) *QueryParams {
	if q.values == nil {
		q.values = map[string]any{}
	}
	q.values[key] = value

	return q
}

// WorkflowPayload builds the body of workflow create and update calls.
type WorkflowPayload struct {
	values map[string]any
}

// NewWorkflowPayload creates an empty workflow payload.
func NewWorkflowPayload() *WorkflowPayload {
	return &WorkflowPayload{values: map[string]any{}}
}

// Name sets the workflow name.
func (w *WorkflowPayload) Name(name string) *WorkflowPayload { return w.set("name", name) }

// Active sets the activation state.
func (w *WorkflowPayload) Active(active bool) *WorkflowPayload { return w.set("active", active) }

// Nodes sets the workflow nodes.
func (w *WorkflowPayload) Nodes(nodes []map[string]any) *WorkflowPayload {
	return w.set("nodes", nodes)
}

// Connections sets the node connections.
func (w *WorkflowPayload) Connections(connections map[string]any) *WorkflowPayload {
	return w.set("connections", connections)
}

// Settings sets the workflow settings.
func (w *WorkflowPayload) Settings(settings map[string]any) *WorkflowPayload {
	return w.set("settings", settings)
}

// Tags sets the workflow tags.
func (w *WorkflowPayload) Tags(tags []map[string]any) *WorkflowPayload { return w.set("tags", tags) }

// With sets an arbitrary field. A nil value is dropped by Build.
func (w *WorkflowPayload) With(key string, value any) *WorkflowPayload { return w.set(key, value) }

// Build returns the payload without nil entries.
func (w *WorkflowPayload) Build() map[string]any { return build(w.values) }

func (w *WorkflowPayload) set(key string, value any) *WorkflowPayload {
	if w.values == nil {
		w.values = map[string]any{}
	}
	w.values[key] = value

	return w
}

// CredentialPayload builds the body of credential create calls.
type CredentialPayload struct {
	values map[string]any
}

// NewCredentialPayload creates an empty credential payload.
func NewCredentialPayload() *CredentialPayload {
	return &CredentialPayload{values: map[string]any{}}
}

// Name sets the credential name.
func (c *CredentialPayload) Name(name string) *CredentialPayload { return c.set("name", name) }

// Type sets the credential type, e.g. "githubApi".
func (c *CredentialPayload) Type(typeName string) *CredentialPayload {
	return c.set("type", typeName)
}

// Data sets the credential secret data.
func (c *CredentialPayload) Data(data map[string]any) *CredentialPayload {
	return c.set("data", data)
}

// With sets an arbitrary field. A nil value is dropped by Build.
func (c *CredentialPayload) With(key string, value any) *CredentialPayload {
	return c.set(key, value)
}

// Build returns the payload without nil entries.
func (c *CredentialPayload) Build() map[string]any { return build(c.values) }

func (c *CredentialPayload) set(key string, value any) *CredentialPayload {
	if c.values == nil {
		c.values = map[string]any{}
	}
	c.values[key] = value

	return c
}

func build(values map[string]any) map[string]any {
	result := maps.Clone(values)
	if result == nil {
		return map[string]any{}
	}

	maps.DeleteFunc(result, func(_ string, v any) bool { return v == nil })

	return result
}
