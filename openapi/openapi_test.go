package openapi_test

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexfrei/go-n8n/openapi"
)

const fixture = "testdata/n8n-openapi.yml"

func TestLoad(t *testing.T) {
	t.Parallel()

	doc, err := openapi.Load(fixture)
	require.NoError(t, err)
	require.NoError(t, doc.Validate(context.Background()))

	assert.Equal(t, "1.1.1", doc.Version())
	assert.Equal(t, "/api/v1", doc.BaseURL())
	assert.Equal(t, []string{"Workflow", "Execution", "Tags"}, doc.TagNames())
	assert.Len(t, doc.Tags(), 3)
	assert.Equal(t, []string{"/executions", "/tags/{id}", "/workflows", "/workflows/{id}/activate"}, doc.Paths())
	assert.NotNil(t, doc.Spec())

	schemas := doc.Schemas()
	require.Contains(t, schemas, "workflow")
	assert.Contains(t, schemas, "tag")
	assert.Contains(t, schemas["workflow"].Value.Required, "nodes")
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := openapi.Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)
	require.ErrorIs(t, err, openapi.ErrSchemaNotFound)
}

func TestLoadDataInvalid(t *testing.T) {
	t.Parallel()

	_, err := openapi.LoadData([]byte("openapi: [not, a, document"))
	require.Error(t, err)
}

func TestEndpoints(t *testing.T) {
	t.Parallel()

	doc, err := openapi.Load(fixture)
	require.NoError(t, err)

	endpoints := doc.Endpoints()
	require.Len(t, endpoints, 4)
	assert.Len(t, endpoints["/workflows"], 2)
	assert.Equal(t, "getWorkflows", endpoints["/workflows"][http.MethodGet].OperationID)

	ops, ok := doc.Endpoint("/workflows/{id}/activate")
	require.True(t, ok)
	assert.Equal(t, "activateWorkflow", ops[http.MethodPost].OperationID)

	_, ok = doc.Endpoint("/nope")
	assert.False(t, ok)
}

func TestEndpointsByTag(t *testing.T) {
	t.Parallel()

	doc, err := openapi.Load(fixture)
	require.NoError(t, err)

	tests := []struct {
		tag   string
		paths map[string][]string
	}{
		{
			tag: "Workflow",
			paths: map[string][]string{
				"/workflows":               {http.MethodGet, http.MethodPost},
				"/workflows/{id}/activate": {http.MethodPost},
			},
		},
		{tag: "Execution", paths: map[string][]string{"/executions": {http.MethodGet}}},
		{tag: "Tags", paths: map[string][]string{"/tags/{id}": {http.MethodDelete}}},
		{tag: "Unknown", paths: map[string][]string{}},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			t.Parallel()

			got := doc.EndpointsByTag(tt.tag)
			require.Len(t, got, len(tt.paths))

			for path, methods := range tt.paths {
				require.Contains(t, got, path)
				for _, m := range methods {
					assert.Contains(t, got[path], m)
				}
				assert.Len(t, got[path], len(methods))
			}
		})
	}
}

func TestDefaults(t *testing.T) {
	t.Parallel()

	doc, err := openapi.LoadData([]byte(`{"openapi":"3.0.0","info":{"title":"x","version":""},"paths":{}}`))
	require.NoError(t, err)

	assert.Equal(t, openapi.DefaultVersion, doc.Version())
	assert.Equal(t, openapi.DefaultBaseURL, doc.BaseURL())
	assert.Empty(t, doc.Schemas())
	assert.Empty(t, doc.Endpoints())
	assert.Empty(t, doc.TagNames())
}
