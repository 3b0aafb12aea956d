package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexfrei/go-n8n/internal/testutil"
)

// These tests configure the CLI through t.Setenv and cannot run in parallel.

func setEnv(t *testing.T, baseURL string) {
	t.Helper()

	t.Setenv("N8N_BASE_URL", baseURL)
	t.Setenv("N8N_API_KEY", "cli-key")
	t.Setenv("N8N_HTTP_RETRY_TIMES", "0")
	t.Setenv("N8N_LOGGING_LEVEL", "error")
	t.Setenv("N8N_DEFAULT_STRATEGY", "sync")
	t.Setenv("N8N_CONFIG_FILE", "")
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	code := run(append([]string{"n8nctl"}, args...), strings.NewReader(""), &stdout, &stderr)

	return code, stdout.String(), stderr.String()
}

func TestVersion(t *testing.T) {
	for _, args := range [][]string{{"version"}, {"-version"}, {"-v"}} {
		code, out, _ := runCLI(t, args...)
		assert.Equal(t, 0, code)
		assert.Contains(t, out, "dev")
	}
}

func TestWorkflowsList(t *testing.T) {
	server, rec := testutil.NewRecordingServer(t, http.StatusOK, `{"data":[{"id":"1","name":"Sync"}],"nextCursor":null}`)
	defer server.Close()
	setEnv(t, server.URL)

	code, out, errOut := runCLI(t, "workflows", "list", "-active", "true", "-limit", "2", "-tags", "prod,eu")
	require.Equal(t, 0, code, errOut)

	var result map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Len(t, result["data"], 1)

	req := rec.Last(t)
	assert.Equal(t, "/api/v1/workflows", req.Path)
	assert.Contains(t, req.RawQuery, "active=true")
	assert.Contains(t, req.RawQuery, "limit=2")
	assert.Contains(t, req.RawQuery, "tags=prod%2Ceu")
	assert.Equal(t, "cli-key", req.Header.Get(testutil.APIKeyHeader))
}

func TestWorkflowsListInvalidFlag(t *testing.T) {
	server, rec := testutil.NewRecordingServer(t, http.StatusOK, `{}`)
	defer server.Close()
	setEnv(t, server.URL)

	code, _, errOut := runCLI(t, "workflows", "list", "-active", "maybe")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "-active must be true or false")
	assert.Equal(t, 0, rec.Count())
}

func TestWorkflowsGetNotFound(t *testing.T) {
	server := testutil.NewMockServer(t, "/api/v1/workflows/missing", "cli-key",
		`{"message":"Workflow not found"}`, http.StatusNotFound)
	defer server.Close()
	setEnv(t, server.URL)

	code, _, errOut := runCLI(t, "workflows", "get", "missing")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "Workflow not found")
}

func TestWorkflowsActivate(t *testing.T) {
	server, rec := testutil.NewRecordingServer(t, http.StatusOK, `{"id":"7","active":true}`)
	defer server.Close()
	setEnv(t, server.URL)

	code, out, errOut := runCLI(t, "workflows", "activate", "7")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, `"active": true`)

	req := rec.Last(t)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/api/v1/workflows/7/activate", req.Path)

	code, _, _ = runCLI(t, "workflows", "deactivate")
	assert.Equal(t, 1, code, "an ID is required")
}

func TestExecutionsListAsync(t *testing.T) {
	server, rec := testutil.NewRecordingServer(t, http.StatusOK, `{"data":[]}`)
	defer server.Close()
	setEnv(t, server.URL)
	t.Setenv("N8N_DEFAULT_STRATEGY", "async")

	code, out, errOut := runCLI(t, "executions", "list", "-status", "error", "-workflow", "wf1")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, `"data": []`)

	req := rec.Last(t)
	assert.Equal(t, "/api/v1/executions", req.Path)
	assert.Contains(t, req.RawQuery, "status=error")
	assert.Contains(t, req.RawQuery, "workflowId=wf1")
}

func TestAudit(t *testing.T) {
	server, rec := testutil.NewRecordingServer(t, http.StatusOK, `{"Credentials Risk Report":{}}`)
	defer server.Close()
	setEnv(t, server.URL)

	code, _, errOut := runCLI(t, "audit", "-days-abandoned", "30", "-categories", "credentials,nodes")
	require.Equal(t, 0, code, errOut)

	req := rec.Last(t)
	assert.Equal(t, "/api/v1/audit", req.Path)
	assert.JSONEq(t,
		`{"additionalOptions":{"daysAbandonedWorkflow":30,"categories":["credentials","nodes"]}}`,
		string(req.Body))
}

func TestMetrics(t *testing.T) {
	server, _ := testutil.NewRecordingServer(t, http.StatusOK, `{"data":[]}`)
	defer server.Close()
	setEnv(t, server.URL)

	code, out, errOut := runCLI(t, "metrics", "-requests", "2")
	require.Equal(t, 0, code, errOut)

	var result struct {
		Metrics map[string]float64 `json:"metrics"`
		OTel    map[string]int64   `json:"otel"`
		Spans   []string           `json:"spans"`
		Errors  int                `json:"errors"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))

	assert.InDelta(t, 2, result.Metrics["requests_sent"], 0)
	assert.InDelta(t, 2, result.Metrics["responses_received"], 0)
	assert.Equal(t, int64(2), result.OTel["n8n.client.requests.sent"])
	assert.Equal(t, int64(2), result.OTel["n8n.client.request.duration"])
	assert.Equal(t, []string{"n8n GET Ok", "n8n GET Ok"}, result.Spans)
	assert.Equal(t, 0, result.Errors)
}

func TestMissingAPIKey(t *testing.T) {
	setEnv(t, "http://localhost:5678")
	t.Setenv("N8N_API_KEY", "")

	code, _, errOut := runCLI(t, "workflows", "get", "1")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "APIKey is required")
}
