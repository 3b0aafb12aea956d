// Package n8n provides a Go client for the n8n public REST API (/api/v1).
//
// The Client sends requests for workflows, credentials, executions, users,
// tags, variables, projects, security audits and source control pulls. Every
// call passes through a single pipeline that notifies observers, publishes
// lifecycle events and writes an optional log line.
//
// # Request Pipeline
//
// For each call:
//   - observers receive OnRequestSent, then a RequestSent event is published
//   - GET sends data as query parameters, other methods as a JSON body
//   - 2xx and 3xx responses are decoded into map[string]any
//   - other statuses and unsupported methods become *APIError
//   - observers receive OnResponseReceived or OnRequestFailed, then the matching event
//
// # Retry Logic
//
// Network errors, 5xx and 429 responses are retried RetryTimes times with a
// constant RetrySleep delay. A Retry-After header on 429 overrides the delay.
//
// # Example Usage
//
//	client, err := n8n.New("https://n8n.example.com", "your-api-key")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	params := n8n.NewQueryParams().Active(true).Limit(20).Build()
//	workflows, err := client.Workflows().List(context.Background(), params)
//	if err != nil {
//	    var apiErr *n8n.APIError
//	    if errors.As(err, &apiErr) {
//	        log.Fatalf("n8n returned %d: %s", apiErr.StatusCode, apiErr.Message)
//	    }
//	    log.Fatal(err)
//	}
//
// # Observers
//
//	metrics := observer.NewMetricsObserver()
//	client.AddObserver(metrics)
//	// ...
//	fmt.Println(metrics.Metrics().AverageDuration)
//
// # Execution Strategies
//
// API calls can be wrapped as named operations and run under the strategies
// of package strategy, including queued execution on a Redis-backed worker:
//
//	reg := strategy.NewRegistry()
//	client.RegisterOperations(reg)
//	op, _ := n8n.RequestOperation(http.MethodPost, "workflows/42/activate", nil)
//	res, err := async.Execute(ctx, op)
package n8n
