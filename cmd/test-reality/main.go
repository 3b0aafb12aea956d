package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi3"

	n8n "github.com/lexfrei/go-n8n"
	"github.com/lexfrei/go-n8n/observer"
	"github.com/lexfrei/go-n8n/openapi"
)

var (
	baseURL    = flag.String("base-url", os.Getenv("N8N_BASE_URL"), "n8n base URL (or use N8N_BASE_URL env)")
	apiKey     = flag.String("api-key", os.Getenv("N8N_API_KEY"), "n8n API key (or use N8N_API_KEY env)")
	schemaPath = flag.String("schema", "openapi/testdata/n8n-openapi.yml", "Path to the n8n OpenAPI document")
	verbose    = flag.Bool("verbose", false, "Verbose output with full JSON responses")
)

// TestResult is the outcome of probing one endpoint.
type TestResult struct {
	Endpoint     string
	Success      bool
	Error        string
	JSONSample   string
	Duration     time.Duration
	StatusCode   int
	Undocumented []string // Top-level response fields missing from the documented schema
	Missing      []string // Documented fields absent from the response
}

// Issues returns how many schema mismatches the probe found.
func (r TestResult) Issues() int {
	return len(r.Undocumented) + len(r.Missing)
}

func main() {
	flag.Parse()

	if *baseURL == "" || *apiKey == "" {
		log.Fatal("Base URL and API key are required. Use -base-url/-api-key flags or N8N_BASE_URL/N8N_API_KEY environment variables")
	}

	doc, err := openapi.Load(*schemaPath)
	if err != nil {
		log.Fatalf("Failed to load OpenAPI document: %v", err)
	}

	ctx := context.Background()
	if err := doc.Validate(ctx); err != nil {
		log.Printf("OpenAPI document is not valid, results may be incomplete: %v", err)
	}

	client, err := n8n.New(*baseURL, *apiKey)
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}

	fmt.Printf("Testing n8n API %s (document version %s) against reality...\n", *baseURL, doc.Version())
	fmt.Println("=" + strings.Repeat("=", 60))
	fmt.Println()

	results := probe(ctx, client, doc, *verbose)

	if printSummary(os.Stdout, results, *verbose) > 0 {
		os.Exit(1)
	}
}

// probe calls every GET endpoint without path parameters and compares the
// response with the documented 200 schema.
func probe(ctx context.Context, client *n8n.Client, doc *openapi.Document, withSamples bool) []TestResult {
	var status int
	capture := &observer.Funcs{
		ResponseReceived: func(_ context.Context, resp observer.ResponseEnvelope) {
			status = resp.StatusCode
		},
	}
	client.AddObserver(capture)
	defer client.RemoveObserver(capture)

	results := []TestResult{}

	for _, path := range doc.Paths() {
		if strings.Contains(path, "{") {
			continue
		}

		ops, _ := doc.Endpoint(path)
		op := ops[http.MethodGet]
		if op == nil {
			continue
		}

		status = 0
		result := TestResult{Endpoint: "GET " + path}

		start := time.Now()
		body, err := client.Execute(ctx, http.MethodGet, strings.TrimPrefix(path, "/"), nil)
		result.Duration = time.Since(start)

		if err != nil {
			result.Error = err.Error()
			if apiErr, ok := n8n.AsAPIError(err); ok {
				result.StatusCode = apiErr.StatusCode
			}
			results = append(results, result)

			continue
		}

		result.Success = true
		result.StatusCode = status

		documented := documentedFields(op)
		if documented != nil {
			result.Undocumented, result.Missing = compareFields(body, documented)
		}

		if withSamples {
			data, _ := json.MarshalIndent(body, "", "  ")
			result.JSONSample = string(data)
		}

		results = append(results, result)
	}

	return results
}

// documentedFields returns the property names of the 200 JSON response, or nil
// when the document does not describe one.
func documentedFields(op *openapi3.Operation) []string {
	if op.Responses == nil {
		return nil
	}

	ref := op.Responses.Status(http.StatusOK)
	if ref == nil || ref.Value == nil {
		return nil
	}

	media := ref.Value.Content.Get("application/json")
	if media == nil || media.Schema == nil || media.Schema.Value == nil {
		return nil
	}

	fields := make([]string, 0, len(media.Schema.Value.Properties))
	for name := range media.Schema.Value.Properties {
		fields = append(fields, name)
	}
	slices.Sort(fields)

	return fields
}

func compareFields(body map[string]any, documented []string) ([]string, []string) {
	var undocumented, missing []string

	for key := range body {
		if !slices.Contains(documented, key) {
			undocumented = append(undocumented, key)
		}
	}

	for _, key := range documented {
		if _, ok := body[key]; !ok {
			missing = append(missing, key)
		}
	}

	slices.Sort(undocumented)

	return undocumented, missing
}

// printSummary writes the report and returns the number of failed endpoints
// plus schema issues.
func printSummary(w io.Writer, results []TestResult, withSamples bool) int {
	fmt.Fprintln(w, "Test Summary")
	fmt.Fprintln(w, "="+strings.Repeat("=", 60))
	fmt.Fprintln(w)

	total := 0
	for _, result := range results {
		status := "OK"
		if !result.Success {
			status = "FAIL"
			total++
		} else if result.Issues() > 0 {
			status = "WARN"
		}

		fmt.Fprintf(w, "[%s] %s (HTTP %d, %v)\n", status, result.Endpoint, result.StatusCode, result.Duration)

		if result.Error != "" {
			fmt.Fprintf(w, "   Error: %s\n", result.Error)
		}

		for _, field := range result.Undocumented {
			fmt.Fprintf(w, "   undocumented field: %s\n", field)
		}
		for _, field := range result.Missing {
			fmt.Fprintf(w, "   missing field: %s\n", field)
		}
		total += result.Issues()

		if withSamples && result.JSONSample != "" {
			fmt.Fprintf(w, "   JSON Sample:\n%s\n", indentJSON(result.JSONSample, "      "))
		}

		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "="+strings.Repeat("=", 60))
	if total == 0 {
		fmt.Fprintln(w, "All endpoints match the document.")
	} else {
		fmt.Fprintf(w, "Found %d problem(s)\n", total)
	}

	return total
}

func indentJSON(jsonStr, indent string) string {
	lines := strings.Split(jsonStr, "\n")
	for i, line := range lines {
		lines[i] = indent + line
	}
	return strings.Join(lines, "\n")
}
