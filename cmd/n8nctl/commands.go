package main

import (
	"context"
	"flag"
	"io"
	"net/http"
	"net/url"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mitchellh/cli"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	n8n "github.com/lexfrei/go-n8n"
	"github.com/lexfrei/go-n8n/observer"
	"github.com/lexfrei/go-n8n/queue"
)

func commands(m *meta) map[string]cli.CommandFactory {
	return map[string]cli.CommandFactory{
		"workflows": func() (cli.Command, error) {
			return &groupCommand{
				synopsis: "Manage workflows",
				help:     "Usage: n8nctl workflows <subcommand> [options] [args]\n\n  This command groups subcommands for workflows.",
			}, nil
		},
		"workflows list": func() (cli.Command, error) { return &workflowsListCommand{meta: m}, nil },
		"workflows get":  func() (cli.Command, error) { return &workflowsGetCommand{meta: m}, nil },
		"workflows activate": func() (cli.Command, error) {
			return &workflowStateCommand{meta: m, action: "activate"}, nil
		},
		"workflows deactivate": func() (cli.Command, error) {
			return &workflowStateCommand{meta: m, action: "deactivate"}, nil
		},
		"executions": func() (cli.Command, error) {
			return &groupCommand{
				synopsis: "Inspect workflow executions",
				help:     "Usage: n8nctl executions <subcommand> [options] [args]\n\n  This command groups subcommands for executions.",
			}, nil
		},
		"executions list": func() (cli.Command, error) { return &executionsListCommand{meta: m}, nil },
		"audit":           func() (cli.Command, error) { return &auditCommand{meta: m}, nil },
		"metrics":         func() (cli.Command, error) { return &metricsCommand{meta: m}, nil },
		"worker":          func() (cli.Command, error) { return &workerCommand{meta: m}, nil },
		"version":         func() (cli.Command, error) { return &versionCommand{meta: m}, nil },
	}
}

func newFlagSet(name string) *flag.FlagSet {
	f := flag.NewFlagSet(name, flag.ContinueOnError)
	f.SetOutput(io.Discard)

	return f
}

func flagHelp(f *flag.FlagSet) string {
	var b strings.Builder
	f.SetOutput(&b)
	b.WriteString("\n\nOptions:\n\n")
	f.PrintDefaults()
	f.SetOutput(io.Discard)

	return b.String()
}

type groupCommand struct {
	synopsis string
	help     string
}

func (c *groupCommand) Synopsis() string   { return c.synopsis }
func (c *groupCommand) Help() string       { return c.help }
func (c *groupCommand) Run(_ []string) int { return cli.RunResultHelp }

type workflowsListCommand struct {
	*meta

	flagActive  string
	flagLimit   int
	flagTags    string
	flagName    string
	flagProject string
	flagCursor  string
}

func (c *workflowsListCommand) Synopsis() string { return "List workflows" }

func (c *workflowsListCommand) Help() string {
	return "Usage: n8nctl workflows list [options]" + flagHelp(c.flags())
}

func (c *workflowsListCommand) flags() *flag.FlagSet {
	f := newFlagSet("workflows list")
	f.StringVar(&c.flagActive, "active", "", "Filter by activation state (true or false)")
	f.IntVar(&c.flagLimit, "limit", 0, "Page size")
	f.StringVar(&c.flagTags, "tags", "", "Comma-separated tag names")
	f.StringVar(&c.flagName, "name", "", "Filter by workflow name")
	f.StringVar(&c.flagProject, "project", "", "Filter by project ID")
	f.StringVar(&c.flagCursor, "cursor", "", "Pagination cursor")

	return f
}

func (c *workflowsListCommand) Run(args []string) int {
	if err := c.flags().Parse(args); err != nil {
		c.ui.Error("error parsing flags: " + err.Error())
		return 1
	}

	params := n8n.NewQueryParams()
	switch c.flagActive {
	case "":
	case "true", "false":
		params.Active(c.flagActive == "true")
	default:
		c.ui.Error("-active must be true or false")
		return 1
	}
	if c.flagLimit > 0 {
		params.Limit(c.flagLimit)
	}
	if c.flagTags != "" {
		params.Tags(strings.Split(c.flagTags, ",")...)
	}
	if c.flagName != "" {
		params.Name(c.flagName)
	}
	if c.flagProject != "" {
		params.ProjectID(c.flagProject)
	}
	if c.flagCursor != "" {
		params.Cursor(c.flagCursor)
	}

	return c.call(http.MethodGet, "workflows", params.Build())
}

// call dispatches one request and prints its result.
func (m *meta) call(method, endpoint string, data map[string]any) int {
	s, err := m.open()
	if err != nil {
		return m.fail(err)
	}
	defer func() { _ = s.Close() }()

	result, err := s.dispatch(context.Background(), method, endpoint, data)
	if err != nil {
		return m.fail(err)
	}

	return m.output(result)
}

type workflowsGetCommand struct {
	*meta
}

func (c *workflowsGetCommand) Synopsis() string { return "Show one workflow" }

func (c *workflowsGetCommand) Help() string {
	return "Usage: n8nctl workflows get <id>"
}

func (c *workflowsGetCommand) Run(args []string) int {
	if len(args) != 1 || args[0] == "" {
		c.ui.Error("exactly one workflow ID is required")
		return 1
	}

	return c.call(http.MethodGet, "workflows/"+url.PathEscape(args[0]), nil)
}

type workflowStateCommand struct {
	*meta

	action string
}

func (c *workflowStateCommand) Synopsis() string {
	if c.action == "activate" {
		return "Activate a workflow"
	}

	return "Deactivate a workflow"
}

func (c *workflowStateCommand) Help() string {
	return "Usage: n8nctl workflows " + c.action + " <id>"
}

func (c *workflowStateCommand) Run(args []string) int {
	if len(args) != 1 || args[0] == "" {
		c.ui.Error("exactly one workflow ID is required")
		return 1
	}

	return c.call(http.MethodPost, "workflows/"+url.PathEscape(args[0])+"/"+c.action, nil)
}

type executionsListCommand struct {
	*meta

	flagStatus      string
	flagWorkflow    string
	flagLimit       int
	flagIncludeData bool
}

func (c *executionsListCommand) Synopsis() string { return "List executions" }

func (c *executionsListCommand) Help() string {
	return "Usage: n8nctl executions list [options]" + flagHelp(c.flags())
}

func (c *executionsListCommand) flags() *flag.FlagSet {
	f := newFlagSet("executions list")
	f.StringVar(&c.flagStatus, "status", "", "Filter by status (error, success, waiting)")
	f.StringVar(&c.flagWorkflow, "workflow", "", "Filter by workflow ID")
	f.IntVar(&c.flagLimit, "limit", 0, "Page size")
	f.BoolVar(&c.flagIncludeData, "include-data", false, "Include execution data")

	return f
}

func (c *executionsListCommand) Run(args []string) int {
	if err := c.flags().Parse(args); err != nil {
		c.ui.Error("error parsing flags: " + err.Error())
		return 1
	}

	params := n8n.NewQueryParams()
	if c.flagStatus != "" {
		params.Status(c.flagStatus)
	}
	if c.flagWorkflow != "" {
		params.WorkflowID(c.flagWorkflow)
	}
	if c.flagLimit > 0 {
		params.Limit(c.flagLimit)
	}
	if c.flagIncludeData {
		params.IncludeData(true)
	}

	return c.call(http.MethodGet, "executions", params.Build())
}

type auditCommand struct {
	*meta

	flagDays       int
	flagCategories string
}

func (c *auditCommand) Synopsis() string { return "Generate a security audit" }

func (c *auditCommand) Help() string {
	return "Usage: n8nctl audit [options]" + flagHelp(c.flags())
}

func (c *auditCommand) flags() *flag.FlagSet {
	f := newFlagSet("audit")
	f.IntVar(&c.flagDays, "days-abandoned", 0, "Days without execution after which a workflow counts as abandoned")
	f.StringVar(&c.flagCategories, "categories", "", "Comma-separated risk categories")

	return f
}

func (c *auditCommand) Run(args []string) int {
	if err := c.flags().Parse(args); err != nil {
		c.ui.Error("error parsing flags: " + err.Error())
		return 1
	}

	options := map[string]any{}
	if c.flagDays > 0 {
		options["daysAbandonedWorkflow"] = c.flagDays
	}
	if c.flagCategories != "" {
		options["categories"] = strings.Split(c.flagCategories, ",")
	}

	var data map[string]any
	if len(options) > 0 {
		data = map[string]any{"additionalOptions": options}
	}

	return c.call(http.MethodPost, "audit", data)
}

type metricsCommand struct {
	*meta

	flagRequests int
	flagEndpoint string
}

func (c *metricsCommand) Synopsis() string { return "Measure API calls and print client metrics" }

func (c *metricsCommand) Help() string {
	return `Usage: n8nctl metrics [options]

  Sends a number of GET requests and prints the request counters, the
  OpenTelemetry instruments and the recorded spans.` + flagHelp(c.flags())
}

func (c *metricsCommand) flags() *flag.FlagSet {
	f := newFlagSet("metrics")
	f.IntVar(&c.flagRequests, "requests", 3, "Number of requests to send")
	f.StringVar(&c.flagEndpoint, "endpoint", "workflows", "Endpoint to request")

	return f
}

func (c *metricsCommand) Run(args []string) int {
	if err := c.flags().Parse(args); err != nil {
		c.ui.Error("error parsing flags: " + err.Error())
		return 1
	}

	ctx := context.Background()

	reader := sdkmetric.NewManualReader()
	meterProvider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = meterProvider.Shutdown(ctx) }()

	spans := tracetest.NewSpanRecorder()
	tracerProvider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	defer func() { _ = tracerProvider.Shutdown(ctx) }()

	otelMetrics, err := observer.NewOTelMetricsObserver(meterProvider.Meter("n8nctl"))
	if err != nil {
		return c.fail(err)
	}

	counters := observer.NewMetricsObserver()
	tracing := observer.NewTracingObserver(tracerProvider.Tracer("n8nctl"))

	s, err := c.open(counters, otelMetrics, tracing)
	if err != nil {
		return c.fail(err)
	}
	defer func() { _ = s.Close() }()

	failed := 0
	for range c.flagRequests {
		if _, err := s.dispatch(ctx, http.MethodGet, c.flagEndpoint, nil); err != nil {
			failed++
		}
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		return c.fail(err)
	}

	spanNames := []string{}
	for _, span := range spans.Ended() {
		spanNames = append(spanNames, span.Name()+" "+span.Status().Code.String())
	}

	return c.output(map[string]any{
		"metrics": counters.Map(),
		"otel":    instrumentTotals(rm),
		"spans":   spanNames,
		"errors":  failed,
	})
}

// instrumentTotals sums counters and counts histogram observations per instrument.
func instrumentTotals(rm metricdata.ResourceMetrics) map[string]int64 {
	totals := map[string]int64{}

	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					totals[m.Name] += dp.Value
				}
			case metricdata.Histogram[float64]:
				for _, dp := range data.DataPoints {
					//nolint:gosec // Observation counts fit in int64
					totals[m.Name] += int64(dp.Count)
				}
			}
		}
	}

	return totals
}

type workerCommand struct {
	*meta

	flagMaxAttempts int
}

func (c *workerCommand) Synopsis() string { return "Run queued API calls" }

func (c *workerCommand) Help() string {
	return `Usage: n8nctl worker [options]

  Consumes jobs enqueued by the queued strategy and performs the API calls
  until interrupted.` + flagHelp(c.flags())
}

func (c *workerCommand) flags() *flag.FlagSet {
	f := newFlagSet("worker")
	f.IntVar(&c.flagMaxAttempts, "max-attempts", queue.DefaultMaxAttempts, "Attempts before a job is dead-lettered")

	return f
}

func (c *workerCommand) Run(args []string) int {
	if err := c.flags().Parse(args); err != nil {
		c.ui.Error("error parsing flags: " + err.Error())
		return 1
	}

	s, err := c.open()
	if err != nil {
		return c.fail(err)
	}
	defer func() { _ = s.Close() }()

	q := s.queue
	if q == nil {
		if q, err = s.cfg.NewQueue(); err != nil {
			return c.fail(err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	worker := queue.NewWorker(q, s.registry, queue.WorkerConfig{
		MaxAttempts: c.flagMaxAttempts,
		Logger:      s.logger,
	})

	c.ui.Info("worker consuming queue " + s.cfg.Queue.Name)

	if err := worker.Run(ctx); err != nil {
		return c.fail(err)
	}

	return 0
}

type versionCommand struct {
	*meta
}

func (c *versionCommand) Synopsis() string { return "Print the n8nctl version" }
func (c *versionCommand) Help() string     { return "Usage: n8nctl version" }

func (c *versionCommand) Run(_ []string) int {
	c.ui.Output("n8nctl " + version)

	return 0
}
