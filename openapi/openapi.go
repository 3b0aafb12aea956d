// Package openapi reads the n8n public API OpenAPI document.
//
// n8n publishes its API description at /api/v1/openapi.yml. The helpers here
// answer the questions the client and CLI ask of it: which endpoints exist,
// which tag groups them, and which server URL and version it describes.
//
// # Example Usage
//
//	doc, err := openapi.Load("openapi.yml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for path, methods := range doc.EndpointsByTag("Workflow") {
//	    for method := range methods {
//	        fmt.Println(method, path)
//	    }
//	}
package openapi

import (
	"context"
	"io/fs"
	"maps"
	"os"
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/getkin/kin-openapi/openapi3"
)

const (
	// DefaultVersion is reported when the document has no info.version.
	DefaultVersion = "1.0.0"
	// DefaultBaseURL is reported when the document declares no servers.
	DefaultBaseURL = "/api/v1"
)

// ErrSchemaNotFound is returned by Load when the document file does not exist.
var ErrSchemaNotFound = errors.New("OpenAPI schema file not found")

// Operations maps an upper-case HTTP method to its operation.
type Operations map[string]*openapi3.Operation

// Document is a parsed OpenAPI document.
type Document struct {
	spec *openapi3.T
}

// Load parses the YAML or JSON document at path.
func Load(path string) (*Document, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrapf(ErrSchemaNotFound, "%s", path)
		}

		return nil, errors.Wrapf(err, "failed to stat %s", path)
	}

	spec, err := openapi3.NewLoader().LoadFromFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}

	return &Document{spec: spec}, nil
}

// LoadData parses a YAML or JSON document held in memory.
func LoadData(data []byte) (*Document, error) {
	spec, err := openapi3.NewLoader().LoadFromData(data)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse OpenAPI document")
	}

	return &Document{spec: spec}, nil
}

// Validate checks the document against the OpenAPI 3 rules.
func (d *Document) Validate(ctx context.Context) error {
	//nolint:wrapcheck // Validation errors describe the offending element already
	return d.spec.Validate(ctx)
}

// Spec returns the underlying kin-openapi document.
func (d *Document) Spec() *openapi3.T {
	return d.spec
}

// Endpoints returns every path with its operations.
func (d *Document) Endpoints() map[string]Operations {
	result := map[string]Operations{}
	if d.spec.Paths == nil {
		return result
	}

	for path, item := range d.spec.Paths.Map() {
		result[path] = item.Operations()
	}

	return result
}

// Endpoint returns the operations of one path.
func (d *Document) Endpoint(path string) (Operations, bool) {
	if d.spec.Paths == nil {
		return nil, false
	}

	item := d.spec.Paths.Value(path)
	if item == nil {
		return nil, false
	}

	return item.Operations(), true
}

// Paths returns all paths in lexical order.
func (d *Document) Paths() []string {
	if d.spec.Paths == nil {
		return nil
	}

	return slices.Sorted(maps.Keys(d.spec.Paths.Map()))
}

// Tags returns the declared tags.
func (d *Document) Tags() openapi3.Tags {
	return d.spec.Tags
}

// TagNames returns the names of the declared tags in declaration order.
func (d *Document) TagNames() []string {
	names := make([]string, 0, len(d.spec.Tags))
	for _, tag := range d.spec.Tags {
		names = append(names, tag.Name)
	}

	return names
}

// Schemas returns the component schemas.
func (d *Document) Schemas() openapi3.Schemas {
	if d.spec.Components == nil || d.spec.Components.Schemas == nil {
		return openapi3.Schemas{}
	}

	return d.spec.Components.Schemas
}

// Version returns info.version, or DefaultVersion.
func (d *Document) Version() string {
	if d.spec.Info == nil || d.spec.Info.Version == "" {
		return DefaultVersion
	}

	return d.spec.Info.Version
}

// BaseURL returns the first server URL, or DefaultBaseURL.
func (d *Document) BaseURL() string {
	if len(d.spec.Servers) == 0 || d.spec.Servers[0].URL == "" {
		return DefaultBaseURL
	}

	return d.spec.Servers[0].URL
}

// EndpointsByTag returns the operations carrying tag, grouped by path.
func (d *Document) EndpointsByTag(tag string) map[string]Operations {
	result := map[string]Operations{}

	for path, ops := range d.Endpoints() {
		for method, op := range ops {
			if op == nil || !slices.Contains(op.Tags, tag) {
				continue
			}

			if result[path] == nil {
				result[path] = Operations{}
			}
			result[path][method] = op
		}
	}

	return result
}
