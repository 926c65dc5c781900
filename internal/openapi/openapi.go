package openapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"

	"ccview-smoke/internal/catalog"
	"ccview-smoke/internal/types"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

const (
	securitySchemeName = "apiKey"

	// orderExtension records an operation's position in the catalog, since
	// paths are keyed by name and lose their order once written out
	orderExtension = "x-catalog-order"
)

// Options describe the service the catalog belongs to
type Options struct {
	Title      string
	Version    string
	BaseURL    string
	AuthHeader string
}

// Build renders the catalog as an OpenAPI 3 document. Every endpoint
// becomes a GET operation whose id is the endpoint name and whose tag is
// its category.
func Build(cat *catalog.Catalog, opts Options) (*openapi3.T, error) {
	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:   opts.Title,
			Version: opts.Version,
		},
		Servers: openapi3.Servers{&openapi3.Server{URL: opts.BaseURL}},
		Paths:   openapi3.NewPaths(),
	}

	if opts.AuthHeader != "" {
		scheme := openapi3.NewSecurityScheme().
			WithType("apiKey").
			WithIn("header").
			WithName(opts.AuthHeader)
		doc.Components = &openapi3.Components{
			SecuritySchemes: openapi3.SecuritySchemes{
				securitySchemeName: &openapi3.SecuritySchemeRef{Value: scheme},
			},
		}
		doc.Security = openapi3.SecurityRequirements{
			openapi3.NewSecurityRequirement().Authenticate(securitySchemeName),
		}
	}

	for i, ep := range cat.Endpoints() {
		if item := doc.Paths.Value(ep.Path); item != nil && item.Get != nil {
			return nil, fmt.Errorf("endpoint %q: path %s already used by %q", ep.Name, ep.Path, item.Get.OperationID)
		}

		op := openapi3.NewOperation()
		op.OperationID = ep.Name
		op.Tags = []string{ep.Category}
		op.Summary = ep.Name
		op.Extensions = map[string]any{orderExtension: i}
		for _, param := range ep.Params {
			p := openapi3.NewQueryParameter(param.Key).WithSchema(schemaFor(param.Value))
			p.Example = param.Value
			op.AddParameter(p)
		}

		description := http.StatusText(http.StatusOK)
		op.Responses = openapi3.NewResponses(
			openapi3.WithStatus(http.StatusOK, &openapi3.ResponseRef{
				Value: openapi3.NewResponse().WithDescription(description),
			}),
		)

		doc.AddOperation(ep.Path, http.MethodGet, op)
	}

	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("generated document is invalid: %w", err)
	}
	return doc, nil
}

func schemaFor(value interface{}) *openapi3.Schema {
	switch value.(type) {
	case int, int32, int64:
		return openapi3.NewIntegerSchema()
	case float32, float64:
		return openapi3.NewFloat64Schema()
	case bool:
		return openapi3.NewBoolSchema()
	default:
		return openapi3.NewStringSchema()
	}
}

// Marshal encodes the document as indented JSON
func Marshal(doc *openapi3.T) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal OpenAPI document: %w", err)
	}
	return append(data, '\n'), nil
}

// Parse loads and validates an OpenAPI document
func Parse(data []byte) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse OpenAPI doc: %w", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("invalid OpenAPI doc: %w", err)
	}
	return doc, nil
}

// Endpoints reads the GET operations of a document back into endpoint
// descriptors, using each parameter's example as its value. Operations
// carrying a catalog position come first, in that order; the rest follow
// in router matching order.
func Endpoints(doc *openapi3.T) []types.Endpoint {
	type entry struct {
		endpoint types.Endpoint
		order    int
		ordered  bool
	}

	var entries []entry
	for _, path := range doc.Paths.InMatchingOrder() {
		item := doc.Paths.Value(path)
		if item == nil || item.Get == nil {
			continue
		}
		op := item.Get

		ep := types.Endpoint{Name: op.OperationID, Path: path}
		if len(op.Tags) > 0 {
			ep.Category = op.Tags[0]
		}
		for _, ref := range op.Parameters {
			if ref.Value == nil || ref.Value.In != openapi3.ParameterInQuery {
				continue
			}
			ep.Params = append(ep.Params, types.Param{Key: ref.Value.Name, Value: ref.Value.Example})
		}

		order, ordered := catalogOrder(op)
		entries = append(entries, entry{endpoint: ep, order: order, ordered: ordered})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.ordered != b.ordered {
			return a.ordered
		}
		return a.ordered && a.order < b.order
	})

	endpoints := make([]types.Endpoint, 0, len(entries))
	for _, e := range entries {
		endpoints = append(endpoints, e.endpoint)
	}
	return endpoints
}

// catalogOrder reads the order extension. Values decoded from a file are
// float64, values set by Build are int.
func catalogOrder(op *openapi3.Operation) (int, bool) {
	switch v := op.Extensions[orderExtension].(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	}
	return 0, false
}

// DecodeCatalog reads endpoints from an OpenAPI document in JSON or YAML.
// ok is false when data has no top-level openapi version field.
func DecodeCatalog(data []byte) (endpoints []types.Endpoint, ok bool, err error) {
	var header struct {
		OpenAPI string `yaml:"openapi"`
	}
	if yaml.Unmarshal(data, &header) != nil || header.OpenAPI == "" {
		return nil, false, nil
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, true, err
	}
	endpoints = Endpoints(doc)
	if len(endpoints) == 0 {
		return nil, true, fmt.Errorf("OpenAPI doc has no GET operations")
	}
	return endpoints, true, nil
}
