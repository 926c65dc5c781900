package catalog

import (
	"fmt"
	"os"
	"strings"

	"ccview-smoke/internal/types"

	"gopkg.in/yaml.v3"
)

// File is the on-disk shape of a catalog file
type File struct {
	Endpoints []types.Endpoint `yaml:"endpoints"`
}

// Decoder reads endpoints from a file format other than catalog YAML.
// ok is false when data is not in the decoder's format.
type Decoder func(data []byte) (endpoints []types.Endpoint, ok bool, err error)

// Loader reads a catalog from a file
type Loader struct {
	path     string
	decoders []Decoder
}

// NewLoader creates a new catalog loader. Decoders are tried in order
// before falling back to catalog YAML.
func NewLoader(path string, decoders ...Decoder) *Loader {
	return &Loader{path: path, decoders: decoders}
}

// Load reads the file and fills in date placeholders from dates
func (l *Loader) Load(dates DateRange) (*Catalog, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	for _, decode := range l.decoders {
		endpoints, ok, err := decode(data)
		if err != nil {
			return nil, err
		}
		if ok {
			return Resolve(endpoints, dates)
		}
	}
	return Parse(data, dates)
}

// Parse decodes catalog YAML and resolves it against dates
func Parse(data []byte, dates DateRange) (*Catalog, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return Resolve(file.Endpoints, dates)
}

// Resolve replaces the string values {{start}}, {{end}} and {{cursor}}
// with the run's date parameters and validates the endpoints.
func Resolve(endpoints []types.Endpoint, dates DateRange) (*Catalog, error) {
	replacer := strings.NewReplacer(
		"{{start}}", dates.Start,
		"{{end}}", dates.End,
		"{{cursor}}", dates.Cursor,
	)

	resolved := make([]types.Endpoint, len(endpoints))
	for i, ep := range endpoints {
		if ep.Params != nil {
			params := make(types.Params, len(ep.Params))
			for j, param := range ep.Params {
				if s, ok := param.Value.(string); ok {
					param.Value = replacer.Replace(s)
				}
				params[j] = param
			}
			ep.Params = params
		}
		resolved[i] = ep
	}

	return New(resolved)
}
