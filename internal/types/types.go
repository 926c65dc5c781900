package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Endpoint describes one API endpoint to smoke-test
type Endpoint struct {
	Name     string `yaml:"name"`
	Path     string `yaml:"path"`
	Params   Params `yaml:"params,omitempty"`
	Category string `yaml:"category"`
}

// Param is a single query parameter
type Param struct {
	Key   string
	Value interface{}
}

// Params is an ordered set of query parameters. Order is kept as written.
type Params []Param

// Query renders the parameters as key=value pairs joined by "&".
// Values are not percent-encoded.
func (p Params) Query() string {
	pairs := make([]string, 0, len(p))
	for _, param := range p {
		pairs = append(pairs, fmt.Sprintf("%s=%v", param.Key, param.Value))
	}
	return strings.Join(pairs, "&")
}

// Get returns the value stored under key
func (p Params) Get(key string) (interface{}, bool) {
	for _, param := range p {
		if param.Key == key {
			return param.Value, true
		}
	}
	return nil, false
}

// MarshalJSON writes the parameters as a JSON object in insertion order
func (p Params) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("null"), nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, param := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(param.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(param.Value)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal param %q: %w", param.Key, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalYAML reads a YAML mapping, keeping the order of its keys
func (p *Params) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: params must be a mapping", node.Line)
	}

	params := make(Params, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var key string
		if err := node.Content[i].Decode(&key); err != nil {
			return fmt.Errorf("line %d: invalid param key: %w", node.Content[i].Line, err)
		}
		if _, dup := params.Get(key); dup {
			return fmt.Errorf("line %d: duplicate param %q", node.Content[i].Line, key)
		}
		var value interface{}
		if err := node.Content[i+1].Decode(&value); err != nil {
			return fmt.Errorf("line %d: invalid value for param %q: %w", node.Content[i+1].Line, key, err)
		}
		params = append(params, Param{Key: key, Value: value})
	}
	*p = params
	return nil
}

// TestRecord is the outcome of one endpoint merged with its descriptor
type TestRecord struct {
	Name     string `json:"name"`
	Endpoint string `json:"endpoint"`
	Category string `json:"category"`
	Params   Params `json:"params"`
	RequestResult
}

// NewTestRecord merges a result with the endpoint it came from
func NewTestRecord(endpoint Endpoint, result RequestResult) TestRecord {
	return TestRecord{
		Name:          endpoint.Name,
		Endpoint:      endpoint.Path,
		Category:      endpoint.Category,
		Params:        endpoint.Params,
		RequestResult: result,
	}
}
