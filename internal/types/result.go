package types

import (
	"bytes"
	"encoding/json"
)

// NonJSONNote marks a result whose body could not be parsed as JSON
const NonJSONNote = "Non-JSON response"

// RequestResult is the normalized outcome of a single request
type RequestResult struct {
	Success        bool   `json:"success"`
	Status         int    `json:"status"`
	Data           *Body  `json:"data,omitempty"`
	Error          string `json:"error,omitempty"`
	Note           string `json:"note,omitempty"`
	ResponseTimeMs int64  `json:"response_time_ms"`
	SizeBytes      *int   `json:"size_bytes,omitempty"`
}

// Failure builds a failed result. status is 0 when no response arrived.
func Failure(status int, message string) RequestResult {
	return RequestResult{
		Success: false,
		Status:  status,
		Error:   message,
	}
}

// BodyKind tells how a response body was decoded
type BodyKind int

const (
	// BodyStructured is a body that parsed as JSON
	BodyStructured BodyKind = iota + 1
	// BodyText is a body kept as raw text
	BodyText
)

// Body is a decoded response body, either structured JSON or plain text
type Body struct {
	Kind BodyKind
	Raw  json.RawMessage
	Text string
}

// Structured wraps a body that is valid JSON
func Structured(raw []byte) *Body {
	return &Body{Kind: BodyStructured, Raw: json.RawMessage(raw)}
}

// Text wraps a body that is not JSON
func Text(s string) *Body {
	return &Body{Kind: BodyText, Text: s}
}

// DecodeBody classifies raw response bytes
func DecodeBody(raw []byte) *Body {
	if json.Valid(raw) {
		return Structured(bytes.TrimSpace(raw))
	}
	return Text(string(raw))
}

// Keys returns the top-level keys of an object body in document order.
// ok is false for anything that is not a JSON object.
func (b *Body) Keys() (keys []string, ok bool) {
	if b.Kind != BodyStructured {
		return nil, false
	}

	dec := json.NewDecoder(bytes.NewReader(b.Raw))
	tok, err := dec.Token()
	if err != nil || tok != json.Delim('{') {
		return nil, false
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return keys, true
		}
		key, _ := tok.(string)
		keys = append(keys, key)

		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return keys, true
		}
	}
	return keys, true
}

// Len returns the item count of an array body
func (b *Body) Len() (int, bool) {
	if b.Kind != BodyStructured {
		return 0, false
	}

	dec := json.NewDecoder(bytes.NewReader(b.Raw))
	tok, err := dec.Token()
	if err != nil || tok != json.Delim('[') {
		return 0, false
	}
	n := 0
	for dec.More() {
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			break
		}
		n++
	}
	return n, true
}

// MarshalJSON emits structured bodies verbatim and text bodies as strings
func (b Body) MarshalJSON() ([]byte, error) {
	if b.Kind == BodyStructured {
		if len(b.Raw) == 0 {
			return []byte("null"), nil
		}
		return b.Raw, nil
	}
	return json.Marshal(b.Text)
}
