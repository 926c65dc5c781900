package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParamsQuery(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		want   string
	}{
		{
			name: "cursor and limit keep insertion order",
			params: Params{
				{Key: "cursor", Value: "2024-01-01T00:00:00Z"},
				{Key: "limit", Value: 5},
			},
			want: "cursor=2024-01-01T00:00:00Z&limit=5",
		},
		{
			name: "date range",
			params: Params{
				{Key: "start", Value: "2024-01-01"},
				{Key: "end", Value: "2024-01-31"},
			},
			want: "start=2024-01-01&end=2024-01-31",
		},
		{
			name:   "empty",
			params: Params{},
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.params.Query())
		})
	}
}

func TestParamsMarshalJSON(t *testing.T) {
	params := Params{
		{Key: "limit", Value: 5},
		{Key: "arg", Value: "1220"},
	}
	data, err := json.Marshal(params)
	require.NoError(t, err)
	assert.Equal(t, `{"limit":5,"arg":"1220"}`, string(data))

	var none Params
	data, err = json.Marshal(none)
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}

func TestParamsUnmarshalYAML(t *testing.T) {
	var ep Endpoint
	doc := `
name: list_governances
path: /api/v1/governances
category: Governance
params:
  cursor: "{{cursor}}"
  limit: 5
`
	require.NoError(t, yaml.Unmarshal([]byte(doc), &ep))
	require.Len(t, ep.Params, 2)
	assert.Equal(t, "cursor", ep.Params[0].Key)
	assert.Equal(t, "{{cursor}}", ep.Params[0].Value)
	assert.Equal(t, "limit", ep.Params[1].Key)
	assert.Equal(t, 5, ep.Params[1].Value)

	v, ok := ep.Params.Get("limit")
	assert.True(t, ok)
	assert.Equal(t, 5, v)

	err := yaml.Unmarshal([]byte("params: [a, b]\n"), &ep)
	assert.Error(t, err)

	err = yaml.Unmarshal([]byte("params:\n  limit: 5\n  limit: 10\n"), &ep)
	assert.Error(t, err)
}

func TestDecodeBody(t *testing.T) {
	body := DecodeBody([]byte(`{"a":1,"b":2}`))
	assert.Equal(t, BodyStructured, body.Kind)
	assert.JSONEq(t, `{"a":1,"b":2}`, string(body.Raw))

	body = DecodeBody([]byte("plain text reply"))
	assert.Equal(t, BodyText, body.Kind)
	assert.Equal(t, "plain text reply", body.Text)

	body = DecodeBody(nil)
	assert.Equal(t, BodyText, body.Kind)
	assert.Equal(t, "", body.Text)
}

func TestBodyKeys(t *testing.T) {
	body := DecodeBody([]byte(`{"zeta":1,"alpha":{"nested":true},"mid":[1,2]}`))
	keys, ok := body.Keys()
	require.True(t, ok)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, keys)

	_, ok = DecodeBody([]byte(`[1,2,3]`)).Keys()
	assert.False(t, ok)
	_, ok = Text("hello").Keys()
	assert.False(t, ok)

	n, ok := DecodeBody([]byte(`[{"a":1},2,"three"]`)).Len()
	require.True(t, ok)
	assert.Equal(t, 3, n)
}

func TestTestRecordMarshalJSON(t *testing.T) {
	size := 13
	record := NewTestRecord(
		Endpoint{Name: "health_check", Path: "/api/v1/health", Category: "Health"},
		RequestResult{
			Success:        true,
			Status:         200,
			Data:           Structured([]byte(`{"a":1,"b":2}`)),
			ResponseTimeMs: 42,
			SizeBytes:      &size,
		},
	)

	data, err := json.Marshal(record)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"name": "health_check",
		"endpoint": "/api/v1/health",
		"category": "Health",
		"params": null,
		"success": true,
		"status": 200,
		"data": {"a": 1, "b": 2},
		"response_time_ms": 42,
		"size_bytes": 13
	}`, string(data))

	failed := NewTestRecord(
		Endpoint{Name: "get_network_stats", Path: "/api/v1/explore/stats", Category: "Explore"},
		Failure(0, "connection refused"),
	)
	data, err = json.Marshal(failed)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"name": "get_network_stats",
		"endpoint": "/api/v1/explore/stats",
		"category": "Explore",
		"params": null,
		"success": false,
		"status": 0,
		"error": "connection refused",
		"response_time_ms": 0
	}`, string(data))
}
