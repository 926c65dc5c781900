package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"ccview-smoke/internal/config"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCatalog = `
endpoints:
  - name: health_check
    path: /api/v1/health
    category: Health
  - name: get_network_stats
    path: /api/v1/explore/stats
    category: Explore
  - name: list_governances
    path: /api/v1/governances
    category: Governance
    params:
      cursor: "{{cursor}}"
      limit: 5
`

func setup(t *testing.T) (dir string, catalogPath string) {
	t.Helper()
	color.NoColor = true

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-Key") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/api/v1/health":
			w.Write([]byte(`{"a":1,"b":2}`))
		case "/api/v1/explore/stats":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.Write([]byte(`{"items":[]}`))
		}
	}))
	t.Cleanup(server.Close)

	t.Setenv(config.EnvBaseURL, server.URL)
	t.Setenv(config.EnvAPIKey, "test-key")

	dir = t.TempDir()
	catalogPath = filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(catalogPath, []byte(testCatalog), 0644))
	return dir, catalogPath
}

func baseArgs(dir, catalogPath string) []string {
	return []string{
		"-config", filepath.Join(dir, "absent.yaml"),
		"-env", filepath.Join(dir, "absent.env"),
		"-catalog", catalogPath,
	}
}

func TestRunCommand(t *testing.T) {
	dir, catalogPath := setup(t)
	output := filepath.Join(dir, "results.json")

	var stdout, stderr bytes.Buffer
	args := append([]string{"run"}, baseArgs(dir, catalogPath)...)
	args = append(args, "-output", output, "-ascii")
	code := run(args, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	out := stdout.String()
	assert.Contains(t, out, "Testing 3 endpoints...")
	assert.Contains(t, out, "[1/3] Testing: health_check (Health)")
	assert.Contains(t, out, "FAIL Failed: HTTP Error 500: Internal Server Error")
	assert.Contains(t, out, "Success Rate: 66.7%")
	assert.Contains(t, out, "  Explore: 0/1 passed")

	data, err := os.ReadFile(output)
	require.NoError(t, err)

	var report struct {
		Total  int `json:"total"`
		Passed int `json:"passed"`
		Failed int `json:"failed"`
		Tests  []struct {
			Name    string `json:"name"`
			Success bool   `json:"success"`
			Status  int    `json:"status"`
		} `json:"tests"`
	}
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 2, report.Passed)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Tests, 3)
	assert.Equal(t, "health_check", report.Tests[0].Name)
	assert.Equal(t, "get_network_stats", report.Tests[1].Name)
	assert.Equal(t, 500, report.Tests[1].Status)
	assert.Equal(t, "list_governances", report.Tests[2].Name)
}

func TestRunCommandArtifactFailure(t *testing.T) {
	dir, catalogPath := setup(t)
	output := filepath.Join(dir, "taken")
	require.NoError(t, os.Mkdir(output, 0755))

	var stdout, stderr bytes.Buffer
	args := append(baseArgs(dir, catalogPath), "-output", output)
	code := run(args, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stdout.String(), "Total Tests: 3")
	assert.Contains(t, stderr.String(), "failed to save results")
}

func TestListCommand(t *testing.T) {
	dir, catalogPath := setup(t)

	var stdout, stderr bytes.Buffer
	code := run(append([]string{"list"}, baseArgs(dir, catalogPath)...), &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	assert.Contains(t, stdout.String(), "[1/3] health_check")
	assert.Contains(t, stdout.String(), "/api/v1/governances?cursor=")
}

func TestOpenAPICommand(t *testing.T) {
	dir, catalogPath := setup(t)
	output := filepath.Join(dir, "openapi.json")

	var stdout, stderr bytes.Buffer
	args := append([]string{"openapi"}, baseArgs(dir, catalogPath)...)
	args = append(args, "-output", output)
	code := run(args, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"operationId": "list_governances"`)
}

func TestBadCatalog(t *testing.T) {
	dir, _ := setup(t)
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("endpoints: []\n"), 0644))

	var stdout, stderr bytes.Buffer
	code := run(baseArgs(dir, bad), &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "failed to load catalog")
}

func TestBadFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 2, run([]string{"-nope"}, &stdout, &stderr))
}

func TestRunExportedOpenAPICatalog(t *testing.T) {
	dir, catalogPath := setup(t)
	exported := filepath.Join(dir, "openapi.json")

	var stdout, stderr bytes.Buffer
	args := append([]string{"openapi"}, baseArgs(dir, catalogPath)...)
	code := run(append(args, "-output", exported), &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	output := filepath.Join(dir, "results.json")
	stdout.Reset()
	stderr.Reset()
	args = append([]string{"run"}, baseArgs(dir, exported)...)
	code = run(append(args, "-output", output, "-ascii"), &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	assert.Contains(t, stdout.String(), "Testing 3 endpoints...")
	assert.Contains(t, stdout.String(), "[1/3] Testing: health_check (Health)")

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	var report struct {
		Passed int `json:"passed"`
		Tests  []struct {
			Name   string          `json:"name"`
			Params json.RawMessage `json:"params"`
		} `json:"tests"`
	}
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, 2, report.Passed)
	require.Len(t, report.Tests, 3)
	assert.Equal(t, "health_check", report.Tests[0].Name)
	assert.Equal(t, "get_network_stats", report.Tests[1].Name)
	assert.Equal(t, "list_governances", report.Tests[2].Name)
	assert.Contains(t, string(report.Tests[2].Params), `"limit":5`)
}
