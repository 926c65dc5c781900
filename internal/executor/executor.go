package executor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ccview-smoke/internal/types"

	"github.com/apex/log"
)

// Config holds configuration for request execution
type Config struct {
	BaseURL    string
	AuthHeader string
	Token      string
	Timeout    time.Duration
}

// Executor issues one request for an endpoint and normalizes the outcome
type Executor interface {
	Execute(ctx context.Context, path string, params types.Params) types.RequestResult
}

// RequestExecutor sends GET requests against a fixed origin
type RequestExecutor struct {
	config Config
	client *http.Client
}

// NewRequestExecutor creates a new request executor. A nil client gets a
// default one bounded by config.Timeout.
func NewRequestExecutor(config Config, client *http.Client) *RequestExecutor {
	if client == nil {
		client = &http.Client{}
	}
	if config.Timeout > 0 {
		c := *client
		c.Timeout = config.Timeout
		client = &c
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	return &RequestExecutor{
		config: config,
		client: client,
	}
}

// BuildURL joins the origin, path and raw query string
func (e *RequestExecutor) BuildURL(path string, params types.Params) string {
	url := e.config.BaseURL + path
	if len(params) > 0 {
		url = fmt.Sprintf("%s?%s", url, params.Query())
	}
	return url
}

// Execute performs a single attempt. Every failure is folded into the
// returned result; status >= 400 counts as a failure.
func (e *RequestExecutor) Execute(ctx context.Context, path string, params types.Params) types.RequestResult {
	url := e.BuildURL(path, params)
	ctxLog := log.WithField("url", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		ctxLog.WithError(err).Debug("failed to build request")
		return types.Failure(0, fmt.Sprintf("failed to build request: %v", err))
	}
	if e.config.AuthHeader != "" {
		req.Header.Set(e.config.AuthHeader, e.config.Token)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := e.client.Do(req)
	if err != nil {
		ctxLog.WithError(err).Debug("request failed")
		return types.Failure(0, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		// drain so the connection can be reused
		io.Copy(io.Discard, resp.Body)
		ctxLog.WithField("status", resp.StatusCode).Debug("error status")
		return types.Failure(resp.StatusCode, fmt.Sprintf("HTTP Error %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		ctxLog.WithError(err).Debug("failed to read response body")
		return types.Failure(resp.StatusCode, fmt.Sprintf("failed to read response body: %v", err))
	}
	elapsed := time.Since(start)

	size := len(body)
	result := types.RequestResult{
		Success:        true,
		Status:         resp.StatusCode,
		Data:           types.DecodeBody(body),
		ResponseTimeMs: elapsed.Milliseconds(),
		SizeBytes:      &size,
	}
	if result.Data.Kind == types.BodyText {
		result.Note = types.NonJSONNote
	}

	ctxLog.WithFields(log.Fields{
		"status":   resp.StatusCode,
		"duration": elapsed,
		"bytes":    size,
	}).Debug("response received")
	return result
}
