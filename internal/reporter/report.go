package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"ccview-smoke/internal/types"

	"github.com/apex/log"
)

// Report is the persisted result artifact
type Report struct {
	Total  int                `json:"total"`
	Passed int                `json:"passed"`
	Failed int                `json:"failed"`
	Tests  []types.TestRecord `json:"tests"`
}

// ReportingConfig holds the configuration for reporting
type ReportingConfig struct {
	OutputFile string
}

// Reporter prints the final summary and writes the artifact
type Reporter struct {
	config  ReportingConfig
	console *Console
}

// NewReporter creates a new instance of Reporter
func NewReporter(config ReportingConfig, console *Console) *Reporter {
	return &Reporter{
		config:  config,
		console: console,
	}
}

// NewReport builds the artifact for records
func NewReport(records []types.TestRecord, summary Summary) Report {
	tests := records
	if tests == nil {
		tests = []types.TestRecord{}
	}
	return Report{
		Total:  summary.Total,
		Passed: summary.Passed,
		Failed: summary.Failed,
		Tests:  tests,
	}
}

// GenerateReport prints the summary and writes the artifact. The summary
// is printed even when writing fails.
func (r *Reporter) GenerateReport(records []types.TestRecord) (Summary, error) {
	summary := Summarize(records)
	r.console.Summary(summary)

	if err := WriteJSON(r.config.OutputFile, NewReport(records, summary)); err != nil {
		return summary, fmt.Errorf("failed to generate JSON report: %w", err)
	}
	log.WithField("path", r.config.OutputFile).Debug("report written")

	r.console.Saved(r.config.OutputFile)
	return summary, nil
}

// EncodeJSON writes the report as indented JSON
func EncodeJSON(w io.Writer, report Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// WriteJSON writes the report to path, replacing any existing file
func WriteJSON(path string, report Report) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := EncodeJSON(file, report); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
