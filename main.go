package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"ccview-smoke/internal/catalog"
	"ccview-smoke/internal/config"
	"ccview-smoke/internal/executor"
	"ccview-smoke/internal/logger"
	"ccview-smoke/internal/openapi"
	"ccview-smoke/internal/reporter"

	"github.com/apex/log"
	"github.com/google/uuid"
	colorable "github.com/mattn/go-colorable"
)

const apiVersion = "v1"

// options are the flags shared by every subcommand
type options struct {
	configPath  string
	envPath     string
	catalogPath string
	outputPath  string
	ascii       bool
}

func newFlagSet(name string, opts *options) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&opts.configPath, "config", config.DefaultConfigPath, "Path to config file")
	fs.StringVar(&opts.envPath, "env", ".env", "Path to .env file")
	fs.StringVar(&opts.catalogPath, "catalog", "", "Path to catalog YAML or OpenAPI document (default: built-in catalog)")
	return fs
}

func main() {
	os.Exit(run(os.Args[1:], colorable.NewColorableStdout(), os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	command := "run"
	if len(args) > 0 && (args[0] == "run" || args[0] == "list" || args[0] == "openapi") {
		command, args = args[0], args[1:]
	}

	var opts options
	fs := newFlagSet(command, &opts)
	fs.SetOutput(stderr)
	switch command {
	case "run":
		fs.StringVar(&opts.outputPath, "output", "", "Path to results file (default: from config)")
		fs.BoolVar(&opts.ascii, "ascii", false, "Use plain ASCII markers in console output")
	case "openapi":
		fs.StringVar(&opts.outputPath, "output", "", "Write the document here instead of stdout")
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if err := config.LoadEnv(opts.envPath); err != nil {
		fmt.Fprintf(stderr, "Failed to load env file: %v\n", err)
		return 1
	}
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load configuration: %v\n", err)
		return 1
	}
	if opts.catalogPath != "" {
		cfg.Test.Catalog = opts.catalogPath
	}
	if command == "run" && opts.outputPath != "" {
		cfg.Reporting.OutputFile = opts.outputPath
	}
	if opts.ascii {
		cfg.Reporting.ASCII = true
	}

	logs, err := logger.NewLogger(logger.Options{
		Level:  cfg.Logging.Level,
		Dir:    cfg.Logging.Dir,
		Stderr: stderr,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Failed to set up logging: %v\n", err)
		return 1
	}
	defer logs.Close()
	if path := logs.Path(); path != "" {
		log.WithField("path", path).Debug("writing run log")
	}

	dates := catalog.NewDateRange(time.Now())
	cat, err := loadCatalog(cfg, dates)
	if err != nil {
		log.WithError(err).Error("failed to load catalog")
		return 1
	}

	switch command {
	case "list":
		listCatalog(stdout, cat)
		return 0
	case "openapi":
		if err := exportOpenAPI(stdout, cfg, cat, opts.outputPath); err != nil {
			log.WithError(err).Error("failed to export OpenAPI document")
			return 1
		}
		return 0
	}

	return runTests(stdout, cfg, cat, dates)
}

func loadCatalog(cfg *config.Config, dates catalog.DateRange) (*catalog.Catalog, error) {
	if cfg.Test.Catalog == "" {
		return catalog.Default(dates), nil
	}
	return catalog.NewLoader(cfg.Test.Catalog, openapi.DecodeCatalog).Load(dates)
}

func runTests(stdout io.Writer, cfg *config.Config, cat *catalog.Catalog, dates catalog.DateRange) int {
	ctxLog := log.WithFields(log.Fields{
		"run_id":   uuid.New().String(),
		"base_url": cfg.Environment.BaseURL,
	})
	if cfg.Environment.Auth.Token == "" {
		ctxLog.Warnf("no API key configured; set %s", config.EnvAPIKey)
	}

	glyphs := reporter.UnicodeGlyphs
	if cfg.Reporting.ASCII || !reporter.SupportsUTF8(os.Getenv, runtime.GOOS) {
		glyphs = reporter.ASCIIGlyphs
	}
	console := reporter.NewConsole(stdout, glyphs)

	requestExecutor := executor.NewRequestExecutor(executor.Config{
		BaseURL:    cfg.Environment.BaseURL,
		AuthHeader: cfg.Environment.Auth.Header,
		Token:      cfg.Environment.Auth.Token,
		Timeout:    cfg.Test.Timeout(),
	}, nil)
	testRunner := executor.NewTestRunner(requestExecutor, cfg.Test.Pacing(), console)

	ctxLog.WithFields(log.Fields{
		"endpoints":  cat.Len(),
		"categories": strings.Join(cat.Categories(), ","),
	}).Info("starting run")
	console.Header(cat.Len(), dates)

	start := time.Now()
	records := testRunner.Run(context.Background(), cat)

	testReporter := reporter.NewReporter(reporter.ReportingConfig{
		OutputFile: cfg.Reporting.OutputFile,
	}, console)
	summary, err := testReporter.GenerateReport(records)
	if err != nil {
		ctxLog.WithError(err).Error("failed to save results")
		return 1
	}

	ctxLog.WithFields(log.Fields{
		"passed":   summary.Passed,
		"failed":   summary.Failed,
		"duration": time.Since(start).Round(time.Millisecond),
	}).Info("run finished")
	return 0
}

func listCatalog(w io.Writer, cat *catalog.Catalog) {
	total := cat.Len()
	for i, ep := range cat.Endpoints() {
		target := ep.Path
		if len(ep.Params) > 0 {
			target += "?" + ep.Params.Query()
		}
		fmt.Fprintf(w, "[%d/%d] %-30s %-12s %s\n", i+1, total, ep.Name, ep.Category, target)
	}
}

func exportOpenAPI(stdout io.Writer, cfg *config.Config, cat *catalog.Catalog, outputPath string) error {
	doc, err := openapi.Build(cat, openapi.Options{
		Title:      "CCView API",
		Version:    apiVersion,
		BaseURL:    cfg.Environment.BaseURL,
		AuthHeader: cfg.Environment.Auth.Header,
	})
	if err != nil {
		return err
	}
	data, err := openapi.Marshal(doc)
	if err != nil {
		return err
	}

	if outputPath == "" {
		_, err = stdout.Write(data)
		return err
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outputPath, err)
	}
	log.WithField("path", outputPath).Info("OpenAPI document written")
	return nil
}
