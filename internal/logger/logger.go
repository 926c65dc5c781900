package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/apex/log/handlers/json"
	"github.com/apex/log/handlers/multi"
)

// Logger owns the handlers installed on the apex/log default logger
type Logger struct {
	file *os.File
	path string
}

// Options controls where log entries go
type Options struct {
	Level  string
	Dir    string
	Stderr io.Writer
}

// NewLogger installs a CLI handler on opts.Stderr and, when opts.Dir is
// set, a JSON handler writing to a timestamped file in that directory.
func NewLogger(opts Options) (*Logger, error) {
	level, err := log.ParseLevel(opts.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
	}

	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	l := &Logger{}
	var handler log.Handler = cli.New(stderr)

	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}

		timestamp := time.Now().Format("2006-01-02_15-04-05")
		l.path = filepath.Join(opts.Dir, fmt.Sprintf("run_%s.log", timestamp))
		file, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to create log file: %w", err)
		}
		l.file = file
		handler = multi.New(handler, json.New(file))
	}

	log.SetHandler(handler)
	log.SetLevel(level)
	return l, nil
}

// Path returns the run log file, or "" when only stderr is used
func (l *Logger) Path() string {
	return l.path
}

// Close closes the log file
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}
