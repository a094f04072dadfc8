// Package logging builds the structured logger shared by the binaries.
package logging

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
)

// New returns a logger writing to w at level in the given format
// ("text", "json" or "logfmt").
func New(w io.Writer, level, format string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	var formatter log.Formatter
	switch format {
	case "", "text":
		formatter = log.TextFormatter
	case "json":
		formatter = log.JSONFormatter
	case "logfmt":
		formatter = log.LogfmtFormatter
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}

	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		Formatter:       formatter,
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
	}), nil
}

// Discard returns a logger that drops everything, for tests.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}
