// Package logging configures the structured logfmt logger shared by the
// server, the CLI and the pipeline packages.
package logging

import (
	stdlog "log"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Log source tags used in structured logger contexts.
const (
	SourceApp        = "app"
	SourceHTTP       = "http"
	SourceExtraction = "extraction"
	SourceModel      = "model"
	SourcePlanner    = "planner"
	SourceStore      = "store"
)

var (
	initOnce   sync.Once
	baseLogger *log.Logger
)

// Init configures the base logger and routes stdlib log output through it.
func Init() {
	initOnce.Do(func() {
		level := log.InfoLevel
		if lvl, err := log.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
			level = lvl
		}

		baseLogger = log.NewWithOptions(os.Stdout, log.Options{
			TimeFunction:    log.NowUTC,
			TimeFormat:      time.RFC3339Nano,
			Level:           level,
			ReportTimestamp: true,
			Formatter:       log.LogfmtFormatter,
		})

		stdLogger := baseLogger.With("source", SourceApp).StandardLog(log.StandardLogOptions{ForceLevel: log.InfoLevel})

		stdlog.SetFlags(0)
		stdlog.SetOutput(stdLogger.Writer())
	})
}

// Logger returns a logfmt logger tagged with the provided source.
func Logger(source string) *log.Logger {
	Init()
	return baseLogger.With("source", source)
}

// StdLogger returns a stdlib logger that writes logfmt output with a source.
func StdLogger(source string) *stdlog.Logger {
	Init()
	return baseLogger.With("source", source).StandardLog(log.StandardLogOptions{ForceLevel: log.ErrorLevel})
}
