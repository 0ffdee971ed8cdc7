// Package cli implements the etiket command-line interface.
//
// This package provides commands for rendering label sheets from data rows,
// previewing labels in the terminal, inspecting and validating templates,
// managing the render cache and serving the preview API. The CLI is built
// using cobra and logs via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - render: Generate HTML, SVG, PNG, PDF or JSON label sheets
//   - preview: Draw labels as text grids in the terminal
//   - template: Show, validate or initialize a label template
//   - cache: Manage the render cache
//   - serve: Run the HTTP preview API
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/etiket/pkg/label/defect"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine; concurrent calls to done will race.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time as start.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Rendered 12 labels (34ms)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// logDefects logs each defect once at warn level.
func logDefects(l *log.Logger, ds []defect.Defect) {
	for _, d := range ds {
		kv := []any{"kind", d.Kind, "cell", d.CellID}
		if d.Label != defect.TemplateLevel {
			kv = append(kv, "label", d.Label)
		}
		if d.Field != "" {
			kv = append(kv, "field", d.Field)
		}
		l.Warn(d.Message, kv...)
	}
}

// ctxKey is the type for context keys used in this package.
type ctxKey int

// loggerKey is the context key for storing a logger.
const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx.
// If no logger is attached, it returns log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
