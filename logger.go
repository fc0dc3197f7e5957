package knngraph

import (
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with graph-builder specific helpers.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithBuilder adds a builder name field to the logger.
func (l *Logger) WithBuilder(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("builder", name),
	}
}

// WithK adds a k (neighbor count) field to the logger.
func (l *Logger) WithK(k int) *Logger {
	return &Logger{
		Logger: l.Logger.With("k", k),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogBuild logs the outcome of a graph build.
func (l *Logger) LogBuild(nodes int, evaluations int64, elapsed time.Duration, err error) {
	if err != nil {
		l.Error("graph build failed",
			"nodes", nodes,
			"evaluations", evaluations,
			"error", err,
		)
		return
	}
	l.Debug("graph build completed",
		"nodes", nodes,
		"evaluations", evaluations,
		"elapsed", elapsed,
	)
}

// LogCell logs a solved partition cell.
func (l *Logger) LogCell(stage, bucket, size int, evaluations int64) {
	l.Debug("partition cell solved",
		"stage", stage,
		"bucket", bucket,
		"size", size,
		"evaluations", evaluations,
	)
}

// LogProgress logs builder progress.
func (l *Logger) LogProgress(id NodeID, evaluations int64) {
	l.Info("graph build progress",
		"node_id", id,
		"evaluations", evaluations,
	)
}
