package diskvec

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with diskvec-specific helpers so cursor
// operations log with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler. A nil handler falls
// back to a text handler on stderr at info level.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewTextLogger creates a Logger that writes human-readable text to stderr.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewJSONLogger creates a Logger that writes JSON records to stderr.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NoopLogger creates a Logger that discards all output.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, nil))
}

// LogInsert logs the outcome of one insert.
func (l *Logger) LogInsert(ctx context.Context, index string, rowid int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "insert failed",
			"index", index,
			"rowid", rowid,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "insert completed",
			"index", index,
			"rowid", rowid,
		)
	}
}

// LogSearch logs the outcome of one search.
func (l *Logger) LogSearch(ctx context.Context, index string, k, found int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "search failed",
			"index", index,
			"k", k,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "search completed",
			"index", index,
			"k", k,
			"results", found,
		)
	}
}

// LogPartialBacklink logs a non-fatal backlink failure during insert.
func (l *Logger) LogPartialBacklink(ctx context.Context, index string, rowid int64, err error) {
	l.WarnContext(ctx, "insert persisted with missing reverse edges",
		"index", index,
		"rowid", rowid,
		"error", err,
	)
}
