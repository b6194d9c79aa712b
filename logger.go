package simsearch

import (
	"context"
	"log/slog"
	"os"

	"github.com/hupe1980/simsearch/operation"
)

// Logger wraps slog.Logger with simsearch-specific context.
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
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
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

// WithOperation adds the identity of op to the logger.
func (l *Logger) WithOperation(op operation.Operation) *Logger {
	return &Logger{
		Logger: l.Logger.With("operation_id", op.ID().String(), "kind", op.Kind()),
	}
}

// WithPeer adds a peer field to the logger.
func (l *Logger) WithPeer(peer string) *Logger {
	return &Logger{
		Logger: l.Logger.With("peer", peer),
	}
}

// WithPartition adds a partition field to the logger.
func (l *Logger) WithPartition(id uint32) *Logger {
	return &Logger{
		Logger: l.Logger.With("partition", id),
	}
}

// LogEvaluate logs the outcome of evaluating op.
func (l *Logger) LogEvaluate(ctx context.Context, op operation.Operation, err error) {
	if err != nil {
		l.ErrorContext(ctx, "evaluation failed",
			"operation_id", op.ID().String(),
			"kind", op.Kind(),
			"code", op.ErrorCode().String(),
			"error", err,
		)
		return
	}
	stats := op.Stats()
	l.DebugContext(ctx, "evaluation completed",
		"operation_id", op.ID().String(),
		"kind", op.Kind(),
		"code", op.ErrorCode().String(),
		"distance_computations", stats.DistanceComputations,
		"objects_accessed", stats.ObjectsAccessed,
	)
}

// LogMerge logs the merge of spooled partial answers into op.
func (l *Logger) LogMerge(ctx context.Context, op operation.Operation, merged int, err error) {
	if err != nil {
		l.WarnContext(ctx, "partial answers merged with failures",
			"operation_id", op.ID().String(),
			"kind", op.Kind(),
			"merged", merged,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "partial answers merged",
		"operation_id", op.ID().String(),
		"kind", op.Kind(),
		"merged", merged,
	)
}
