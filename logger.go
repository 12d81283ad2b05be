package graphgo

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with graphgo-specific context.
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
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithStrategy adds a partition strategy field to the logger.
func (l *Logger) WithStrategy(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("strategy", name),
	}
}

// WithNumPartitions adds a partition count field to the logger.
func (l *Logger) WithNumPartitions(n int) *Logger {
	return &Logger{
		Logger: l.Logger.With("num_partitions", n),
	}
}

// LogPartition logs an edge partitioning pass.
func (l *Logger) LogPartition(ctx context.Context, strategy string, numPartitions, edges int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "edge partitioning failed",
			"strategy", strategy,
			"num_partitions", numPartitions,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "edge partitioning completed",
			"strategy", strategy,
			"num_partitions", numPartitions,
			"edges", edges,
		)
	}
}

// LogUpgrade logs a replicated view fidelity upgrade.
func (l *Logger) LogUpgrade(ctx context.Context, needsSrc, needsDst bool) {
	l.DebugContext(ctx, "replicated view upgrade scheduled",
		"needs_src", needsSrc,
		"needs_dst", needsDst,
	)
}

// LogAggregate logs one partition's share of a triplet aggregation.
func (l *Logger) LogAggregate(ctx context.Context, partition int, edgesScanned, messages int, usedIndex bool) {
	l.DebugContext(ctx, "partition aggregation completed",
		"partition", partition,
		"edges_scanned", edgesScanned,
		"messages", messages,
		"used_index", usedIndex,
	)
}
