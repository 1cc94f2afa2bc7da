// Package logging provides the structured logger used across barrel.
//
// Loggers wrap log/slog. The "json" and "text" formats use the standard slog
// handlers; "pretty" renders through charmbracelet/log for interactive
// terminals.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	charmlog "github.com/charmbracelet/log"
)

// LogLevel represents different log levels
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a flag value such as "debug" into a LogLevel.
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q (want debug, info, warn or error)", s)
	}
}

func (l LogLevel) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l LogLevel) charmLevel() charmlog.Level {
	switch l {
	case LevelDebug:
		return charmlog.DebugLevel
	case LevelWarn:
		return charmlog.WarnLevel
	case LevelError:
		return charmlog.ErrorLevel
	default:
		return charmlog.InfoLevel
	}
}

// Logger interface for structured logging
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...interface{})
	Info(ctx context.Context, msg string, fields ...interface{})
	Warn(ctx context.Context, err error, msg string, fields ...interface{})
	Error(ctx context.Context, err error, msg string, fields ...interface{})

	With(fields ...interface{}) Logger
	WithComponent(component string) Logger
}

// StructuredLogger implements Logger on top of an slog handler. Fields
// added through With and WithComponent are kept in insertion order and
// emitted before per-call fields.
type StructuredLogger struct {
	handler slog.Handler
	attrs   []slog.Attr
}

// LoggerConfig selects the level, format and destination of a logger.
type LoggerConfig struct {
	Level     LogLevel
	Format    string // "json", "text" or "pretty"
	Output    io.Writer
	AddSource bool
	Component string
}

// DefaultConfig logs info and above, pretty printed, to stderr.
func DefaultConfig() *LoggerConfig {
	return &LoggerConfig{
		Level:  LevelInfo,
		Format: "pretty",
		Output: os.Stderr,
	}
}

// NewLogger builds a logger from config. A nil config means DefaultConfig.
func NewLogger(config *LoggerConfig) *StructuredLogger {
	if config == nil {
		config = DefaultConfig()
	}
	output := config.Output
	if output == nil {
		output = os.Stderr
	}

	var handler slog.Handler
	switch config.Format {
	case "json":
		handler = slog.NewJSONHandler(output, &slog.HandlerOptions{
			Level:     config.Level.slogLevel(),
			AddSource: config.AddSource,
		})
	case "text":
		handler = slog.NewTextHandler(output, &slog.HandlerOptions{
			Level:     config.Level.slogLevel(),
			AddSource: config.AddSource,
		})
	default:
		handler = charmlog.NewWithOptions(output, charmlog.Options{
			Level:           config.Level.charmLevel(),
			ReportTimestamp: true,
			TimeFormat:      time.Kitchen,
			ReportCaller:    config.AddSource,
		})
	}

	logger := &StructuredLogger{handler: handler}
	if config.Component != "" {
		logger.attrs = []slog.Attr{slog.String("component", config.Component)}
	}
	return logger
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() *StructuredLogger {
	return NewLogger(&LoggerConfig{Level: LevelError, Format: "text", Output: io.Discard})
}

func (l *StructuredLogger) Debug(ctx context.Context, msg string, fields ...interface{}) {
	l.log(ctx, slog.LevelDebug, nil, msg, fields)
}

func (l *StructuredLogger) Info(ctx context.Context, msg string, fields ...interface{}) {
	l.log(ctx, slog.LevelInfo, nil, msg, fields)
}

func (l *StructuredLogger) Warn(ctx context.Context, err error, msg string, fields ...interface{}) {
	l.log(ctx, slog.LevelWarn, err, msg, fields)
}

func (l *StructuredLogger) Error(ctx context.Context, err error, msg string, fields ...interface{}) {
	l.log(ctx, slog.LevelError, err, msg, fields)
}

// With returns a child logger carrying fields as key/value pairs.
func (l *StructuredLogger) With(fields ...interface{}) Logger {
	return l.derive(toAttrs(fields)...)
}

// WithComponent returns a child logger tagged with component, replacing
// any component inherited from l.
func (l *StructuredLogger) WithComponent(component string) Logger {
	child := &StructuredLogger{handler: l.handler}
	for _, a := range l.attrs {
		if a.Key != "component" {
			child.attrs = append(child.attrs, a)
		}
	}
	child.attrs = append([]slog.Attr{slog.String("component", component)}, child.attrs...)
	return child
}

func (l *StructuredLogger) derive(extra ...slog.Attr) *StructuredLogger {
	attrs := make([]slog.Attr, 0, len(l.attrs)+len(extra))
	attrs = append(attrs, l.attrs...)
	attrs = append(attrs, extra...)
	return &StructuredLogger{handler: l.handler, attrs: attrs}
}

func (l *StructuredLogger) log(ctx context.Context, level slog.Level, err error, msg string, fields []interface{}) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !l.handler.Enabled(ctx, level) {
		return
	}

	record := slog.NewRecord(time.Now(), level, msg, 0)
	record.AddAttrs(l.attrs...)
	if err != nil {
		record.AddAttrs(slog.String("error", err.Error()))
	}
	record.AddAttrs(toAttrs(fields)...)

	_ = l.handler.Handle(ctx, record)
}

// toAttrs pairs up alternating keys and values. Pairs whose key is not a
// string and a trailing key without a value are dropped.
func toAttrs(fields []interface{}) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(fields)/2)
	for i := 0; i+1 < len(fields); i += 2 {
		if key, ok := fields[i].(string); ok {
			attrs = append(attrs, slog.Any(key, fields[i+1]))
		}
	}
	return attrs
}

// PerfLogger times one operation and logs its duration when it ends.
type PerfLogger struct {
	Logger
	start time.Time
}

// StartOperation starts timing operation. Every record logged through the
// returned PerfLogger carries the operation name.
func StartOperation(logger Logger, operation string) *PerfLogger {
	return &PerfLogger{
		Logger: logger.With("operation", operation),
		start:  time.Now(),
	}
}

// End logs the operation's duration at debug level.
func (p *PerfLogger) End(ctx context.Context, fields ...interface{}) {
	p.Debug(ctx, "Operation completed", p.withDuration(fields)...)
}

// EndWithError logs the operation's failure and duration at error level.
func (p *PerfLogger) EndWithError(ctx context.Context, err error, fields ...interface{}) {
	p.Error(ctx, err, "Operation failed", p.withDuration(fields)...)
}

func (p *PerfLogger) withDuration(fields []interface{}) []interface{} {
	return append(fields, "duration_ms", time.Since(p.start).Milliseconds())
}
