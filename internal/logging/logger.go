// Package logging wraps zap with context-aware helpers.
package logging

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls logger construction.
type Config struct {
	Level  string
	Format string // "json" or "console"
	File   string // empty writes to stderr
}

// Validate checks config for errors.
func (c Config) Validate() error {
	if c.Format != "json" && c.Format != "console" {
		return fmt.Errorf("format must be 'json' or 'console', got %q", c.Format)
	}
	if _, err := zapcore.ParseLevel(c.Level); err != nil {
		return fmt.Errorf("invalid level %q: %w", c.Level, err)
	}
	return nil
}

// Logger wraps Zap with context-aware methods.
type Logger struct {
	zap *zap.Logger
}

// New creates a logger from config. When cfg.File is set the file is opened
// for append and its directory created.
func New(cfg Config) (*Logger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	level, _ := zapcore.ParseLevel(cfg.Level)

	var sink zapcore.WriteSyncer = zapcore.Lock(os.Stderr)
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		sink = zapcore.Lock(f)
	}

	core := zapcore.NewCore(newEncoder(cfg.Format), sink, level)
	return &Logger{zap: zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))}, nil
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{zap: zap.NewNop()}
}

// newEncoder creates JSON or console encoder.
func newEncoder(format string) zapcore.Encoder {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	if format == "console" {
		return zapcore.NewConsoleEncoder(encoderCfg)
	}
	return zapcore.NewJSONEncoder(encoderCfg)
}

// Context-aware logging methods

func (l *Logger) Debug(ctx context.Context, msg string, fields ...zap.Field) {
	l.zap.Debug(msg, append(ContextFields(ctx), fields...)...)
}

func (l *Logger) Info(ctx context.Context, msg string, fields ...zap.Field) {
	l.zap.Info(msg, append(ContextFields(ctx), fields...)...)
}

func (l *Logger) Warn(ctx context.Context, msg string, fields ...zap.Field) {
	l.zap.Warn(msg, append(ContextFields(ctx), fields...)...)
}

func (l *Logger) Error(ctx context.Context, msg string, fields ...zap.Field) {
	l.zap.Error(msg, append(ContextFields(ctx), fields...)...)
}

// Child logger creation

func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{zap: l.zap.With(fields...)}
}

func (l *Logger) Named(name string) *Logger {
	return &Logger{zap: l.zap.Named(name)}
}

// Printf logs at info level. It lets the logger stand in for libraries that
// expect a printf-style logger.
func (l *Logger) Printf(format string, args ...interface{}) {
	l.zap.Sugar().Infof(format, args...)
}

// Fatalf logs at error level. It never exits the process.
func (l *Logger) Fatalf(format string, args ...interface{}) {
	l.zap.Sugar().Errorf(format, args...)
}

// Sync flushes any buffered log entries.
func (l *Logger) Sync() error {
	err := l.zap.Sync()
	// Ignore sync errors on stdout/stderr (common on Linux)
	if err != nil && isStdoutSyncError(err) {
		return nil
	}
	return err
}

func isStdoutSyncError(err error) bool {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno == syscall.EINVAL || errno == syscall.ENOTTY
	}
	return false
}
