// Package logging builds the zap logger shared by every component.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultFileName is the log file created under the application data directory
const DefaultFileName = "frame-extractor.log"

// Options describes logger construction parameters
type Options struct {
	// Level is debug, info, warn or error; anything else means info
	Level string
	// File receives JSON log lines in addition to the console when set
	File string
	// Console receives human-readable lines; defaults to stderr
	Console io.Writer
	// Development enables caller annotations
	Development bool
}

// New constructs a zap logger that writes console lines and, optionally, a
// JSON log file. The returned close function flushes and closes the file.
func New(opts Options) (*zap.Logger, func() error, error) {
	level := ParseLevel(opts.Level)

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	consoleCfg := encoderCfg
	consoleCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.AddSync(console), level),
	}

	closeFn := func() error { return nil }
	if path := strings.TrimSpace(opts.File); path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("ensure log directory: %w", err)
		}
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file %s: %w", path, err)
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(file), level))
		closeFn = file.Close
	}

	zapOpts := []zap.Option{zap.ErrorOutput(zapcore.AddSync(os.Stderr))}
	if opts.Development {
		zapOpts = append(zapOpts, zap.AddCaller(), zap.Development())
	}

	logger := zap.New(zapcore.NewTee(cores...), zapOpts...)
	return logger, func() error {
		_ = logger.Sync()
		return closeFn()
	}, nil
}

// levels holds every name ParseLevel recognizes
var levels = map[string]zapcore.Level{
	"debug":   zapcore.DebugLevel,
	"info":    zapcore.InfoLevel,
	"warn":    zapcore.WarnLevel,
	"warning": zapcore.WarnLevel,
	"error":   zapcore.ErrorLevel,
}

// ParseLevel maps a level name to a zap level; unknown names mean info
func ParseLevel(level string) zapcore.Level {
	if l, ok := levels[strings.ToLower(strings.TrimSpace(level))]; ok {
		return l
	}
	return zapcore.InfoLevel
}

// ValidateLevel rejects level names ParseLevel would silently turn into info
func ValidateLevel(level string) error {
	if _, ok := levels[strings.ToLower(strings.TrimSpace(level))]; !ok {
		return fmt.Errorf("unknown log level %q: use debug, info, warn or error", level)
	}
	return nil
}

// WithJob returns a child logger tagged with a fresh job_id and the job ID
func WithJob(logger *zap.Logger) (*zap.Logger, string) {
	id := uuid.NewString()
	return logger.With(zap.String("job_id", id)), id
}
