// Package logging provides zap logger helpers.
package logging

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// L is the process-wide logger. It defaults to a no-op logger so packages can
// log safely before Init runs.
var L = zap.NewNop()

// Init builds the process logger and installs it as L. When toFile is true
// the log is written to a timestamped file in the working directory instead
// of stderr.
func Init(level string, toFile bool) error {
	logger, err := New(level, toFile)
	if err != nil {
		return err
	}
	L = logger
	return nil
}

// New builds a zap.Logger at the requested level. Levels follow the CLI
// naming (DEBUG, INFO, WARNING, ERROR), case-insensitively.
func New(level string, toFile bool) (*zap.Logger, error) {
	parsed, err := parseLevel(level)
	if err != nil {
		return nil, err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(parsed)
	cfg.DisableStacktrace = false
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if toFile {
		cfg.OutputPaths = []string{LogFileName(time.Now())}
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

// LogFileName returns the timestamped log file name used when file logging
// is enabled.
func LogFileName(now time.Time) string {
	return fmt.Sprintf("filehound_%s.log", now.Format("20060102_150405"))
}

func parseLevel(level string) (zapcore.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "", "INFO":
		return zapcore.InfoLevel, nil
	case "DEBUG":
		return zapcore.DebugLevel, nil
	case "WARN", "WARNING":
		return zapcore.WarnLevel, nil
	case "ERROR":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InvalidLevel, fmt.Errorf("unknown log level %q", level)
	}
}
