// Package logging configures the process-wide zap logger.
//
// The TUI owns the terminal, so diagnostics go to a rotating JSON file.
// CLI commands can add a console core on stderr with Verbose.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls where and how much is logged.
type Config struct {
	// Level is a zap level name: debug, info, warn, error.
	Level string

	// File is the log file path. Empty disables file logging.
	File string

	// Verbose adds a human-readable core on Console.
	Verbose bool

	// Console receives verbose output. Defaults to os.Stderr.
	Console io.Writer

	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// DefaultConfig returns info-level logging to the default state file.
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		File:       DefaultLogPath(),
		MaxSizeMB:  10,
		MaxBackups: 3,
		MaxAgeDays: 28,
	}
}

// ConfigFromEnv applies STUDYPLAN_LOG_LEVEL and STUDYPLAN_LOG_FILE on top
// of DefaultConfig.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if v := os.Getenv("STUDYPLAN_LOG_LEVEL"); v != "" {
		cfg.Level = v
	}
	if v, ok := os.LookupEnv("STUDYPLAN_LOG_FILE"); ok {
		cfg.File = v
	}
	return cfg
}

// DefaultLogPath returns $XDG_STATE_HOME/studyplan/studyplan.log, falling
// back to ~/.local/state. Returns "" if no home directory is available.
func DefaultLogPath() string {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		stateHome = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateHome, "studyplan", "studyplan.log")
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

// New builds a logger from cfg. With neither a file nor Verbose set it
// returns a no-op logger.
func New(cfg Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	var cores []zapcore.Core
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		fileWriter := zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		})
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), fileWriter, level))
	}
	if cfg.Verbose {
		console := cfg.Console
		if console == nil {
			console = os.Stderr
		}
		enc := encoderConfig()
		enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(console), level))
	}

	if len(cores) == 0 {
		return zap.NewNop(), nil
	}
	return zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel)), nil
}

// Init builds a logger from cfg and installs it as the zap global.
// The returned function flushes and restores the previous global.
func Init(cfg Config) (func(), error) {
	logger, err := New(cfg)
	if err != nil {
		return func() {}, err
	}
	restore := zap.ReplaceGlobals(logger)
	return func() {
		_ = logger.Sync()
		restore()
	}, nil
}
