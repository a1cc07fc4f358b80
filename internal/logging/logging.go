// Package logging opens the run log and hands out the logger that benchmark
// code receives as a dependency. Nothing here touches zap's global logger.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	// Dir is where the log file is created. Empty means the working directory.
	Dir string
	// File is the already rendered file name, e.g. benchmark_1.24.3.log.
	File string
	// Level is a zap level name; empty means debug.
	Level string
	// Console also writes warnings and errors to stderr.
	Console bool
}

// Sink owns the log file for the length of one command.
type Sink struct {
	Logger *zap.Logger
	Path   string

	file *os.File
}

// Open creates (or appends to) the log file and builds a logger writing one
// plain-text line per event: timestamp, level, message, fields.
func Open(cfg Config) (*Sink, error) {
	level := zapcore.DebugLevel
	if cfg.Level != "" {
		l, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("parse log level: %w", err)
		}
		level = l
	}

	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir %s: %w", cfg.Dir, err)
		}
	}
	path := filepath.Join(cfg.Dir, cfg.File)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}

	enc := zapcore.NewConsoleEncoder(encoderConfig())
	cores := []zapcore.Core{
		zapcore.NewCore(enc, zapcore.AddSync(f), level),
	}
	if cfg.Console {
		cores = append(cores, zapcore.NewCore(enc.Clone(), zapcore.Lock(os.Stderr), zapcore.WarnLevel))
	}

	return &Sink{
		Logger: zap.New(zapcore.NewTee(cores...)),
		Path:   path,
		file:   f,
	}, nil
}

// Close flushes the logger and closes the file. It is safe to call twice.
func (s *Sink) Close() error {
	if s.file == nil {
		return nil
	}
	// Syncing stderr fails on some terminals; only the file sync counts.
	_ = s.Logger.Sync()
	syncErr := s.file.Sync()
	closeErr := s.file.Close()
	s.file = nil

	if syncErr != nil {
		return fmt.Errorf("sync log: %w", syncErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close log: %w", closeErr)
	}
	return nil
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.EncodeDuration = zapcore.StringDurationEncoder
	cfg.CallerKey = zapcore.OmitKey
	cfg.StacktraceKey = zapcore.OmitKey
	return cfg
}
