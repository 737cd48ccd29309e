// Copyright (C) 2023-2026, VeilNet Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package logging

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ Logger = (*log)(nil)

// Logger defines the interface that is used to keep a record of all events
// that happen to the program.
type Logger interface {
	io.Writer

	// Fatal that the program should exit
	Fatal(msg string, fields ...zap.Field)
	// Error that the program can still execute with
	Error(msg string, fields ...zap.Field)
	// Warn of slightly dangerous states
	Warn(msg string, fields ...zap.Field)
	// Info the most common usages
	Info(msg string, fields ...zap.Field)
	// Debug information useful when attempting to understand behavior
	Debug(msg string, fields ...zap.Field)
	// Verbo information useful only when attempting a deep dive
	Verbo(msg string, fields ...zap.Field)

	// Stop flushes and closes the logger
	Stop()
}

type log struct {
	writer         io.WriteCloser
	internalLogger *zap.Logger
}

// NewLogger returns a logger named [prefix] writing to [w] at [level].
func NewLogger(prefix string, level Level, w io.WriteCloser) Logger {
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(newEncoderConfig()),
		zapcore.AddSync(w),
		zapcore.Level(level),
	)
	logger := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	if prefix != "" {
		logger = logger.Named(prefix)
	}
	return &log{
		writer:         w,
		internalLogger: logger,
	}
}

// NewDefaultLogger writes to stdout at [level].
func NewDefaultLogger(prefix string, level Level) Logger {
	return NewLogger(prefix, level, os.Stdout)
}

func newEncoderConfig() zapcore.EncoderConfig {
	config := zap.NewProductionEncoderConfig()
	config.EncodeLevel = zapcore.CapitalLevelEncoder
	config.EncodeTime = zapcore.ISO8601TimeEncoder
	return config
}

func (l *log) Write(p []byte) (int, error) {
	return l.writer.Write(p)
}

func (l *log) Stop() {
	_ = l.internalLogger.Sync()
	_ = l.writer.Close()
}

func (l *log) log(level Level, msg string, fields ...zap.Field) {
	if ce := l.internalLogger.Check(zapcore.Level(level), msg); ce != nil {
		ce.Write(fields...)
	}
}

func (l *log) Fatal(msg string, fields ...zap.Field) {
	l.log(Fatal, msg, fields...)
}

func (l *log) Error(msg string, fields ...zap.Field) {
	l.log(Error, msg, fields...)
}

func (l *log) Warn(msg string, fields ...zap.Field) {
	l.log(Warn, msg, fields...)
}

func (l *log) Info(msg string, fields ...zap.Field) {
	l.log(Info, msg, fields...)
}

func (l *log) Debug(msg string, fields ...zap.Field) {
	l.log(Debug, msg, fields...)
}

func (l *log) Verbo(msg string, fields ...zap.Field) {
	l.log(Verbo, msg, fields...)
}
