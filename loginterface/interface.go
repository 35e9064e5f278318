// Package loginterface defines the logging interface used by goksql.
// To plug a custom logger into the executor, implement KsqlLogger and pass it to goksql.SetLogger.
package loginterface

import (
	"context"
	"io"

	"github.com/fbiengine/goksql/ksqllog"
)

// ClientLogContextHook is a client-defined hook that can be used to insert log
// fields based on the Context.
type ClientLogContextHook func(context.Context) string

// LogEntry allows for logging using a snapshot of field values.
// No implementation-specific logging details should be placed into this interface.
type LogEntry interface {
	Tracef(format string, args ...interface{})
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})

	Trace(msg string)
	Debug(msg string)
	Info(msg string)
	Warn(msg string)
	Error(msg string)
	Fatal(msg string)
}

// KsqlLogger abstracts away the underlying logging mechanism.
// No implementation-specific logging details should be placed into this interface.
type KsqlLogger interface {
	LogEntry
	WithField(key string, value interface{}) LogEntry
	WithFields(fields map[string]any) LogEntry

	SetLogLevel(level string) error
	SetLogLevelInt(level ksqllog.Level) error
	GetLogLevel() string
	GetLogLevelInt() ksqllog.Level
	WithContext(ctx context.Context) LogEntry
	SetOutput(output io.Writer)
}
