package logger

import (
	"context"
	"io"

	"github.com/fbiengine/goksql/ksqllog"
)

// levelFilteringLogger drops messages below the configured level before they reach
// the secret masking layer, so that masking and formatting are only paid for output that is kept.
type levelFilteringLogger struct {
	inner KsqlLogger
}

var _ KsqlLogger = (*levelFilteringLogger)(nil)

func (l *levelFilteringLogger) Unwrap() interface{} {
	return l.inner
}

func newLevelFilteringLogger(inner KsqlLogger) *levelFilteringLogger {
	if inner == nil {
		panic("inner logger cannot be nil")
	}
	return &levelFilteringLogger{inner: inner}
}

func (l *levelFilteringLogger) shouldLog(messageLevel ksqllog.Level) bool {
	return ksqllog.Enabled(l.inner.GetLogLevelInt(), messageLevel)
}

func (l *levelFilteringLogger) Tracef(format string, args ...interface{}) {
	if l.shouldLog(ksqllog.LevelTrace) {
		l.inner.Tracef(format, args...)
	}
}

func (l *levelFilteringLogger) Debugf(format string, args ...interface{}) {
	if l.shouldLog(ksqllog.LevelDebug) {
		l.inner.Debugf(format, args...)
	}
}

func (l *levelFilteringLogger) Infof(format string, args ...interface{}) {
	if l.shouldLog(ksqllog.LevelInfo) {
		l.inner.Infof(format, args...)
	}
}

func (l *levelFilteringLogger) Warnf(format string, args ...interface{}) {
	if l.shouldLog(ksqllog.LevelWarn) {
		l.inner.Warnf(format, args...)
	}
}

func (l *levelFilteringLogger) Errorf(format string, args ...interface{}) {
	if l.shouldLog(ksqllog.LevelError) {
		l.inner.Errorf(format, args...)
	}
}

func (l *levelFilteringLogger) Fatalf(format string, args ...interface{}) {
	if l.shouldLog(ksqllog.LevelFatal) {
		l.inner.Fatalf(format, args...)
	}
}

func (l *levelFilteringLogger) Trace(msg string) {
	if l.shouldLog(ksqllog.LevelTrace) {
		l.inner.Trace(msg)
	}
}

func (l *levelFilteringLogger) Debug(msg string) {
	if l.shouldLog(ksqllog.LevelDebug) {
		l.inner.Debug(msg)
	}
}

func (l *levelFilteringLogger) Info(msg string) {
	if l.shouldLog(ksqllog.LevelInfo) {
		l.inner.Info(msg)
	}
}

func (l *levelFilteringLogger) Warn(msg string) {
	if l.shouldLog(ksqllog.LevelWarn) {
		l.inner.Warn(msg)
	}
}

func (l *levelFilteringLogger) Error(msg string) {
	if l.shouldLog(ksqllog.LevelError) {
		l.inner.Error(msg)
	}
}

func (l *levelFilteringLogger) Fatal(msg string) {
	if l.shouldLog(ksqllog.LevelFatal) {
		l.inner.Fatal(msg)
	}
}

func (l *levelFilteringLogger) WithField(key string, value interface{}) LogEntry {
	return &levelFilteringEntry{parent: l, inner: l.inner.WithField(key, value)}
}

func (l *levelFilteringLogger) WithFields(fields map[string]any) LogEntry {
	return &levelFilteringEntry{parent: l, inner: l.inner.WithFields(fields)}
}

func (l *levelFilteringLogger) WithContext(ctx context.Context) LogEntry {
	return &levelFilteringEntry{parent: l, inner: l.inner.WithContext(ctx)}
}

func (l *levelFilteringLogger) SetLogLevel(level string) error {
	return l.inner.SetLogLevel(level)
}

func (l *levelFilteringLogger) SetLogLevelInt(level ksqllog.Level) error {
	return l.inner.SetLogLevelInt(level)
}

func (l *levelFilteringLogger) GetLogLevel() string {
	return l.inner.GetLogLevel()
}

func (l *levelFilteringLogger) GetLogLevelInt() ksqllog.Level {
	return l.inner.GetLogLevelInt()
}

func (l *levelFilteringLogger) SetOutput(output io.Writer) {
	l.inner.SetOutput(output)
}

type levelFilteringEntry struct {
	parent *levelFilteringLogger
	inner  LogEntry
}

func (e *levelFilteringEntry) Tracef(format string, args ...interface{}) {
	if e.parent.shouldLog(ksqllog.LevelTrace) {
		e.inner.Tracef(format, args...)
	}
}

func (e *levelFilteringEntry) Debugf(format string, args ...interface{}) {
	if e.parent.shouldLog(ksqllog.LevelDebug) {
		e.inner.Debugf(format, args...)
	}
}

func (e *levelFilteringEntry) Infof(format string, args ...interface{}) {
	if e.parent.shouldLog(ksqllog.LevelInfo) {
		e.inner.Infof(format, args...)
	}
}

func (e *levelFilteringEntry) Warnf(format string, args ...interface{}) {
	if e.parent.shouldLog(ksqllog.LevelWarn) {
		e.inner.Warnf(format, args...)
	}
}

func (e *levelFilteringEntry) Errorf(format string, args ...interface{}) {
	if e.parent.shouldLog(ksqllog.LevelError) {
		e.inner.Errorf(format, args...)
	}
}

func (e *levelFilteringEntry) Fatalf(format string, args ...interface{}) {
	if e.parent.shouldLog(ksqllog.LevelFatal) {
		e.inner.Fatalf(format, args...)
	}
}

func (e *levelFilteringEntry) Trace(msg string) {
	if e.parent.shouldLog(ksqllog.LevelTrace) {
		e.inner.Trace(msg)
	}
}

func (e *levelFilteringEntry) Debug(msg string) {
	if e.parent.shouldLog(ksqllog.LevelDebug) {
		e.inner.Debug(msg)
	}
}

func (e *levelFilteringEntry) Info(msg string) {
	if e.parent.shouldLog(ksqllog.LevelInfo) {
		e.inner.Info(msg)
	}
}

func (e *levelFilteringEntry) Warn(msg string) {
	if e.parent.shouldLog(ksqllog.LevelWarn) {
		e.inner.Warn(msg)
	}
}

func (e *levelFilteringEntry) Error(msg string) {
	if e.parent.shouldLog(ksqllog.LevelError) {
		e.inner.Error(msg)
	}
}

func (e *levelFilteringEntry) Fatal(msg string) {
	if e.parent.shouldLog(ksqllog.LevelFatal) {
		e.inner.Fatal(msg)
	}
}
