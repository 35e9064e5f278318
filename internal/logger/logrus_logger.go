package logger

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/fbiengine/goksql/ksqllog"
)

// logrusLogger adapts a *logrus.Logger to KsqlLogger.
type logrusLogger struct {
	inner *logrus.Logger
	off   bool
}

var _ KsqlLogger = (*logrusLogger)(nil)

// NewLogrusLogger returns a KsqlLogger writing through l. Pass the result to SetLogger.
func NewLogrusLogger(l *logrus.Logger) KsqlLogger {
	if l == nil {
		l = logrus.New()
	}
	return &logrusLogger{inner: l}
}

func toLogrusLevel(level ksqllog.Level) logrus.Level {
	switch {
	case level <= ksqllog.LevelTrace:
		return logrus.TraceLevel
	case level <= ksqllog.LevelDebug:
		return logrus.DebugLevel
	case level <= ksqllog.LevelInfo:
		return logrus.InfoLevel
	case level <= ksqllog.LevelWarn:
		return logrus.WarnLevel
	case level <= ksqllog.LevelError:
		return logrus.ErrorLevel
	default:
		return logrus.FatalLevel
	}
}

func fromLogrusLevel(level logrus.Level) ksqllog.Level {
	switch level {
	case logrus.TraceLevel:
		return ksqllog.LevelTrace
	case logrus.DebugLevel:
		return ksqllog.LevelDebug
	case logrus.InfoLevel:
		return ksqllog.LevelInfo
	case logrus.WarnLevel:
		return ksqllog.LevelWarn
	case logrus.ErrorLevel:
		return ksqllog.LevelError
	default:
		return ksqllog.LevelFatal
	}
}

func (l *logrusLogger) SetLogLevel(level string) error {
	parsed, err := ksqllog.ParseLevel(level)
	if err != nil {
		return err
	}
	return l.SetLogLevelInt(parsed)
}

func (l *logrusLogger) SetLogLevelInt(level ksqllog.Level) error {
	if _, err := ksqllog.LevelToString(level); err != nil {
		return err
	}
	l.off = level == ksqllog.LevelOff
	if !l.off {
		l.inner.SetLevel(toLogrusLevel(level))
	}
	return nil
}

func (l *logrusLogger) GetLogLevel() string {
	s, _ := ksqllog.LevelToString(l.GetLogLevelInt())
	return s
}

func (l *logrusLogger) GetLogLevelInt() ksqllog.Level {
	if l.off {
		return ksqllog.LevelOff
	}
	return fromLogrusLevel(l.inner.GetLevel())
}

func (l *logrusLogger) SetOutput(output io.Writer) {
	l.inner.SetOutput(output)
}

func (l *logrusLogger) entry() *logrus.Entry {
	return logrus.NewEntry(l.inner)
}

func (l *logrusLogger) WithField(key string, value interface{}) LogEntry {
	return &logrusEntry{inner: l.entry().WithField(key, value)}
}

func (l *logrusLogger) WithFields(fields map[string]any) LogEntry {
	return &logrusEntry{inner: l.entry().WithFields(logrus.Fields(fields))}
}

func (l *logrusLogger) WithContext(ctx context.Context) LogEntry {
	e := l.entry().WithContext(ctx)
	for _, f := range contextFields(ctx) {
		e = e.WithField(f[0], f[1])
	}
	return &logrusEntry{inner: e}
}

func (l *logrusLogger) Tracef(format string, args ...interface{}) { l.inner.Tracef(format, args...) }
func (l *logrusLogger) Debugf(format string, args ...interface{}) { l.inner.Debugf(format, args...) }
func (l *logrusLogger) Infof(format string, args ...interface{})  { l.inner.Infof(format, args...) }
func (l *logrusLogger) Warnf(format string, args ...interface{})  { l.inner.Warnf(format, args...) }
func (l *logrusLogger) Errorf(format string, args ...interface{}) { l.inner.Errorf(format, args...) }
func (l *logrusLogger) Fatalf(format string, args ...interface{}) { l.inner.Fatalf(format, args...) }

func (l *logrusLogger) Trace(msg string) { l.inner.Trace(msg) }
func (l *logrusLogger) Debug(msg string) { l.inner.Debug(msg) }
func (l *logrusLogger) Info(msg string)  { l.inner.Info(msg) }
func (l *logrusLogger) Warn(msg string)  { l.inner.Warn(msg) }
func (l *logrusLogger) Error(msg string) { l.inner.Error(msg) }
func (l *logrusLogger) Fatal(msg string) { l.inner.Fatal(msg) }

type logrusEntry struct {
	inner *logrus.Entry
}

func (e *logrusEntry) Tracef(format string, args ...interface{}) { e.inner.Tracef(format, args...) }
func (e *logrusEntry) Debugf(format string, args ...interface{}) { e.inner.Debugf(format, args...) }
func (e *logrusEntry) Infof(format string, args ...interface{})  { e.inner.Infof(format, args...) }
func (e *logrusEntry) Warnf(format string, args ...interface{})  { e.inner.Warnf(format, args...) }
func (e *logrusEntry) Errorf(format string, args ...interface{}) { e.inner.Errorf(format, args...) }
func (e *logrusEntry) Fatalf(format string, args ...interface{}) { e.inner.Fatalf(format, args...) }

func (e *logrusEntry) Trace(msg string) { e.inner.Trace(msg) }
func (e *logrusEntry) Debug(msg string) { e.inner.Debug(msg) }
func (e *logrusEntry) Info(msg string)  { e.inner.Info(msg) }
func (e *logrusEntry) Warn(msg string)  { e.inner.Warn(msg) }
func (e *logrusEntry) Error(msg string) { e.inner.Error(msg) }
func (e *logrusEntry) Fatal(msg string) { e.inner.Fatal(msg) }
