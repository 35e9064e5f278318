package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/fbiengine/goksql/ksqllog"
)

// rawLogger is the default KsqlLogger, backed by log/slog.
type rawLogger struct {
	mu       sync.Mutex
	inner    *slog.Logger
	handler  *ksqlHandler
	levelVar *slog.LevelVar
	level    ksqllog.Level
	output   io.Writer
}

var _ KsqlLogger = (*rawLogger)(nil)
var _ ksqllog.SlogLogger = (*rawLogger)(nil)

func newRawLogger() KsqlLogger {
	log := &rawLogger{
		levelVar: &slog.LevelVar{},
		level:    ksqllog.LevelInfo,
		output:   os.Stderr,
	}
	log.levelVar.Set(slog.Level(ksqllog.LevelInfo))
	log.rebuild(slog.NewTextHandler(log.output, createOpts(log.levelVar)))
	return log
}

// rebuild must be called with mu held or before the logger is shared.
func (log *rawLogger) rebuild(h slog.Handler) {
	log.handler = newKsqlHandler(h, log.levelVar)
	log.inner = slog.New(log.handler)
}

func (log *rawLogger) SetLogLevel(level string) error {
	parsed, err := ksqllog.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return fmt.Errorf("error while setting log level. %w", err)
	}
	return log.SetLogLevelInt(parsed)
}

func (log *rawLogger) SetLogLevelInt(level ksqllog.Level) error {
	if _, err := ksqllog.LevelToString(level); err != nil {
		return fmt.Errorf("invalid log level: %d", level)
	}
	log.mu.Lock()
	defer log.mu.Unlock()
	log.level = level
	log.levelVar.Set(slog.Level(level))
	return nil
}

func (log *rawLogger) GetLogLevel() string {
	if s, err := ksqllog.LevelToString(log.GetLogLevelInt()); err == nil {
		return s
	}
	return "unknown"
}

func (log *rawLogger) GetLogLevelInt() ksqllog.Level {
	log.mu.Lock()
	defer log.mu.Unlock()
	return log.level
}

func (log *rawLogger) SetOutput(output io.Writer) {
	log.mu.Lock()
	defer log.mu.Unlock()
	log.output = output
	log.rebuild(slog.NewTextHandler(output, createOpts(log.levelVar)))
}

// SetHandler replaces the output handler. Masking stays in place because it happens above this layer.
func (log *rawLogger) SetHandler(handler slog.Handler) error {
	if handler == nil {
		return &loggerError{message: "handler cannot be nil"}
	}
	log.mu.Lock()
	defer log.mu.Unlock()
	log.rebuild(handler)
	return nil
}

func createOpts(level slog.Leveler) *slog.HandlerOptions {
	return &slog.HandlerOptions{
		Level:     level,
		AddSource: true,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			switch a.Key {
			case slog.TimeKey:
				if t, ok := a.Value.Any().(time.Time); ok {
					return slog.String(slog.TimeKey, t.Format(time.RFC3339Nano))
				}
			case slog.LevelKey:
				if l, ok := a.Value.Any().(slog.Level); ok {
					if name, err := ksqllog.LevelToString(ksqllog.Level(l)); err == nil {
						return slog.String(slog.LevelKey, strings.ToUpper(name))
					}
				}
			case slog.SourceKey:
				if src, ok := a.Value.Any().(*slog.Source); ok {
					return slog.String(slog.SourceKey, fmt.Sprintf("%s:%d", path.Base(src.File), src.Line))
				}
			}
			return a
		},
	}
}

func (log *rawLogger) current() (*slog.Logger, ksqllog.Level) {
	log.mu.Lock()
	defer log.mu.Unlock()
	return log.inner, log.level
}

// skipDepth is the wrapper chain: the rawLogger method, secretMaskingLogger and levelFilteringLogger.
// logRecord adds three more frames for runtime.Callers, itself and logWithSkip.
const skipDepth = 3

func logRecord(l *slog.Logger, configured ksqllog.Level, level ksqllog.Level, msg string) {
	if !ksqllog.Enabled(configured, level) {
		return
	}
	var pcs [1]uintptr
	runtime.Callers(skipDepth+3, pcs[:])
	r := slog.NewRecord(time.Now(), slog.Level(level), msg, pcs[0])
	_ = l.Handler().Handle(context.Background(), r)
}

func (log *rawLogger) logWithSkip(level ksqllog.Level, msg string) {
	l, configured := log.current()
	logRecord(l, configured, level, msg)
}

func (log *rawLogger) Tracef(format string, args ...interface{}) {
	log.logWithSkip(ksqllog.LevelTrace, fmt.Sprintf(format, args...))
}

func (log *rawLogger) Debugf(format string, args ...interface{}) {
	log.logWithSkip(ksqllog.LevelDebug, fmt.Sprintf(format, args...))
}

func (log *rawLogger) Infof(format string, args ...interface{}) {
	log.logWithSkip(ksqllog.LevelInfo, fmt.Sprintf(format, args...))
}

func (log *rawLogger) Warnf(format string, args ...interface{}) {
	log.logWithSkip(ksqllog.LevelWarn, fmt.Sprintf(format, args...))
}

func (log *rawLogger) Errorf(format string, args ...interface{}) {
	log.logWithSkip(ksqllog.LevelError, fmt.Sprintf(format, args...))
}

func (log *rawLogger) Fatalf(format string, args ...interface{}) {
	log.logWithSkip(ksqllog.LevelFatal, fmt.Sprintf(format, args...))
	os.Exit(1)
}

func (log *rawLogger) Trace(msg string) { log.logWithSkip(ksqllog.LevelTrace, msg) }
func (log *rawLogger) Debug(msg string) { log.logWithSkip(ksqllog.LevelDebug, msg) }
func (log *rawLogger) Info(msg string)  { log.logWithSkip(ksqllog.LevelInfo, msg) }
func (log *rawLogger) Warn(msg string)  { log.logWithSkip(ksqllog.LevelWarn, msg) }
func (log *rawLogger) Error(msg string) { log.logWithSkip(ksqllog.LevelError, msg) }

func (log *rawLogger) Fatal(msg string) {
	log.logWithSkip(ksqllog.LevelFatal, msg)
	os.Exit(1)
}

func (log *rawLogger) WithField(key string, value interface{}) LogEntry {
	l, _ := log.current()
	return &slogEntry{owner: log, logger: l.With(slog.Any(key, value))}
}

func (log *rawLogger) WithFields(fields map[string]any) LogEntry {
	attrs := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		attrs = append(attrs, k, v)
	}
	l, _ := log.current()
	return &slogEntry{owner: log, logger: l.With(attrs...)}
}

func (log *rawLogger) WithContext(ctx context.Context) LogEntry {
	attrs := extractContextAttrs(ctx)
	l, _ := log.current()
	if len(attrs) == 0 {
		return &slogEntry{owner: log, logger: l}
	}
	args := make([]any, len(attrs))
	for i, attr := range attrs {
		args[i] = attr
	}
	return &slogEntry{owner: log, logger: l.With(args...)}
}

// slogEntry carries attributes fixed at creation; the level is read from the owner on every call.
type slogEntry struct {
	owner  *rawLogger
	logger *slog.Logger
}

var _ LogEntry = (*slogEntry)(nil)

func (e *slogEntry) logWithSkip(level ksqllog.Level, msg string) {
	logRecord(e.logger, e.owner.GetLogLevelInt(), level, msg)
}

func (e *slogEntry) Tracef(format string, args ...interface{}) {
	e.logWithSkip(ksqllog.LevelTrace, fmt.Sprintf(format, args...))
}

func (e *slogEntry) Debugf(format string, args ...interface{}) {
	e.logWithSkip(ksqllog.LevelDebug, fmt.Sprintf(format, args...))
}

func (e *slogEntry) Infof(format string, args ...interface{}) {
	e.logWithSkip(ksqllog.LevelInfo, fmt.Sprintf(format, args...))
}

func (e *slogEntry) Warnf(format string, args ...interface{}) {
	e.logWithSkip(ksqllog.LevelWarn, fmt.Sprintf(format, args...))
}

func (e *slogEntry) Errorf(format string, args ...interface{}) {
	e.logWithSkip(ksqllog.LevelError, fmt.Sprintf(format, args...))
}

func (e *slogEntry) Fatalf(format string, args ...interface{}) {
	e.logWithSkip(ksqllog.LevelFatal, fmt.Sprintf(format, args...))
	os.Exit(1)
}

func (e *slogEntry) Trace(msg string) { e.logWithSkip(ksqllog.LevelTrace, msg) }
func (e *slogEntry) Debug(msg string) { e.logWithSkip(ksqllog.LevelDebug, msg) }
func (e *slogEntry) Info(msg string)  { e.logWithSkip(ksqllog.LevelInfo, msg) }
func (e *slogEntry) Warn(msg string)  { e.logWithSkip(ksqllog.LevelWarn, msg) }
func (e *slogEntry) Error(msg string) { e.logWithSkip(ksqllog.LevelError, msg) }

func (e *slogEntry) Fatal(msg string) {
	e.logWithSkip(ksqllog.LevelFatal, msg)
	os.Exit(1)
}
