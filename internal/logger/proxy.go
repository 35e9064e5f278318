package logger

import (
	"context"
	"io"
	"log/slog"

	"github.com/fbiengine/goksql/ksqllog"
)

// Proxy delegates every call to whatever logger is currently global,
// so callers may hold on to it across SetLogger calls.
type Proxy struct{}

var _ KsqlLogger = (*Proxy)(nil)

// NewLoggerProxy returns a proxy bound to the global logger.
func NewLoggerProxy() *Proxy {
	return &Proxy{}
}

func (p *Proxy) Tracef(format string, args ...interface{}) { GetLogger().Tracef(format, args...) }
func (p *Proxy) Debugf(format string, args ...interface{}) { GetLogger().Debugf(format, args...) }
func (p *Proxy) Infof(format string, args ...interface{})  { GetLogger().Infof(format, args...) }
func (p *Proxy) Warnf(format string, args ...interface{})  { GetLogger().Warnf(format, args...) }
func (p *Proxy) Errorf(format string, args ...interface{}) { GetLogger().Errorf(format, args...) }
func (p *Proxy) Fatalf(format string, args ...interface{}) { GetLogger().Fatalf(format, args...) }

func (p *Proxy) Trace(msg string) { GetLogger().Trace(msg) }
func (p *Proxy) Debug(msg string) { GetLogger().Debug(msg) }
func (p *Proxy) Info(msg string)  { GetLogger().Info(msg) }
func (p *Proxy) Warn(msg string)  { GetLogger().Warn(msg) }
func (p *Proxy) Error(msg string) { GetLogger().Error(msg) }
func (p *Proxy) Fatal(msg string) { GetLogger().Fatal(msg) }

func (p *Proxy) WithField(key string, value interface{}) LogEntry {
	return GetLogger().WithField(key, value)
}

func (p *Proxy) WithFields(fields map[string]any) LogEntry {
	return GetLogger().WithFields(fields)
}

func (p *Proxy) WithContext(ctx context.Context) LogEntry {
	return GetLogger().WithContext(ctx)
}

func (p *Proxy) SetLogLevel(level string) error {
	return GetLogger().SetLogLevel(level)
}

func (p *Proxy) SetLogLevelInt(level ksqllog.Level) error {
	return GetLogger().SetLogLevelInt(level)
}

func (p *Proxy) GetLogLevel() string {
	return GetLogger().GetLogLevel()
}

func (p *Proxy) GetLogLevelInt() ksqllog.Level {
	return GetLogger().GetLogLevelInt()
}

func (p *Proxy) SetOutput(output io.Writer) {
	GetLogger().SetOutput(output)
}

// SetHandler implements ksqllog.SlogLogger by walking the wrapper chain down to the slog based logger.
func (p *Proxy) SetHandler(handler slog.Handler) error {
	var current interface{} = GetLogger()
	for current != nil {
		if sl, ok := current.(ksqllog.SlogLogger); ok {
			return sl.SetHandler(handler)
		}
		u, ok := current.(Unwrapper)
		if !ok {
			break
		}
		current = u.Unwrap()
	}
	return &loggerError{message: "underlying logger does not support slog handlers"}
}
