package ksqllog

import "log/slog"

// SlogLogger is an optional interface for advanced slog handler configuration.
// It is kept apart from loginterface.KsqlLogger so that logger implementations which are
// not slog based (logrus, test doubles) do not have to provide it.
//
// Example usage:
//
//	logger := goksql.GetLogger()
//	if slogLogger, ok := logger.(ksqllog.SlogLogger); ok {
//	    _ = slogLogger.SetHandler(slog.NewJSONHandler(os.Stdout, nil))
//	}
type SlogLogger interface {
	SetHandler(handler slog.Handler) error
}
