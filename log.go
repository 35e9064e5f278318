package goksql

import (
	loggerinternal "github.com/fbiengine/goksql/internal/logger"
	"github.com/fbiengine/goksql/loginterface"
)

// KsqlExecutionIDKey is the context key of the execution id attached to every Execute call.
const KsqlExecutionIDKey contextKey = "LOG_EXECUTION_ID"

// KsqlSourceKey is the context key of the queried source.
const KsqlSourceKey contextKey = "LOG_SOURCE"

func init() {
	SetLogKeys(KsqlExecutionIDKey, KsqlSourceKey)
	_ = logger.SetLogLevel("error")
}

type (
	// ClientLogContextHook is a client-defined hook that can be used to insert log
	// fields based on the Context.
	ClientLogContextHook = loginterface.ClientLogContextHook

	// LogEntry allows for logging using a snapshot of field values.
	LogEntry = loginterface.LogEntry

	// KsqlLogger is the logger interface used by goksql.
	KsqlLogger = loginterface.KsqlLogger
)

// SetLogKeys sets the context keys to be written to logs when logger.WithContext is used.
func SetLogKeys(keys ...contextKey) {
	ikeys := make([]interface{}, len(keys))
	for i, k := range keys {
		ikeys[i] = k
	}
	loggerinternal.SetLogKeys(ikeys)
}

// RegisterLogContextHook registers a hook that can be used to extract fields
// from the Context and associated with log messages using the provided key.
func RegisterLogContextHook(contextKey string, ctxExtractor ClientLogContextHook) {
	loggerinternal.RegisterLogContextHook(contextKey, ctxExtractor)
}

// logger delegates to the internal global logger, so SetLogger takes effect everywhere.
var logger KsqlLogger = loggerinternal.NewLoggerProxy()

// SetLogger sets the logger used by goksql. It is wrapped with secret masking and level filtering.
func SetLogger(inLogger KsqlLogger) error {
	return loggerinternal.SetLogger(inLogger)
}

// GetLogger returns the logger used by goksql.
func GetLogger() KsqlLogger {
	return logger
}

// CreateDefaultLogger creates a new slog based logger with secret masking.
// It does not modify global state; pass it to SetLogger to install it.
func CreateDefaultLogger() KsqlLogger {
	return loggerinternal.CreateDefaultLogger()
}

// NewLogrusLogger wraps a logrus logger so it can be passed to SetLogger.
var NewLogrusLogger = loggerinternal.NewLogrusLogger
