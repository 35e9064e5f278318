package logger

import (
	"github.com/fbiengine/goksql/loginterface"
)

// Re-export types from loginterface package to avoid circular dependencies
// while maintaining a clean internal API
type (
	LogEntry             = loginterface.LogEntry
	KsqlLogger           = loginterface.KsqlLogger
	ClientLogContextHook = loginterface.ClientLogContextHook
)

// Unwrapper is implemented by the wrapping loggers of this package.
type Unwrapper interface {
	Unwrap() interface{}
}

type loggerError struct {
	message string
}

func (e *loggerError) Error() string {
	return e.message
}
