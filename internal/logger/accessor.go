package logger

import (
	"errors"
	"log"
	"sync"
)

// The accessor lets the root package and internal packages share one global logger
// without import cycles.
var (
	loggerAccessorMu sync.Mutex
	// globalLogger is the wrapped logger: level filtering -> secret masking -> raw logger
	globalLogger KsqlLogger
)

// GetLogger returns the global logger for use by internal packages
func GetLogger() KsqlLogger {
	loggerAccessorMu.Lock()
	defer loggerAccessorMu.Unlock()

	return globalLogger
}

// SetLogger sets the raw (base) logger implementation and wraps it with the standard protection layers:
//  1. Secret masking (passwords, tokens and keys never reach the output)
//  2. Level filtering (skips formatting and masking of messages that would be dropped)
//
// The resulting chain is
//
//	globalLogger = levelFilteringLogger → secretMaskingLogger → rawLogger
//
// Loggers that are already wrapped (e.g. returned by CreateDefaultLogger) are unwrapped first
// so the layers are never applied twice. A Proxy is rejected because it would recurse forever.
func SetLogger(providedLogger KsqlLogger) error {
	if providedLogger == nil {
		return errors.New("logger cannot be nil")
	}
	loggerAccessorMu.Lock()
	defer loggerAccessorMu.Unlock()

	if _, isProxy := providedLogger.(*Proxy); isProxy {
		return errors.New("cannot set Proxy as raw logger - it would create infinite recursion")
	}

	rawLogger := providedLogger
	if levelFiltering, ok := rawLogger.(*levelFilteringLogger); ok {
		rawLogger = levelFiltering.inner
	}
	if secretMasking, ok := rawLogger.(*secretMaskingLogger); ok {
		rawLogger = secretMasking.inner
	}

	globalLogger = newLevelFilteringLogger(newSecretMaskingLogger(rawLogger))
	return nil
}

func init() {
	if err := SetLogger(newRawLogger()); err != nil {
		log.Panicf("cannot set default logger. %v", err)
	}
}

// CreateDefaultLogger creates a new instance of the default logger with the standard protection layers.
// It does not modify the global logger.
func CreateDefaultLogger() KsqlLogger {
	return newLevelFilteringLogger(newSecretMaskingLogger(newRawLogger()))
}
