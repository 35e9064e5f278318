package logger

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

var (
	contextConfigMu       sync.RWMutex
	logKeys               []interface{}
	clientLogContextHooks map[string]ClientLogContextHook
)

// SetLogKeys sets the context keys whose values are attached to entries created with WithContext.
func SetLogKeys(keys []interface{}) {
	contextConfigMu.Lock()
	defer contextConfigMu.Unlock()

	logKeys = make([]interface{}, len(keys))
	copy(logKeys, keys)
}

// GetLogKeys returns a copy of the current log keys
func GetLogKeys() []interface{} {
	contextConfigMu.RLock()
	defer contextConfigMu.RUnlock()

	keysCopy := make([]interface{}, len(logKeys))
	copy(keysCopy, logKeys)
	return keysCopy
}

// RegisterLogContextHook registers a hook for extracting context fields.
func RegisterLogContextHook(key string, hook ClientLogContextHook) {
	contextConfigMu.Lock()
	defer contextConfigMu.Unlock()

	if clientLogContextHooks == nil {
		clientLogContextHooks = make(map[string]ClientLogContextHook)
	}
	clientLogContextHooks[key] = hook
}

// GetClientLogContextHooks returns a copy of registered hooks
func GetClientLogContextHooks() map[string]ClientLogContextHook {
	contextConfigMu.RLock()
	defer contextConfigMu.RUnlock()

	hooksCopy := make(map[string]ClientLogContextHook, len(clientLogContextHooks))
	for k, v := range clientLogContextHooks {
		hooksCopy[k] = v
	}
	return hooksCopy
}

// contextFields returns the masked key/value pairs found in ctx, keys first, then hooks sorted by name.
func contextFields(ctx context.Context) [][2]string {
	if ctx == nil {
		return nil
	}

	contextConfigMu.RLock()
	defer contextConfigMu.RUnlock()

	fields := make([][2]string, 0, len(logKeys)+len(clientLogContextHooks))
	for _, key := range logKeys {
		if val := ctx.Value(key); val != nil {
			fields = append(fields, [2]string{fmt.Sprint(key), MaskSecrets(fmt.Sprint(val))})
		}
	}

	hookKeys := make([]string, 0, len(clientLogContextHooks))
	for key := range clientLogContextHooks {
		hookKeys = append(hookKeys, key)
	}
	sort.Strings(hookKeys)
	for _, key := range hookKeys {
		if val := clientLogContextHooks[key](ctx); val != "" {
			fields = append(fields, [2]string{key, MaskSecrets(val)})
		}
	}
	return fields
}

func extractContextAttrs(ctx context.Context) []slog.Attr {
	fields := contextFields(ctx)
	attrs := make([]slog.Attr, 0, len(fields))
	for _, f := range fields {
		attrs = append(attrs, slog.String(f[0], f[1]))
	}
	return attrs
}
