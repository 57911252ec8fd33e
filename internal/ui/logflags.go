package ui

import "sync/atomic"

var traceLogEnabled atomic.Bool

// SetTraceLogEnabled toggles verbose logging of font loading and frame errors.
func SetTraceLogEnabled(enabled bool) {
	traceLogEnabled.Store(enabled)
}

func isTraceLogEnabled() bool {
	return traceLogEnabled.Load()
}
