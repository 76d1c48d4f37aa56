package logger

import (
	"sync"
)

// Textual log levels accepted in configuration.
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

var (
	global *Logger
	once   sync.Once
)

// Get returns the process-wide logger, initializing it at the given level on
// the first call. Later calls return the existing instance and ignore level.
func Get(level string) *Logger {
	once.Do(func() {
		global = newZapLogger(level)
	})
	return global
}
