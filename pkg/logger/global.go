package logger

import "sync/atomic"

var defaultLogger atomic.Value

func init() {
	defaultLogger.Store(New())
}

// Default returns the process-wide logger.
func Default() *Logger {
	return defaultLogger.Load().(*Logger)
}

// SetDefault replaces the process-wide logger; nil is ignored.
func SetDefault(l *Logger) {
	if l != nil {
		defaultLogger.Store(l)
	}
}

// SetLevel sets the level of the default logger.
func SetLevel(level LogLevel) {
	Default().SetLevel(level.CharmLevel())
}

func Trace(msg any, keyvals ...any) { Default().Trace(msg, keyvals...) }

func Debug(msg any, keyvals ...any) { Default().Debug(msg, keyvals...) }

func Info(msg any, keyvals ...any) { Default().Info(msg, keyvals...) }

func Warn(msg any, keyvals ...any) { Default().Warn(msg, keyvals...) }

func Error(msg any, keyvals ...any) { Default().Error(msg, keyvals...) }

// With returns a child of the default logger.
func With(keyvals ...any) *Logger { return Default().With(keyvals...) }
