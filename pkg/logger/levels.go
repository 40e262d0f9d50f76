package logger

import (
	"fmt"
	"strings"

	charm "github.com/charmbracelet/log"

	errUtils "github.com/cloudposse/pomgraph/errors"
)

// TraceLevel sits one step below charm's DebugLevel.
const TraceLevel charm.Level = charm.DebugLevel - 1

// OffLevel is above every level charm emits.
const OffLevel charm.Level = charm.FatalLevel + 1

// Re-exported so callers don't import charm directly.
const (
	DebugLevel = charm.DebugLevel
	InfoLevel  = charm.InfoLevel
	WarnLevel  = charm.WarnLevel
	ErrorLevel = charm.ErrorLevel
)

// LogLevel is the configuration spelling of a level.
type LogLevel string

const (
	LogLevelOff     LogLevel = "Off"
	LogLevelTrace   LogLevel = "Trace"
	LogLevelDebug   LogLevel = "Debug"
	LogLevelInfo    LogLevel = "Info"
	LogLevelWarning LogLevel = "Warning"
	LogLevelError   LogLevel = "Error"
)

var levels = map[string]LogLevel{
	"off":     LogLevelOff,
	"trace":   LogLevelTrace,
	"debug":   LogLevelDebug,
	"info":    LogLevelInfo,
	"warning": LogLevelWarning,
	"warn":    LogLevelWarning,
	"error":   LogLevelError,
}

var charmLevels = map[LogLevel]charm.Level{
	LogLevelOff:     OffLevel,
	LogLevelTrace:   TraceLevel,
	LogLevelDebug:   charm.DebugLevel,
	LogLevelInfo:    charm.InfoLevel,
	LogLevelWarning: charm.WarnLevel,
	LogLevelError:   charm.ErrorLevel,
}

// ParseLogLevel accepts any casing; an empty string means Info.
func ParseLogLevel(level string) (LogLevel, error) {
	if level == "" {
		return LogLevelInfo, nil
	}
	if l, ok := levels[strings.ToLower(strings.TrimSpace(level))]; ok {
		return l, nil
	}
	return LogLevelInfo, fmt.Errorf("%w: '%s'. Supported log levels are Trace, Debug, Info, Warning, Error, Off",
		errUtils.ErrInvalidLogLevel, level)
}

// CharmLevel maps l onto the charm level, Info for unknown values.
func (l LogLevel) CharmLevel() charm.Level {
	if level, ok := charmLevels[l]; ok {
		return level
	}
	return charm.InfoLevel
}
