package logger

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	charm "github.com/charmbracelet/log"
)

// Logger is a charm logger with a Trace level.
type Logger struct {
	*charm.Logger
}

// NewLogger wraps an existing charm logger.
func NewLogger(l *charm.Logger) *Logger {
	return &Logger{Logger: l}
}

// New returns a Logger writing to stderr with the pomgraph styles.
func New() *Logger {
	return NewWithOutput(os.Stderr)
}

// NewWithOutput returns a styled Logger writing to w.
func NewWithOutput(w io.Writer) *Logger {
	l := charm.NewWithOptions(w, charm.Options{ReportTimestamp: false})
	l.SetStyles(Styles())
	return NewLogger(l)
}

// Trace logs below Debug.
func (l *Logger) Trace(msg any, keyvals ...any) {
	l.Log(TraceLevel, msg, keyvals...)
}

// With returns a child logger carrying keyvals.
func (l *Logger) With(keyvals ...any) *Logger {
	return NewLogger(l.Logger.With(keyvals...))
}

// GetLevelString returns the lower-case level name.
func (l *Logger) GetLevelString() string {
	switch level := l.GetLevel(); level {
	case TraceLevel:
		return "trace"
	case OffLevel:
		return "off"
	default:
		return strings.ToLower(level.String())
	}
}

// Styles returns the level and key styles used by every pomgraph logger.
func Styles() *charm.Styles {
	styles := charm.DefaultStyles()
	styles.Levels[TraceLevel] = lipgloss.NewStyle().
		SetString("TRCE").
		Bold(true).
		MaxWidth(4).
		Foreground(lipgloss.Color("61"))
	styles.Keys["err"] = lipgloss.NewStyle().Foreground(lipgloss.Color("204"))
	styles.Values["err"] = lipgloss.NewStyle().Bold(true)
	styles.Keys["project"] = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	styles.Keys["family"] = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	return styles
}
