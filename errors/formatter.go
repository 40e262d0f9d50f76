package errors

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/cockroachdb/errors"
	"github.com/mattn/go-isatty"

	"github.com/cloudposse/pomgraph/pkg/perf"
)

// DefaultMaxLineLength is the wrap width used when none is configured.
const DefaultMaxLineLength = 80

// FormatterConfig controls error formatting.
type FormatterConfig struct {
	// Verbose adds the context table and the full error chain.
	Verbose bool

	// Color is one of "auto", "always" or "never".
	Color string

	MaxLineLength int
}

// DefaultFormatterConfig returns the configuration used by main.
func DefaultFormatterConfig() FormatterConfig {
	return FormatterConfig{
		Color:         "auto",
		MaxLineLength: DefaultMaxLineLength,
	}
}

// Format renders err with its hints, and in verbose mode its safe context and chain.
func Format(err error, config FormatterConfig) string {
	defer perf.Track(nil, "errors.Format")()

	if err == nil {
		return ""
	}

	useColor := shouldUseColor(config.Color)
	errorStyle := lipgloss.NewStyle()
	if useColor {
		errorStyle = errorStyle.Foreground(lipgloss.Color("#FF0000"))
	}

	var out strings.Builder
	msg := err.Error()
	if !config.Verbose && len(msg) > config.MaxLineLength {
		msg = wrapText(msg, config.MaxLineLength)
	}
	out.WriteString(errorStyle.Render(msg))

	if hints := errors.GetAllHints(err); len(hints) > 0 {
		out.WriteString("\n")
		for _, hint := range hints {
			out.WriteString("    hint: " + hint + "\n")
		}
	}

	if config.Verbose {
		if ctx := formatContextTable(err, useColor); ctx != "" {
			out.WriteString(ctx + "\n")
		}
		if details := errors.GetAllDetails(err); len(details) > 0 {
			out.WriteString("\n" + strings.Join(details, "\n") + "\n")
		}
		chain := lipgloss.NewStyle()
		if useColor {
			chain = chain.Foreground(lipgloss.Color("#808080"))
		}
		out.WriteString("\n" + chain.Render(fmt.Sprintf("%+v", err)))
	}

	return out.String()
}

// formatContextTable turns "k1=v1 k2=v2" safe details into a two column table.
func formatContextTable(err error, useColor bool) string {
	var rows [][]string
	for _, payload := range errors.GetAllSafeDetails(err) {
		for _, detail := range payload.SafeDetails {
			for _, pair := range strings.Fields(detail) {
				if k, v, ok := strings.Cut(pair, "="); ok {
					rows = append(rows, []string{k, v})
				}
			}
		}
	}
	if len(rows) == 0 {
		return ""
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Context", "Value").
		Rows(rows...)
	if useColor {
		t = t.StyleFunc(func(row, col int) lipgloss.Style {
			style := lipgloss.NewStyle().PaddingLeft(1).PaddingRight(1)
			if row == -1 { // header
				return style.Bold(true).Foreground(lipgloss.Color("#00A000"))
			}
			if col == 0 {
				return style.Foreground(lipgloss.Color("#808080"))
			}
			return style
		})
	}
	return "\n" + t.String()
}

func shouldUseColor(mode string) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		return isatty.IsTerminal(os.Stderr.Fd())
	}
}

func wrapText(text string, width int) string {
	if width <= 0 {
		width = DefaultMaxLineLength
	}

	var lines []string
	var line strings.Builder
	for _, word := range strings.Fields(text) {
		if line.Len() > 0 && line.Len()+1+len(word) > width {
			lines = append(lines, line.String())
			line.Reset()
		}
		if line.Len() > 0 {
			line.WriteByte(' ')
		}
		line.WriteString(word)
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}
