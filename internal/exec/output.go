package exec

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	jsoniter "github.com/json-iterator/go"
	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"

	errUtils "github.com/cloudposse/pomgraph/errors"
	"github.com/cloudposse/pomgraph/pkg/filesystem"
)

// Output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var headerColor = lipgloss.Color("#00FFFF")

// tabular is implemented by results that have a table rendering.
type tabular interface {
	headers() []string
	rows() [][]string
}

// ValidateFormat rejects unknown output formats. An empty format is the table.
func ValidateFormat(format string) error {
	switch format {
	case "", FormatTable, FormatJSON, FormatYAML:
		return nil
	}
	return errUtils.Build(fmt.Errorf("%w: '%s'", errUtils.ErrInvalidFormat, format)).
		WithHint("use --format table, json or yaml").
		WithExitCode(errUtils.ExitCodeUsage).
		Err()
}

// printOrWriteToFile renders data in format and writes it to file, or to w
// when file is empty.
func printOrWriteToFile(w io.Writer, format, file string, data tabular) error {
	if err := ValidateFormat(format); err != nil {
		return err
	}

	var out []byte
	switch format {
	case FormatJSON:
		b, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return err
		}
		out = append(b, '\n')

	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return err
		}
		if err := enc.Close(); err != nil {
			return err
		}
		out = buf.Bytes()

	default:
		out = []byte(renderTable(data.headers(), data.rows(), file == "" && isTerminal(w)) + "\n")
	}

	if file == "" {
		_, err := w.Write(out)
		return err
	}
	if err := filesystem.WriteFileAtomic(file, out, 0o644); err != nil {
		return errUtils.Build(fmt.Errorf("%w: %s: %w", errUtils.ErrWriteFile, file, err)).
			WithHint("check that the directory of --file exists and is writable").
			Err()
	}
	return nil
}

// renderTable lays rows out in columns. Headers are colored only on a terminal.
func renderTable(headers []string, rows [][]string, styled bool) string {
	if len(rows) == 0 {
		return "(none)"
	}
	t := table.New().
		Headers(headers...).
		Rows(rows...).
		BorderHeader(styled).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderRow(false).
		BorderColumn(false).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow && styled {
				return lipgloss.NewStyle().
					Foreground(headerColor).
					Bold(true).
					Padding(0, 2, 0, 0)
			}
			return lipgloss.NewStyle().Padding(0, 2, 0, 0)
		})
	return t.String()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
