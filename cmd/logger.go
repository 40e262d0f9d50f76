package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	errUtils "github.com/cloudposse/pomgraph/errors"
	log "github.com/cloudposse/pomgraph/pkg/logger"
	"github.com/cloudposse/pomgraph/pkg/perf"
	"github.com/cloudposse/pomgraph/pkg/schema"
)

const (
	logFileStdout = "/dev/stdout"
	logFileStderr = "/dev/stderr"
	logFileNull   = "/dev/null"
)

// setupLogger points the default logger at logs.file with logs.level.
func setupLogger(config *schema.Configuration) error {
	level, err := log.ParseLogLevel(config.Logs.Level)
	if err != nil {
		return err
	}

	var out io.Writer
	switch config.Logs.File {
	case "", logFileStderr:
		out = os.Stderr
	case logFileStdout:
		out = os.Stdout
	case logFileNull:
		out = io.Discard
	default:
		f, err := os.OpenFile(config.Logs.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return errUtils.Build(fmt.Errorf("%w: %s: %w", errUtils.ErrWriteFile, config.Logs.File, err)).
				WithHint("set --logs-file or logs.file to a writable path").
				Err()
		}
		if logFile != nil {
			_ = logFile.Close()
		}
		logFile = f
		out = f
	}

	log.SetDefault(log.NewWithOutput(out))
	log.SetLevel(level)
	return nil
}

// printPerfSummary writes the tracked functions, slowest first.
func printPerfSummary(w io.Writer, stats []perf.Stat) {
	if len(stats) == 0 {
		return
	}
	rows := make([][]string, 0, len(stats))
	for _, s := range stats {
		rows = append(rows, []string{s.Name, fmt.Sprint(s.Count), s.Total.String(), s.P50.String(), s.P95.String(), s.Max.String()})
	}
	t := table.New().
		Headers("FUNCTION", "CALLS", "TOTAL", "P50", "P95", "MAX").
		Rows(rows...).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderRow(false).
		BorderColumn(false).
		StyleFunc(func(row, col int) lipgloss.Style {
			return lipgloss.NewStyle().Padding(0, 2, 0, 0)
		})
	fmt.Fprintln(w, t.String())
}
