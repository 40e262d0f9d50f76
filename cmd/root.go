package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	errUtils "github.com/cloudposse/pomgraph/errors"
	cfg "github.com/cloudposse/pomgraph/pkg/config"
	log "github.com/cloudposse/pomgraph/pkg/logger"
	"github.com/cloudposse/pomgraph/pkg/perf"
	"github.com/cloudposse/pomgraph/pkg/schema"
)

// cliConfig is loaded in PersistentPreRunE for every command that needs it.
var cliConfig schema.Configuration

// logFile is the open --logs-file, if it is not a standard stream.
var logFile *os.File

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "pomgraph",
	Short: "Resolve and propagate versions across a forest of project descriptors",
	Long: `pomgraph reads a tree of Maven-style project descriptors, resolves their dependencies ` +
		`and properties, classifies their roles, and moves whole families of projects to new versions.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Usage is printed for flag errors only, not for failures of the command itself.
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true

		if skipConfig(cmd) {
			return nil
		}
		return initCliConfig(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			return errUtils.Build(fmt.Errorf("%w: '%s'", errUtils.ErrUnknownSubcommand, args[0])).
				WithHint("run 'pomgraph --help' for the list of commands").
				WithExitCode(errUtils.ExitCodeUsage).
				Err()
		}
		return cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() error {
	RootCmd.SilenceErrors = true
	RootCmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return errUtils.Build(fmt.Errorf("%w: %w", errUtils.ErrInvalidArguments, err)).
			WithHintf("run '%s --help' for usage", c.CommandPath()).
			WithExitCode(errUtils.ExitCodeUsage).
			Err()
	})
	return RootCmd.ExecuteContext(context.Background())
}

// Cleanup closes the log file and prints the performance summary when --perf is set.
func Cleanup() {
	if cliConfig.Profiler.Enabled {
		printPerfSummary(os.Stderr, perf.Snapshot())
	}
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}

func init() {
	pf := RootCmd.PersistentFlags()
	pf.String("base-path", "", "Root of the descriptor forest. Overrides base_path in pomgraph.yaml and POMGRAPH_BASE_PATH")
	pf.String("config", "", "Path to a pomgraph.yaml file or a directory that contains one")
	pf.String("logs-level", "", "Logs level. Supported log levels are Trace, Debug, Info, Warning, Off. If the log level is set to Off, pomgraph will not log any messages")
	pf.String("logs-file", "", "The file to write pomgraph logs to. Logs can be written to any file or any standard file descriptor, including '/dev/stdout', '/dev/stderr' and '/dev/null'")
	pf.StringP("format", "f", "table", "Output format: table, json, yaml")
	pf.String("file", "", "Write the output to a file instead of stdout")
	pf.Bool("perf", false, "Print call counts and latencies of the main operations on exit")
}

// skipConfig is true for commands that run without a forest.
func skipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[annotationNoConfig] == "true" {
			return true
		}
	}
	return cmd.Name() == "help" || cmd.Name() == cobra.ShellCompRequestCmd
}

const annotationNoConfig = "pomgraph/no-config"

// initCliConfig loads the configuration with the global flags applied and
// sets up logging and profiling from it.
func initCliConfig(cmd *cobra.Command) error {
	flags := cmd.Flags()
	info := schema.ConfigAndFlags{
		BasePath:   stringFlag(flags, "base-path"),
		ConfigPath: stringFlag(flags, "config"),
		LogsLevel:  stringFlag(flags, "logs-level"),
		LogsFile:   stringFlag(flags, "logs-file"),
		Profile:    boolFlag(flags, "perf"),
	}
	if flags.Lookup("superpom-bump") != nil {
		info.SuperpomBump = stringFlag(flags, "superpom-bump")
		info.Mismatch = stringFlag(flags, "mismatch")
	}

	loaded, err := cfg.LoadConfig(info)
	if err != nil {
		return err
	}
	cliConfig = loaded

	if err := setupLogger(&cliConfig); err != nil {
		return err
	}
	perf.EnableTracking(cliConfig.Profiler.Enabled)
	log.Debug("Loaded configuration", "base_path", cliConfig.BasePathAbsolute, "config", cliConfig.CliConfigPath)
	return nil
}

func stringFlag(flags *pflag.FlagSet, name string) string {
	v, _ := flags.GetString(name)
	return v
}

func boolFlag(flags *pflag.FlagSet, name string) bool {
	v, _ := flags.GetBool(name)
	return v
}
