package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	cfg "github.com/cloudposse/pomgraph/pkg/config"
	"github.com/cloudposse/pomgraph/pkg/schema"
)

// resetCommand restores the flags of c and its subcommands to their defaults.
// RootCmd is global, and parsed flag values otherwise leak between tests.
func resetCommand(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetCommand(sub)
	}
}

// execute runs the CLI with args and returns what it printed.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() {
		resetCommand(RootCmd)
		RootCmd.SetArgs(nil)
		RootCmd.SetOut(nil)
		Cleanup()
		cliConfig = schema.Configuration{}
	})

	resetCommand(RootCmd)
	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetArgs(append(args, "--logs-file", "/dev/null"))
	err := Execute()
	return out.String(), err
}

// isolate gives the test an empty home and working directory.
func isolate(t *testing.T) {
	t.Helper()
	homedir.DisableCache = true
	t.Cleanup(func() { homedir.DisableCache = false })
	t.Setenv("HOME", t.TempDir())
	t.Setenv(cfg.CliConfigPathEnvVar, "")
	t.Chdir(t.TempDir())
}

// writeForest writes files relative to a new temp dir and returns it.
func writeForest(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}
