package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X github.com/cloudposse/pomgraph/cmd.Version=...".
var Version = "0.0.0-dev"

var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print the CLI version",
	Long:        `This command prints the CLI version`,
	Example:     "pomgraph version",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationNoConfig: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "pomgraph %s on %s/%s\n", Version, runtime.GOOS, runtime.GOARCH)
		return err
	},
}

func init() {
	RootCmd.AddCommand(versionCmd)
}
