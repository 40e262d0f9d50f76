package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cloudposse/pomgraph/internal/exec"
)

// depsCmd lists the dependencies of a project.
var depsCmd = &cobra.Command{
	Use:   "deps <group:artifact[:version]>",
	Short: "List the dependencies of a project",
	Long: `This command resolves the dependencies a project declares, directly or through its parents, ` +
		`filling versions and scopes from dependency management. With --full it adds the transitive dependencies.`,
	Example: "pomgraph deps com.telenav.kivakit:kivakit-core --scope compile,runtime --full",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := exec.LoadWorkspace(&cliConfig)
		if err != nil {
			return err
		}
		scopes, _ := cmd.Flags().GetStringSlice("scope")
		return exec.ExecuteDeps(cmd.OutOrStdout(), ws, exec.DepsProps{
			Project: args[0],
			Scopes:  joinList(scopes),
			Full:    boolFlag(cmd.Flags(), "full"),
			Format:  stringFlag(cmd.Flags(), "format"),
			File:    stringFlag(cmd.Flags(), "file"),
		})
	},
}

func init() {
	depsCmd.Flags().StringSlice("scope", nil, "Scopes to include: compile, test, provided, runtime, import. Default is every scope")
	depsCmd.Flags().Bool("full", false, "Include transitive dependencies")
	RootCmd.AddCommand(depsCmd)
}
