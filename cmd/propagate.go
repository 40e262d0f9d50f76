package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cloudposse/pomgraph/internal/exec"
)

// propagateCmd moves families and projects to new versions.
var propagateCmd = &cobra.Command{
	Use:   "propagate",
	Short: "Propagate version changes through the forest",
	Long: `This command moves the requested families and projects to new versions and carries the change to ` +
		`everything that refers to them: parent versions, version properties and superpoms. ` +
		`Members found at an unexpected version are handled by --mismatch.`,
	Example: "pomgraph propagate --family kivakit=1.0.0:1.0.1 --project com.telenav.lexakai:lexakai=1.0.8 --dry-run",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := exec.LoadWorkspace(&cliConfig)
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		families, _ := flags.GetStringArray("family")
		projects, _ := flags.GetStringArray("project")
		return exec.ExecutePropagate(cmd.Context(), cmd.OutOrStdout(), ws, exec.PropagateProps{
			Families:              families,
			Projects:              projects,
			DryRun:                boolFlag(flags, "dry-run"),
			PublishCheck:          boolFlag(flags, "publish-check"),
			KeepRedundantVersions: boolFlag(flags, "keep-redundant-versions"),
			Format:                stringFlag(flags, "format"),
			File:                  stringFlag(flags, "file"),
		})
	},
}

func init() {
	flags := propagateCmd.Flags()
	flags.StringArray("family", nil, "Move a family: family=old:new. Repeatable")
	flags.StringArray("project", nil, "Move one project: group:artifact[:version]=new. Repeatable")
	flags.String("superpom-bump", "", "How superpoms whose content changes are bumped: acquire-flavor, keep-flavor, ignore")
	flags.String("mismatch", "", "What to do with family members at an unexpected version: abort, skip, coerce, bump")
	flags.Bool("dry-run", false, "Print the plan and the diffs without writing descriptors")
	flags.Bool("publish-check", false, "Bump superpoms whose published descriptor differs from the local one")
	flags.Bool("keep-redundant-versions", false, "Keep own versions that repeat the parent version")
	RootCmd.AddCommand(propagateCmd)
}
