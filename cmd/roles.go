package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cloudposse/pomgraph/internal/exec"
)

// rolesCmd classifies the projects of the forest.
var rolesCmd = &cobra.Command{
	Use:     "roles",
	Short:   "Classify the projects of the forest",
	Long:    `This command prints the family and the structural roles (parent, bom, config, config-root, leaf) of every project under the base path.`,
	Example: "pomgraph roles --family kivakit --role parent",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := exec.LoadWorkspace(&cliConfig)
		if err != nil {
			return err
		}
		return exec.ExecuteRoles(cmd.OutOrStdout(), ws, exec.RolesProps{
			Family: stringFlag(cmd.Flags(), "family"),
			Role:   stringFlag(cmd.Flags(), "role"),
			Format: stringFlag(cmd.Flags(), "format"),
			File:   stringFlag(cmd.Flags(), "file"),
		})
	},
}

func init() {
	rolesCmd.Flags().String("family", "", "Only projects of this family")
	rolesCmd.Flags().String("role", "", "Only projects with this role")
	RootCmd.AddCommand(rolesCmd)
}
