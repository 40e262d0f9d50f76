package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cloudposse/pomgraph/internal/exec"
)

// propertiesCmd prints the properties a project sees.
var propertiesCmd = &cobra.Command{
	Use:     "properties <group:artifact[:version]>",
	Short:   "Show the expanded properties of a project",
	Long:    `This command prints every property defined by a project and its parents, expanded, with the project that defines it.`,
	Example: "pomgraph properties com.telenav.kivakit:kivakit-core --name kivakit.version",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := exec.LoadWorkspace(&cliConfig)
		if err != nil {
			return err
		}
		return exec.ExecuteProperties(cmd.OutOrStdout(), ws, exec.PropertiesProps{
			Project: args[0],
			Name:    stringFlag(cmd.Flags(), "name"),
			Format:  stringFlag(cmd.Flags(), "format"),
			File:    stringFlag(cmd.Flags(), "file"),
		})
	},
}

func init() {
	propertiesCmd.Flags().String("name", "", "Show only this property. Coordinates such as project.version are accepted")
	RootCmd.AddCommand(propertiesCmd)
}
