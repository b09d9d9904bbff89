package cmd

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <dir>",
	Short: "Validate a project directory's reference graph",
	Long: `Loads the project from the given directory, resolves every cross-file
reference and prints the broken ones as a table. The execute gate is run as
well: a cycle, a missing root agent or a broken reference reachable from the
root fails the command.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	manager, err := openProject(args[0])
	if err != nil {
		return err
	}

	results := manager.Validate()
	if len(results) > 0 {
		t := table.NewWriter()
		t.SetOutputMirror(cmd.OutOrStdout())
		t.SetStyle(table.StyleRounded)
		t.AppendHeader(table.Row{"FILE", "KIND", "MISSING TARGET"})
		for _, result := range results {
			for _, broken := range result.Broken {
				t.AppendRow(table.Row{result.File, broken.Kind, broken.Target})
			}
		}
		t.Render()
	}

	if err := manager.ExecuteCheck(); err != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "Project is not executable: %v\n", err)
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Project is executable.")
	return nil
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
