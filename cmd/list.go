package cmd

import (
	"os"
	"path/filepath"

	"agentcanvas/internal/api"
	"agentcanvas/internal/project"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list <dir>",
	Short: "List the agent files of a project directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runList,
}

// openProject loads a manager for an existing project directory, mapping a
// missing directory to NotFound.
func openProject(dir string) (*project.Manager, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, api.NewProjectNotFoundError(filepath.Base(dir))
	}
	return project.NewManager(dir)
}

func runList(cmd *cobra.Command, args []string) error {
	manager, err := openProject(args[0])
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"FILE", "NAME", "STATUS"})
	for _, file := range manager.ListFiles() {
		status := "ok"
		if !file.Valid {
			status = "malformed"
		}
		t.AppendRow(table.Row{file.FileName, file.Name, status})
	}
	t.Render()
	return nil
}

func init() {
	rootCmd.AddCommand(listCmd)
}
