package cmd

import (
	"fmt"
	"strings"

	"agentcanvas/internal/agentconfig"
	"agentcanvas/internal/project"

	"github.com/spf13/cobra"
)

// createClass selects the template for the new agent.
var createClass string

var createCmd = &cobra.Command{
	Use:   "create <dir> [name]",
	Short: "Create a project or add an agent to an existing one",
	Long: `With only a directory, scaffolds a new project there: the bridge file and a
default root agent. With a name, adds a new agent file to the existing project
using the class-appropriate template.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runCreate,
}

func runCreate(cmd *cobra.Command, args []string) error {
	dir := args[0]

	if len(args) == 1 {
		if _, err := project.CreateProject(dir); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created project in %s\n", dir)
		return nil
	}

	class := agentconfig.AgentClass(createClass)
	if !class.Valid() {
		return fmt.Errorf("unknown agent class %q, valid classes: %s",
			createClass, strings.Join(agentconfig.AgentClasses(), ", "))
	}

	manager, err := openProject(dir)
	if err != nil {
		return err
	}
	file, err := manager.CreateAgent(args[1], class)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", file.FileName)
	return nil
}

func init() {
	rootCmd.AddCommand(createCmd)

	createCmd.Flags().StringVar(&createClass, "class", string(agentconfig.ClassLlmAgent),
		"Agent class ("+strings.Join(agentconfig.AgentClasses(), ", ")+")")
}
