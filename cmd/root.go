package cmd

import (
	"os"

	"agentcanvas/internal/api"
	"agentcanvas/pkg/logging"

	"github.com/spf13/cobra"
)

// Exit codes for CLI commands.
// These follow common conventions so scripts can branch on the outcome.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeValidationFailed indicates the project holds broken references or a cycle.
	ExitCodeValidationFailed = 2
	// ExitCodeNotFound indicates a named project or agent file does not exist.
	ExitCodeNotFound = 3
)

// rootDebug enables verbose logging across the application.
var rootDebug bool

// rootCmd represents the base command for the agentcanvas application.
var rootCmd = &cobra.Command{
	Use:   "agentcanvas",
	Short: "Edit and validate multi-file agent configuration projects",
	Long: `agentcanvas is the engine behind a visual editor for directories of
agent configuration files. It parses, validates and rewrites the YAML
files of a project, keeps cross-file references consistent through
renames, and serves the same operations over HTTP and MCP.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := logging.LevelInfo
		if rootDebug {
			level = logging.LevelDebug
		}
		logging.Init(level, os.Stderr)
	},
}

// SetVersion sets the version for the root command.
// This is called from the main package to inject the build version.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "agentcanvas version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
func getExitCode(err error) int {
	if api.IsNotFound(err) {
		return ExitCodeNotFound
	}
	if api.IsCycleDetected(err) || api.IsExecuteRefused(err) {
		return ExitCodeValidationFailed
	}
	return ExitCodeError
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&rootDebug, "debug", false, "Enable debug logging")
	rootCmd.AddCommand(newVersionCmd())
}
