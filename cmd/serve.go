package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"agentcanvas/internal/config"
	"agentcanvas/internal/mcpserver"
	"agentcanvas/internal/project"
	"agentcanvas/internal/server"

	"agentcanvas/pkg/logging"

	"github.com/spf13/cobra"
)

// serveConfigPath specifies a custom configuration directory. When empty the
// per-user directory is used.
var serveConfigPath string

// serveProjectsRoot overrides the projects root from the config file.
var serveProjectsRoot string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the agentcanvas engine (HTTP API plus optional MCP server)",
	Long: `Starts the HTTP API over the projects root and, unless disabled in the
configuration, the MCP server exposing the same operations as tools for a
chat-driven assistant. Both surfaces share one manager per project, so
concurrent edits to the same project serialize on its mutation lock.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(config.Overrides{
		ConfigPath:   serveConfigPath,
		ProjectsRoot: serveProjectsRoot,
	})
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := project.NewRegistry(cfg.Projects.Root)
	httpServer := server.New(cfg.Server, registry)

	if cfg.Projects.Watch {
		if err := watchProjects(ctx, registry, cfg.Projects); err != nil {
			return fmt.Errorf("failed to watch projects: %w", err)
		}
	}

	var mcpServer *mcpserver.MCPServer
	if cfg.MCP.Enabled {
		mcpServer = mcpserver.NewMCPServer(cfg.MCP, registry)
		if err := mcpServer.Start(ctx, cfg.Server.Host); err != nil {
			return fmt.Errorf("failed to start MCP server: %w", err)
		}
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Start()
	}()

	select {
	case <-ctx.Done():
		logging.Info("Serve", "Shutting down")
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if mcpServer != nil {
		if err := mcpServer.Stop(shutdownCtx); err != nil {
			logging.Error("Serve", err, "MCP server shutdown failed")
		}
	}
	return httpServer.Shutdown(shutdownCtx)
}

// watchProjects starts a debounced watcher for every project present at
// startup and logs revalidation outcomes from external edits.
func watchProjects(ctx context.Context, registry *project.Registry, cfg config.ProjectsConfig) error {
	names, err := registry.List()
	if err != nil {
		return err
	}

	changes := make(chan project.ChangeEvent, 64)
	debounce := time.Duration(cfg.WatchDebounceMs) * time.Millisecond
	for _, name := range names {
		manager, err := registry.Get(name)
		if err != nil {
			logging.Warn("Serve", "Skipping watch of project %s: %v", name, err)
			continue
		}
		watcher := project.NewWatcher(manager, debounce)
		if err := watcher.Start(ctx, changes); err != nil {
			return err
		}
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event := <-changes:
				if len(event.Validation) > 0 {
					logging.Warn("Serve", "External change to %s in %s left %d files with broken references",
						event.File, event.Dir, len(event.Validation))
				} else {
					logging.Info("Serve", "External change to %s in %s, project valid", event.File, event.Dir)
				}
			}
		}
	}()
	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveConfigPath, "config-path", "", "Custom configuration directory path")
	serveCmd.Flags().StringVar(&serveProjectsRoot, "projects-root", "", "Directory holding one subdirectory per project")
}
