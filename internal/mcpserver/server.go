package mcpserver

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"

	"agentcanvas/internal/config"
	"agentcanvas/internal/project"

	"agentcanvas/pkg/logging"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// MCPServer exposes the engine's operations as MCP tools so a chat-driven
// assistant can edit projects through the same managers as the HTTP API.
type MCPServer struct {
	mu sync.Mutex

	config   config.MCPConfig
	registry *project.Registry

	server               *server.MCPServer
	streamableHTTPServer *server.StreamableHTTPServer
	stdioServer          *server.StdioServer
}

// NewMCPServer creates the MCP server and registers the tool set.
func NewMCPServer(cfg config.MCPConfig, registry *project.Registry) *MCPServer {
	m := &MCPServer{
		config:   cfg,
		registry: registry,
		server: server.NewMCPServer(
			"agentcanvas",
			"1.0.0",
			server.WithToolCapabilities(true),
		),
	}
	m.registerTools()
	return m
}

// Start starts the configured transport. Streamable HTTP serves in a
// goroutine; stdio blocks in one until the context is cancelled.
func (m *MCPServer) Start(ctx context.Context, host string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.config.Transport {
	case config.MCPTransportStdio:
		logging.Info("MCPServer", "Starting MCP server with stdio transport")
		m.stdioServer = server.NewStdioServer(m.server)
		stdioServer := m.stdioServer
		go func() {
			if err := stdioServer.Listen(ctx, os.Stdin, os.Stdout); err != nil {
				logging.Error("MCPServer", err, "Stdio server error")
			}
		}()

	case config.MCPTransportStreamableHTTP:
		fallthrough
	default:
		addr := fmt.Sprintf("%s:%d", host, m.config.Port)
		logging.Info("MCPServer", "Starting MCP server with streamable-http transport on %s", addr)
		m.streamableHTTPServer = server.NewStreamableHTTPServer(m.server)
		streamableServer := m.streamableHTTPServer
		go func() {
			if err := streamableServer.Start(addr); err != nil && err != http.ErrServerClosed {
				logging.Error("MCPServer", err, "Streamable HTTP server error")
			}
		}()
	}

	return nil
}

// Stop shuts down the running transport.
func (m *MCPServer) Stop(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.streamableHTTPServer != nil {
		err := m.streamableHTTPServer.Shutdown(ctx)
		m.streamableHTTPServer = nil
		return err
	}
	m.stdioServer = nil
	return nil
}

// registerTools registers the engine tool set.
func (m *MCPServer) registerTools() {
	agentListTool := mcp.NewTool("agent_list",
		mcp.WithDescription("List every agent file in a project, including malformed ones"),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project name under the projects root"),
		),
	)
	m.server.AddTool(agentListTool, m.handleAgentList)

	agentGetTool := mcp.NewTool("agent_get",
		mcp.WithDescription("Get one agent file with its raw YAML content"),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project name"),
		),
		mcp.WithString("file",
			mcp.Required(),
			mcp.Description("Agent filename, e.g. root_agent.yaml"),
		),
	)
	m.server.AddTool(agentGetTool, m.handleAgentGet)

	agentCreateTool := mcp.NewTool("agent_create",
		mcp.WithDescription("Create a new agent file from the class-appropriate template"),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project name"),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Display name; the filename is derived from its snake_case form"),
		),
		mcp.WithString("class",
			mcp.Description("Agent class (LlmAgent, SequentialAgent, ParallelAgent, LoopAgent); default LlmAgent"),
		),
	)
	m.server.AddTool(agentCreateTool, m.handleAgentCreate)

	agentDeleteTool := mcp.NewTool("agent_delete",
		mcp.WithDescription("Delete an agent file; references held by other files become broken, not removed"),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project name"),
		),
		mcp.WithString("file",
			mcp.Required(),
			mcp.Description("Agent filename to delete"),
		),
	)
	m.server.AddTool(agentDeleteTool, m.handleAgentDelete)

	agentConnectTool := mcp.NewTool("agent_connect",
		mcp.WithDescription("Append a child to a parent's ordered sub_agents list"),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project name"),
		),
		mcp.WithString("parent",
			mcp.Required(),
			mcp.Description("Parent agent filename"),
		),
		mcp.WithString("child",
			mcp.Required(),
			mcp.Description("Child agent filename"),
		),
	)
	m.server.AddTool(agentConnectTool, m.handleAgentConnect)

	agentDisconnectTool := mcp.NewTool("agent_disconnect",
		mcp.WithDescription("Remove a child from a parent's sub_agents list; the child's file is kept"),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project name"),
		),
		mcp.WithString("parent",
			mcp.Required(),
			mcp.Description("Parent agent filename"),
		),
		mcp.WithString("child",
			mcp.Required(),
			mcp.Description("Child agent filename"),
		),
	)
	m.server.AddTool(agentDisconnectTool, m.handleAgentDisconnect)

	agentReorderTool := mcp.NewTool("agent_reorder",
		mcp.WithDescription("Move a sub_agents entry to a new index, shifting the others"),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project name"),
		),
		mcp.WithString("parent",
			mcp.Required(),
			mcp.Description("Parent agent filename"),
		),
		mcp.WithString("child",
			mcp.Required(),
			mcp.Description("Child agent filename"),
		),
		mcp.WithNumber("new_index",
			mcp.Required(),
			mcp.Description("Target position in the sub_agents list"),
		),
	)
	m.server.AddTool(agentReorderTool, m.handleAgentReorder)

	agentRenameTool := mcp.NewTool("agent_rename",
		mcp.WithDescription("Rename an agent and rewrite every file referencing it"),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project name"),
		),
		mcp.WithString("file",
			mcp.Required(),
			mcp.Description("Current agent filename"),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("New display name"),
		),
	)
	m.server.AddTool(agentRenameTool, m.handleAgentRename)

	agentValidateTool := mcp.NewTool("agent_validate",
		mcp.WithDescription("Validate a project's reference graph and run the execute gate"),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project name"),
		),
	)
	m.server.AddTool(agentValidateTool, m.handleAgentValidate)
}
