package config

// CanvasConfig is the top-level configuration structure for agentcanvas.
type CanvasConfig struct {
	Server   ServerConfig   `yaml:"server"`
	MCP      MCPConfig      `yaml:"mcp"`
	Projects ProjectsConfig `yaml:"projects"`
}

const (
	// MCPTransportStreamableHTTP is the streamable HTTP transport.
	MCPTransportStreamableHTTP = "streamable-http"
	// MCPTransportStdio is the standard I/O transport.
	MCPTransportStdio = "stdio"
)

// ServerConfig defines the HTTP API endpoint.
type ServerConfig struct {
	Port int    `yaml:"port,omitempty"` // Port to listen on (default: 8190)
	Host string `yaml:"host,omitempty"` // Host to bind to (default: localhost)
}

// MCPConfig defines the MCP tool surface.
type MCPConfig struct {
	Enabled   bool   `yaml:"enabled,omitempty"`   // Whether the MCP server is enabled (default: true)
	Port      int    `yaml:"port,omitempty"`      // Port for the streamable HTTP transport (default: 8191)
	Transport string `yaml:"transport,omitempty"` // Transport to use (default: streamable-http)
}

// ProjectsConfig defines where projects live and how external edits are handled.
type ProjectsConfig struct {
	Root            string `yaml:"root,omitempty"`            // Directory holding one subdirectory per project (default: ./projects)
	Watch           bool   `yaml:"watch,omitempty"`           // Whether to watch project directories for external edits (default: true)
	WatchDebounceMs int    `yaml:"watchDebounceMs,omitempty"` // Debounce interval for filesystem events (default: 500)
}
