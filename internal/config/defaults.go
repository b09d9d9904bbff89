package config

// GetDefaultConfig returns the default configuration.
func GetDefaultConfig() CanvasConfig {
	return CanvasConfig{
		Server: ServerConfig{
			Port: 8190,
			Host: "localhost",
		},
		MCP: MCPConfig{
			Enabled:   true,
			Port:      8191,
			Transport: MCPTransportStreamableHTTP,
		},
		Projects: ProjectsConfig{
			Root:            "./projects",
			Watch:           true,
			WatchDebounceMs: 500,
		},
	}
}
