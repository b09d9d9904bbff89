package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"agentcanvas/internal/agentconfig"
	"agentcanvas/internal/api"
	"agentcanvas/internal/project"

	"github.com/mark3labs/mcp-go/mcp"
)

// manager resolves the project argument to its manager.
func (m *MCPServer) manager(request mcp.CallToolRequest) (*project.Manager, *mcp.CallToolResult) {
	name, err := request.RequireString("project")
	if err != nil {
		return nil, mcp.NewToolResultError("project argument is required")
	}
	manager, err := m.registry.Get(name)
	if err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}
	return manager, nil
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to format result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (m *MCPServer) handleAgentList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	manager, errResult := m.manager(request)
	if errResult != nil {
		return errResult, nil
	}
	return jsonResult(manager.ListFiles())
}

func (m *MCPServer) handleAgentGet(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	manager, errResult := m.manager(request)
	if errResult != nil {
		return errResult, nil
	}
	file, err := request.RequireString("file")
	if err != nil {
		return mcp.NewToolResultError("file argument is required"), nil
	}

	agentFile, err := manager.GetFile(file)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(agentFile)
}

func (m *MCPServer) handleAgentCreate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	manager, errResult := m.manager(request)
	if errResult != nil {
		return errResult, nil
	}
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("name argument is required"), nil
	}
	class := agentconfig.AgentClass(request.GetString("class", string(agentconfig.ClassLlmAgent)))
	if !class.Valid() {
		return mcp.NewToolResultError(fmt.Sprintf("unknown agent class %q, valid classes: %v", class, agentconfig.AgentClasses())), nil
	}

	file, err := manager.CreateAgent(name, class)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(file)
}

func (m *MCPServer) handleAgentDelete(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	manager, errResult := m.manager(request)
	if errResult != nil {
		return errResult, nil
	}
	file, err := request.RequireString("file")
	if err != nil {
		return mcp.NewToolResultError("file argument is required"), nil
	}

	if err := manager.DeleteFile(file); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Deleted %s", file)), nil
}

// connectionArgs extracts the parent/child pair shared by the connection tools.
func connectionArgs(request mcp.CallToolRequest) (parent, child string, errResult *mcp.CallToolResult) {
	parent, err := request.RequireString("parent")
	if err != nil {
		return "", "", mcp.NewToolResultError("parent argument is required")
	}
	child, err = request.RequireString("child")
	if err != nil {
		return "", "", mcp.NewToolResultError("child argument is required")
	}
	return parent, child, nil
}

func (m *MCPServer) handleAgentConnect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	manager, errResult := m.manager(request)
	if errResult != nil {
		return errResult, nil
	}
	parent, child, errResult := connectionArgs(request)
	if errResult != nil {
		return errResult, nil
	}

	if err := manager.Connect(parent, child); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Connected %s -> %s", parent, child)), nil
}

func (m *MCPServer) handleAgentDisconnect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	manager, errResult := m.manager(request)
	if errResult != nil {
		return errResult, nil
	}
	parent, child, errResult := connectionArgs(request)
	if errResult != nil {
		return errResult, nil
	}

	if err := manager.Disconnect(parent, child); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Disconnected %s -> %s", parent, child)), nil
}

func (m *MCPServer) handleAgentReorder(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	manager, errResult := m.manager(request)
	if errResult != nil {
		return errResult, nil
	}
	parent, child, errResult := connectionArgs(request)
	if errResult != nil {
		return errResult, nil
	}
	newIndex, err := request.RequireInt("new_index")
	if err != nil {
		return mcp.NewToolResultError("new_index argument is required"), nil
	}

	if err := manager.Reorder(parent, child, newIndex); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Moved %s to index %d in %s", child, newIndex, parent)), nil
}

func (m *MCPServer) handleAgentRename(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	manager, errResult := m.manager(request)
	if errResult != nil {
		return errResult, nil
	}
	file, err := request.RequireString("file")
	if err != nil {
		return mcp.NewToolResultError("file argument is required"), nil
	}
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("name argument is required"), nil
	}

	newFile, err := manager.Rename(file, name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Renamed %s -> %s", file, newFile)), nil
}

// validationReport is the agent_validate result payload.
type validationReport struct {
	Results     []api.NodeValidation `json:"results"`
	ExecuteOK   bool                 `json:"executeOk"`
	ExecuteNote string               `json:"executeNote,omitempty"`
}

func (m *MCPServer) handleAgentValidate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	manager, errResult := m.manager(request)
	if errResult != nil {
		return errResult, nil
	}

	report := validationReport{
		Results:   manager.Validate(),
		ExecuteOK: true,
	}
	if err := manager.ExecuteCheck(); err != nil {
		report.ExecuteOK = false
		report.ExecuteNote = err.Error()
	}
	return jsonResult(report)
}
