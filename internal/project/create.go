package project

import (
	"fmt"
	"os"
	"path/filepath"

	"agentcanvas/internal/agentconfig"
	"agentcanvas/internal/api"

	"agentcanvas/pkg/logging"
)

// BridgeFileName is the marker file that makes a project directory
// importable as a unit by the evaluation tooling. It is written once on
// project creation and never touched by the engine afterwards.
const BridgeFileName = "__init__.py"

const bridgeFileContent = `"""Auto-generated package marker.

Exposes the root agent of this directory so the directory can be imported
and evaluated as a unit.
"""

from google.adk.agents import config_agent_utils
import os

_config_path = os.path.join(os.path.dirname(__file__), "root_agent.yaml")
root_agent = config_agent_utils.from_config(_config_path)
`

// CreateProject initializes a new project directory with the bridge file and
// a default root agent, and returns a manager for it. An existing directory
// with agent files is a conflict.
func CreateProject(dir string) (*Manager, error) {
	if entries, err := os.ReadDir(dir); err == nil {
		for _, entry := range entries {
			if entry.Name() == agentconfig.RootFileName {
				return nil, api.NewNameConflictError(filepath.Base(dir), agentconfig.RootFileName)
			}
		}
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create project directory %s: %w", dir, err)
	}

	if err := os.WriteFile(filepath.Join(dir, BridgeFileName), []byte(bridgeFileContent), 0644); err != nil {
		return nil, fmt.Errorf("failed to write bridge file: %w", err)
	}

	root := agentconfig.DefaultDefinition("root_agent", agentconfig.ClassLlmAgent)
	data, err := agentconfig.Serialize(root)
	if err != nil {
		return nil, err
	}

	storage := NewStorage(dir)
	if err := storage.Write(agentconfig.RootFileName, data); err != nil {
		return nil, err
	}

	logging.Info("ProjectManager", "Created project at %s", dir)
	return NewManager(dir)
}
