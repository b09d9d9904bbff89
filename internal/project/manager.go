package project

import (
	"fmt"
	"sync"

	"agentcanvas/internal/agentconfig"
	"agentcanvas/internal/api"

	"agentcanvas/pkg/logging"
)

// Manager owns one project directory. All mutations go through it: every
// operation performs a read-modify-write against the authoritative on-disk
// files and re-resolves the in-memory graph afterwards. The manager mutex is
// the project-scoped mutation lock; composite multi-file operations (rename
// propagation) hold it for their full duration, so they block rather than
// race concurrent mutations on the same project.
type Manager struct {
	mu      sync.RWMutex
	storage *Storage
	graph   *Graph
}

// NewManager creates a manager for the given project directory and loads the
// graph from disk.
func NewManager(dir string) (*Manager, error) {
	m := &Manager{storage: NewStorage(dir)}
	if err := m.Reload(); err != nil {
		return nil, err
	}
	return m, nil
}

// Dir returns the project directory.
func (m *Manager) Dir() string {
	return m.storage.Dir()
}

// Reload rebuilds the graph from disk.
func (m *Manager) Reload() error {
	graph, err := Load(m.storage)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.graph = graph
	m.mu.Unlock()
	return nil
}

// reloadLocked rebuilds the graph while the mutation lock is already held.
func (m *Manager) reloadLocked() error {
	graph, err := Load(m.storage)
	if err != nil {
		return err
	}
	m.graph = graph
	return nil
}

// Graph returns the current in-memory graph.
func (m *Manager) Graph() *Graph {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.graph
}

// ListFiles returns the API view of every agent file in the project.
func (m *Manager) ListFiles() []api.AgentFile {
	m.mu.RLock()
	defer m.mu.RUnlock()

	files := make([]api.AgentFile, 0, len(m.graph.Nodes))
	for _, file := range m.graph.Files() {
		files = append(files, m.graph.Nodes[file].AgentFile())
	}
	return files
}

// GetFile returns one agent file, raw text included. Malformed files are
// returned with their parse error rather than hidden.
func (m *Manager) GetFile(file string) (api.AgentFile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	node, ok := m.graph.Node(file)
	if !ok {
		return api.AgentFile{}, api.NewAgentNotFoundError(file)
	}
	return node.AgentFile(), nil
}

// PutFile writes raw content and reparses it. The content is persisted even
// when malformed so editing can continue; the parse failure is still
// returned. A parse that changes the declared name triggers the rename
// propagator, so the file moves to its new canonical path and every inbound
// reference is rewritten. A new file is accepted only under the canonical
// filename of its declared name.
func (m *Manager) PutFile(file string, raw []byte) (api.AgentFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, existed := m.graph.Node(file)

	def, parseErr := agentconfig.Parse(file, raw)
	if parseErr != nil {
		if err := m.storage.Write(file, raw); err != nil {
			return api.AgentFile{}, err
		}
		if err := m.reloadLocked(); err != nil {
			return api.AgentFile{}, err
		}
		if node, ok := m.graph.Node(file); ok {
			return node.AgentFile(), parseErr
		}
		return api.AgentFile{}, parseErr
	}

	// A name edit on an existing file is an implicit rename. A new file must
	// arrive under the canonical filename of its declared name from the start.
	newFile := agentconfig.CanonicalFileName(def.Name)
	if newFile != file {
		if !existed {
			return api.AgentFile{}, api.NewInvalidNameError(file,
				fmt.Sprintf("declared name %q belongs in %s", def.Name, newFile))
		}
		if err := m.renameLocked(file, def); err != nil {
			return api.AgentFile{}, err
		}
		if node, ok := m.graph.Node(newFile); ok {
			return node.AgentFile(), nil
		}
		return api.AgentFile{}, api.NewAgentNotFoundError(newFile)
	}

	if err := m.storage.Write(file, raw); err != nil {
		return api.AgentFile{}, err
	}
	if err := m.reloadLocked(); err != nil {
		return api.AgentFile{}, err
	}

	node, ok := m.graph.Node(file)
	if !ok {
		return api.AgentFile{}, api.NewAgentNotFoundError(file)
	}
	return node.AgentFile(), nil
}

// CreateAgent creates a new agent file from the class-appropriate template.
func (m *Manager) CreateAgent(name string, class agentconfig.AgentClass) (api.AgentFile, error) {
	if !class.Valid() {
		return api.AgentFile{}, fmt.Errorf("unknown agent class %q", class)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	def := agentconfig.DefaultDefinition(name, class)
	if m.storage.Exists(def.FilePath) {
		return api.AgentFile{}, api.NewNameConflictError(name, def.FilePath)
	}

	data, err := agentconfig.Serialize(def)
	if err != nil {
		return api.AgentFile{}, err
	}
	if err := m.storage.Write(def.FilePath, data); err != nil {
		return api.AgentFile{}, err
	}
	if err := m.reloadLocked(); err != nil {
		return api.AgentFile{}, err
	}

	logging.Info("ProjectManager", "Created %s agent %s in %s", class, def.FilePath, m.storage.Dir())
	node, _ := m.graph.Node(def.FilePath)
	return node.AgentFile(), nil
}

// DeleteFile removes an agent file. Files are destroyed only by this explicit
// operation, never as a side effect of reference removal; references held by
// other files simply become broken and are reported by Validate.
func (m *Manager) DeleteFile(file string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.storage.Delete(file); err != nil {
		return err
	}
	if err := m.reloadLocked(); err != nil {
		return err
	}

	logging.Info("ProjectManager", "Deleted agent %s from %s", file, m.storage.Dir())
	return nil
}

// Validate reports every node holding unresolved references. Re-run after
// every mutation and on load; advisory during editing.
func (m *Manager) Validate() []api.NodeValidation {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.graph.Validate()
}

// ExecuteCheck is the hard gate before any execute request.
func (m *Manager) ExecuteCheck() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.graph.ExecuteCheck()
}

// loadDefinition fetches the parsed definition of one file for mutation,
// mapping missing files to NotFound and malformed files to their retained
// parse error.
func (m *Manager) loadDefinition(file string) (*agentconfig.AgentDefinition, error) {
	node, ok := m.graph.Node(file)
	if !ok {
		return nil, api.NewAgentNotFoundError(file)
	}
	if node.Def == nil {
		return nil, node.Err
	}
	return node.Def.Clone(), nil
}

// persistDefinition serializes a definition, writes it and re-resolves.
func (m *Manager) persistDefinition(def *agentconfig.AgentDefinition) error {
	data, err := agentconfig.Serialize(def)
	if err != nil {
		return err
	}
	if err := m.storage.Write(def.FilePath, data); err != nil {
		return err
	}
	return m.reloadLocked()
}
