package project

import (
	"agentcanvas/internal/agentconfig"
	"agentcanvas/internal/api"

	"agentcanvas/pkg/logging"
)

// Connection operations mutate the ordered sub_agents list only. Tool-agent
// references are edited through property mutation (PutFile), not here.

// Connect appends child to parent's sub_agents list, creating the list if
// absent. Connecting an already-connected pair is a no-op. Both files must be
// present in the graph; the child may be any existing file, including a
// malformed one.
func (m *Manager) Connect(parent, child string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	def, err := m.loadDefinition(parent)
	if err != nil {
		return err
	}
	if _, ok := m.graph.Node(child); !ok {
		return api.NewAgentNotFoundError(child)
	}

	if def.HasSubAgent(child) {
		return nil
	}

	def.SubAgentRefs = append(def.SubAgentRefs, agentconfig.SubAgentRef{ConfigPath: child})
	if err := m.persistDefinition(def); err != nil {
		return err
	}

	logging.Info("ConnectionManager", "Connected %s -> %s in %s", parent, child, m.storage.Dir())
	return nil
}

// Disconnect removes the matching sub_agents entry. When the list becomes
// empty the field itself disappears from the serialized form; it is never
// persisted as an empty collection. The child's file is never deleted.
func (m *Manager) Disconnect(parent, child string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	def, err := m.loadDefinition(parent)
	if err != nil {
		return err
	}

	index := subAgentIndex(def, child)
	if index < 0 {
		return api.NewConnectionNotFoundError(parent, child)
	}

	def.SubAgentRefs = append(def.SubAgentRefs[:index], def.SubAgentRefs[index+1:]...)
	if len(def.SubAgentRefs) == 0 {
		def.SubAgentRefs = nil
	}
	if err := m.persistDefinition(def); err != nil {
		return err
	}

	logging.Info("ConnectionManager", "Disconnected %s -> %s in %s", parent, child, m.storage.Dir())
	return nil
}

// Reorder moves an existing sub_agents entry to newIndex, shifting the
// others. Persisted immediately: order encodes execution order for
// SequentialAgent.
func (m *Manager) Reorder(parent, child string, newIndex int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	def, err := m.loadDefinition(parent)
	if err != nil {
		return err
	}

	index := subAgentIndex(def, child)
	if index < 0 {
		return api.NewConnectionNotFoundError(parent, child)
	}
	if newIndex < 0 || newIndex >= len(def.SubAgentRefs) {
		return api.NewOutOfRangeError(newIndex, len(def.SubAgentRefs))
	}

	entry := def.SubAgentRefs[index]
	refs := append(def.SubAgentRefs[:index], def.SubAgentRefs[index+1:]...)
	refs = append(refs[:newIndex], append([]agentconfig.SubAgentRef{entry}, refs[newIndex:]...)...)
	def.SubAgentRefs = refs

	if err := m.persistDefinition(def); err != nil {
		return err
	}

	logging.Info("ConnectionManager", "Reordered %s in %s to index %d", child, parent, newIndex)
	return nil
}

func subAgentIndex(def *agentconfig.AgentDefinition, child string) int {
	for i, sub := range def.SubAgentRefs {
		if sub.ConfigPath == child {
			return i
		}
	}
	return -1
}
