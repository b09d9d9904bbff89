package project

import (
	"fmt"

	"agentcanvas/internal/agentconfig"
	"agentcanvas/internal/api"

	"agentcanvas/pkg/logging"
)

// Rename changes a node's identity and rewrites every inbound reference
// across the project. The project-scoped mutation lock is held for the full
// duration, so no other multi-file operation can interleave.
func (m *Manager) Rename(file, newDisplayName string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	def, err := m.loadDefinition(file)
	if err != nil {
		return "", err
	}
	def.Name = agentconfig.SnakeCase(newDisplayName)
	if err := m.renameLocked(file, def); err != nil {
		return "", err
	}
	return agentconfig.CanonicalFileName(newDisplayName), nil
}

// fileBuffer snapshots one file before the first write so a partial failure
// can be rolled back completely.
type fileBuffer struct {
	file    string
	content []byte
	existed bool

	// occupied marks a path that already held something outside the graph
	// before the rename started. Rollback must leave it alone: the engine
	// did not create it.
	occupied bool
}

// renameLocked performs the rename of oldFile to def's canonical filename,
// def carrying the updated name and all other fields unchanged. Caller holds
// the mutation lock.
//
// The operation is all-or-nothing: every file that will be touched is
// buffered up front, and any failure restores all of them and surfaces a
// single composite error.
func (m *Manager) renameLocked(oldFile string, def *agentconfig.AgentDefinition) error {
	newFile := agentconfig.CanonicalFileName(def.Name)

	if newFile == oldFile {
		// Identity unchanged on disk; persist the edited fields only.
		def.FilePath = oldFile
		return m.persistDefinition(def)
	}

	if _, exists := m.graph.Node(newFile); exists {
		return api.NewNameConflictError(def.Name, newFile)
	}

	referencers := m.graph.Referencers(oldFile)

	// Buffer current content of every file that will be touched before any
	// write. The target path is not a graph node, but the graph only tracks
	// regular YAML files; something else may still occupy it on disk.
	buffers := []fileBuffer{{file: newFile, occupied: m.storage.Exists(newFile)}}
	oldContent, err := m.storage.Read(oldFile)
	if err != nil {
		return err
	}
	buffers = append(buffers, fileBuffer{file: oldFile, content: oldContent, existed: true})
	for _, ref := range referencers {
		content, err := m.storage.Read(ref)
		if err != nil {
			return err
		}
		buffers = append(buffers, fileBuffer{file: ref, content: content, existed: true})
	}

	rollback := func(cause error) error {
		var restoreErrs []error
		for _, buf := range buffers {
			if !buf.existed {
				if !buf.occupied && m.storage.Exists(buf.file) {
					if err := m.storage.Delete(buf.file); err != nil {
						restoreErrs = append(restoreErrs, err)
					}
				}
				continue
			}
			if err := m.storage.Write(buf.file, buf.content); err != nil {
				restoreErrs = append(restoreErrs, err)
			}
		}
		if err := m.reloadLocked(); err != nil {
			restoreErrs = append(restoreErrs, err)
		}
		return &api.RenameRolledBackError{
			OldFile:       oldFile,
			NewFile:       newFile,
			Cause:         cause,
			RestoreErrors: restoreErrs,
		}
	}

	// Write the node under its new path, then remove the old file.
	def.FilePath = newFile
	data, err := agentconfig.Serialize(def)
	if err != nil {
		return fmt.Errorf("failed to serialize renamed agent: %w", err)
	}
	if err := m.storage.Write(newFile, data); err != nil {
		return rollback(err)
	}
	if err := m.storage.Delete(oldFile); err != nil {
		return rollback(err)
	}

	// Rewrite every inbound reference, of either kind, in place. Sibling
	// entries and the rest of each document stay untouched.
	for _, ref := range referencers {
		node, ok := m.graph.Node(ref)
		if !ok || node.Def == nil {
			continue
		}
		updated := node.Def.Clone()
		rewriteReferences(updated, oldFile, newFile)

		refData, err := agentconfig.Serialize(updated)
		if err != nil {
			return rollback(fmt.Errorf("failed to serialize %s: %w", ref, err))
		}
		if err := m.storage.Write(ref, refData); err != nil {
			return rollback(err)
		}
	}

	if err := m.reloadLocked(); err != nil {
		return rollback(err)
	}

	logging.Info("RenamePropagator", "Renamed %s -> %s, rewrote %d referencing files", oldFile, newFile, len(referencers))
	return nil
}

// rewriteReferences replaces every reference string pointing at oldFile,
// both sub_agents entries and tool-embedded agent references.
func rewriteReferences(def *agentconfig.AgentDefinition, oldFile, newFile string) {
	for i, sub := range def.SubAgentRefs {
		if sub.ConfigPath == oldFile {
			def.SubAgentRefs[i].ConfigPath = newFile
		}
	}
	for i := range def.Tools {
		if target, ok := def.Tools[i].AgentRef(); ok && target == oldFile {
			def.Tools[i].SetAgentRef(newFile)
		}
	}
}
