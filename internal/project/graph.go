package project

import (
	"sort"

	"agentcanvas/internal/agentconfig"
	"agentcanvas/internal/api"
	"agentcanvas/internal/refgraph"
)

// Node is one agent file as loaded from disk. Malformed files stay in the
// graph with their raw text so editing can continue; they are excluded as
// reference targets.
type Node struct {
	File string
	Raw  string

	// Def is nil when the file failed to parse.
	Def *agentconfig.AgentDefinition

	// Err holds the parse failure for invalid nodes.
	Err error
}

// Valid reports whether the node parsed into a well-formed definition.
func (n *Node) Valid() bool {
	return n.Def != nil
}

// AgentFile converts the node to its API view.
func (n *Node) AgentFile() api.AgentFile {
	file := api.AgentFile{
		FileName: n.File,
		Raw:      n.Raw,
		Valid:    n.Valid(),
	}
	if n.Def != nil {
		file.Name = n.Def.Name
	}
	if n.Err != nil {
		file.ParseError = n.Err.Error()
	}
	return file
}

// Graph is the in-memory aggregate of a project: nodes keyed by filename plus
// the derived reference resolution. It is an explicit value rebuilt from disk
// on load and re-resolved after every mutation, never a daemon-held cache
// across restarts.
type Graph struct {
	// Dir is the project directory the graph was loaded from.
	Dir string

	// Nodes holds every agent file, valid or not, keyed by base filename.
	Nodes map[string]*Node

	// Resolution is the derived edge set. Valid even when CycleErr is set.
	Resolution *refgraph.Resolution

	// CycleErr is the CycleDetectedError reported by the resolver, nil for
	// acyclic projects.
	CycleErr error
}

// Files returns the node filenames in sorted order.
func (g *Graph) Files() []string {
	files := make([]string, 0, len(g.Nodes))
	for file := range g.Nodes {
		files = append(files, file)
	}
	sort.Strings(files)
	return files
}

// Node returns the node stored under the given filename.
func (g *Graph) Node(file string) (*Node, bool) {
	node, ok := g.Nodes[file]
	return node, ok
}

// Definitions returns the valid definitions keyed by filename, the shape the
// resolver and validator operate on.
func (g *Graph) Definitions() map[string]*agentconfig.AgentDefinition {
	defs := make(map[string]*agentconfig.AgentDefinition, len(g.Nodes))
	for file, node := range g.Nodes {
		if node.Def != nil {
			defs[file] = node.Def
		}
	}
	return defs
}

// Validate reports every node holding unresolved references.
func (g *Graph) Validate() []api.NodeValidation {
	return refgraph.Validate(g.Resolution)
}

// ExecuteCheck is the gate consulted before any execute request: a cycle, a
// missing root or a broken reference reachable from the root refuses
// execution while still permitting further editing.
func (g *Graph) ExecuteCheck() error {
	if g.CycleErr != nil {
		return g.CycleErr
	}
	return refgraph.ExecuteCheck(g.Resolution, g.Definitions())
}

// Referencers returns the files whose valid definitions hold at least one
// reference (of either kind) to the given target filename.
func (g *Graph) Referencers(target string) []string {
	var sources []string
	for _, file := range g.Files() {
		node := g.Nodes[file]
		if node.Def == nil {
			continue
		}
		for _, ref := range node.Def.References() {
			if ref.Target == target {
				sources = append(sources, file)
				break
			}
		}
	}
	return sources
}
