package refgraph

import (
	"sort"

	"agentcanvas/internal/agentconfig"
	"agentcanvas/internal/api"

	"github.com/gammazero/toposort"
)

// Resolution is the outcome of walking a loaded set of definitions: the full
// edge list, the per-file broken references, and the execution order of the
// resolvable subgraph.
type Resolution struct {
	// Edges holds every reference found, resolved or not.
	Edges []api.Reference

	// Broken maps a source filename to its unresolved references. A target
	// is unresolved when no valid definition exists under that filename;
	// malformed files are excluded as reference targets.
	Broken map[string][]api.BrokenReference

	// Order is a topological order of the resolved files, parents before
	// children. Empty when the graph contains a cycle.
	Order []string

	// Root is the filename of the entry node, or "" when the project has
	// none.
	Root string
}

// Resolve walks every definition, links references to existing nodes and
// records the rest as broken. A reference cycle is a hard error: agent trees
// are acyclic by convention, and downstream traversal must never recurse
// unbounded. The returned Resolution is valid even when the error is
// non-nil, so broken references stay reportable alongside the cycle.
func Resolve(defs map[string]*agentconfig.AgentDefinition) (*Resolution, error) {
	res := &Resolution{
		Broken: make(map[string][]api.BrokenReference),
	}

	if _, ok := defs[agentconfig.RootFileName]; ok {
		res.Root = agentconfig.RootFileName
	}

	// Deterministic iteration keeps Edges and Broken stable across runs.
	files := make([]string, 0, len(defs))
	for file := range defs {
		files = append(files, file)
	}
	sort.Strings(files)

	resolved := make(map[string][]string, len(defs))
	for _, file := range files {
		for _, ref := range defs[file].References() {
			res.Edges = append(res.Edges, ref)
			if _, ok := defs[ref.Target]; !ok {
				res.Broken[file] = append(res.Broken[file], api.BrokenReference{
					Kind:   ref.Kind,
					Target: ref.Target,
				})
				continue
			}
			resolved[file] = append(resolved[file], ref.Target)
		}
	}

	if cycle := findCycle(files, resolved); len(cycle) > 0 {
		return res, api.NewCycleDetectedError(cycle)
	}

	res.Order = executionOrder(files, resolved)
	return res, nil
}

// findCycle runs an iterative depth-first walk with a visited set and an
// on-stack marker. It returns the files forming the first cycle found, or nil.
func findCycle(files []string, resolved map[string][]string) []string {
	const (
		unvisited = iota
		inProgress
		done
	)
	state := make(map[string]int, len(files))

	var stack []string
	var cycle []string

	var visit func(file string) bool
	visit = func(file string) bool {
		state[file] = inProgress
		stack = append(stack, file)

		for _, target := range resolved[file] {
			switch state[target] {
			case inProgress:
				// Everything from target's stack position onward is
				// part of the cycle.
				for i := len(stack) - 1; i >= 0; i-- {
					cycle = append([]string{stack[i]}, cycle...)
					if stack[i] == target {
						break
					}
				}
				return true
			case unvisited:
				if visit(target) {
					return true
				}
			}
		}

		stack = stack[:len(stack)-1]
		state[file] = done
		return false
	}

	for _, file := range files {
		if state[file] == unvisited && visit(file) {
			return cycle
		}
	}
	return nil
}

// executionOrder computes a parents-first topological order of the resolved
// subgraph. Only called on acyclic graphs.
func executionOrder(files []string, resolved map[string][]string) []string {
	var edges []toposort.Edge
	for _, file := range files {
		targets := resolved[file]
		if len(targets) == 0 {
			// Keep isolated nodes in the ordering.
			edges = append(edges, toposort.Edge{nil, file})
			continue
		}
		for _, target := range targets {
			edges = append(edges, toposort.Edge{file, target})
		}
	}

	sorted, err := toposort.Toposort(edges)
	if err != nil {
		// findCycle runs first, so this only guards against drift between
		// the two traversals.
		return nil
	}

	order := make([]string, 0, len(sorted))
	for _, file := range sorted {
		if file != nil {
			order = append(order, file.(string))
		}
	}
	return order
}

// ReachableFromRoot returns the set of files reachable from the root over
// resolved references, including the root itself. Empty when there is no root.
func (r *Resolution) ReachableFromRoot(defs map[string]*agentconfig.AgentDefinition) map[string]bool {
	reachable := make(map[string]bool)
	if r.Root == "" {
		return reachable
	}

	queue := []string{r.Root}
	for len(queue) > 0 {
		file := queue[0]
		queue = queue[1:]
		if reachable[file] {
			continue
		}
		reachable[file] = true

		def, ok := defs[file]
		if !ok {
			continue
		}
		for _, ref := range def.References() {
			if _, exists := defs[ref.Target]; exists && !reachable[ref.Target] {
				queue = append(queue, ref.Target)
			}
		}
	}
	return reachable
}
