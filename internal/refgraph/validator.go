package refgraph

import (
	"sort"

	"agentcanvas/internal/agentconfig"
	"agentcanvas/internal/api"
)

// Validate reports every file holding unresolved references. It is a pure
// function of the resolution and is re-run after every mutation and on load.
// Broken references are advisory during editing; only the execute gate treats
// them as blocking.
func Validate(res *Resolution) []api.NodeValidation {
	files := make([]string, 0, len(res.Broken))
	for file := range res.Broken {
		files = append(files, file)
	}
	sort.Strings(files)

	results := make([]api.NodeValidation, 0, len(files))
	for _, file := range files {
		results = append(results, api.NodeValidation{
			File:   file,
			Broken: res.Broken[file],
		})
	}
	return results
}

// ExecuteCheck is the gate consulted before any execute request. It refuses
// when the project has no entry node or when any node reachable from the root
// carries broken references. Callers must check for a cycle (the error from
// Resolve) before execution as well; a cyclic project never reaches this
// point with a usable Resolution.
func ExecuteCheck(res *Resolution, defs map[string]*agentconfig.AgentDefinition) error {
	if res.Root == "" {
		return &api.ExecuteRefusedError{MissingRoot: true}
	}

	reachable := res.ReachableFromRoot(defs)

	var broken []api.BrokenReference
	for _, file := range sortedKeys(res.Broken) {
		if reachable[file] {
			broken = append(broken, res.Broken[file]...)
		}
	}

	if len(broken) > 0 {
		return &api.ExecuteRefusedError{Broken: broken}
	}
	return nil
}

func sortedKeys(m map[string][]api.BrokenReference) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
