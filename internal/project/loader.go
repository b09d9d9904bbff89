package project

import (
	"sync"

	"agentcanvas/internal/agentconfig"
	"agentcanvas/internal/refgraph"

	"agentcanvas/pkg/logging"

	"golang.org/x/sync/errgroup"
)

// Load rebuilds the graph from disk. Files are read and parsed concurrently;
// a malformed file never aborts loading the rest of the project, it is kept
// as an invalid node with its raw text. The only hard failures here are I/O
// errors on the directory or file reads.
func Load(storage *Storage) (*Graph, error) {
	files, err := storage.List()
	if err != nil {
		return nil, err
	}

	graph := &Graph{
		Dir:   storage.Dir(),
		Nodes: make(map[string]*Node, len(files)),
	}

	var mu sync.Mutex
	var group errgroup.Group
	for _, file := range files {
		group.Go(func() error {
			data, err := storage.Read(file)
			if err != nil {
				return err
			}

			node := &Node{File: file, Raw: string(data)}
			def, parseErr := agentconfig.Parse(file, data)
			if parseErr != nil {
				node.Err = parseErr
				logging.Warn("ProjectLoader", "Keeping malformed file %s editable: %v", file, parseErr)
			} else {
				node.Def = def
			}

			mu.Lock()
			graph.Nodes[file] = node
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	resolution, cycleErr := refgraph.Resolve(graph.Definitions())
	graph.Resolution = resolution
	graph.CycleErr = cycleErr
	if cycleErr != nil {
		logging.Warn("ProjectLoader", "Project %s has a reference cycle: %v", storage.Dir(), cycleErr)
	}

	logging.Debug("ProjectLoader", "Loaded %d agent files from %s", len(graph.Nodes), storage.Dir())
	return graph, nil
}
