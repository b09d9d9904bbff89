package project

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"agentcanvas/internal/api"
)

// Registry hands out one Manager per project directory under a common root.
// Managers are created lazily and reused, so the project-scoped mutation lock
// is shared by every caller touching the same project.
type Registry struct {
	mu       sync.Mutex
	root     string
	managers map[string]*Manager
}

// NewRegistry creates a registry rooted at the given projects directory.
func NewRegistry(root string) *Registry {
	return &Registry{
		root:     root,
		managers: make(map[string]*Manager),
	}
}

// Root returns the projects root directory.
func (r *Registry) Root() string {
	return r.root
}

// checkProjectName guards against path traversal. Project names are flat
// directory base names under the root, never paths.
func checkProjectName(name string) error {
	if name == "" {
		return api.NewInvalidNameError(name, "name cannot be empty")
	}
	if name == "." || name == ".." || name != filepath.Base(name) || strings.ContainsAny(name, "/\\") {
		return api.NewInvalidNameError(name, "name must not contain path separators")
	}
	return nil
}

// Get returns the manager for a named project. A project without a directory
// on disk is NotFound, as is a name that could never denote one.
func (r *Registry) Get(name string) (*Manager, error) {
	if err := checkProjectName(name); err != nil {
		return nil, api.NewProjectNotFoundError(name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if manager, ok := r.managers[name]; ok {
		return manager, nil
	}

	dir := filepath.Join(r.root, name)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, api.NewProjectNotFoundError(name)
	}

	manager, err := NewManager(dir)
	if err != nil {
		return nil, err
	}
	r.managers[name] = manager
	return manager, nil
}

// Create initializes a new project under the root and returns its manager.
func (r *Registry) Create(name string) (*Manager, error) {
	if err := checkProjectName(name); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.managers[name]; ok {
		return nil, api.NewNameConflictError(name, name)
	}

	manager, err := CreateProject(filepath.Join(r.root, name))
	if err != nil {
		return nil, err
	}
	r.managers[name] = manager
	return manager, nil
}

// List returns the names of every project directory under the root, sorted.
func (r *Registry) List() ([]string, error) {
	entries, err := os.ReadDir(r.root)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
