package project

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"agentcanvas/internal/agentconfig"
	"agentcanvas/internal/api"

	"agentcanvas/pkg/logging"
)

// Storage is the file layer for a single project directory: one YAML file per
// agent node. Every write to the same project is serialized through the
// storage mutex; composite multi-file operations additionally hold the
// manager's project-scoped mutation lock.
type Storage struct {
	mu  sync.RWMutex
	dir string
}

// NewStorage creates a Storage rooted at the given project directory.
func NewStorage(dir string) *Storage {
	return &Storage{dir: dir}
}

// Dir returns the project directory.
func (s *Storage) Dir() string {
	return s.dir
}

// checkFileName guards against path traversal and non-agent files. Agent
// filenames are flat base names with the .yaml extension.
func checkFileName(file string) error {
	if file == "" {
		return fmt.Errorf("file name cannot be empty")
	}
	if file != filepath.Base(file) || strings.ContainsAny(file, "/\\") {
		return fmt.Errorf("file name %q must not contain path separators", file)
	}
	if !strings.HasSuffix(file, agentconfig.FileExtension) {
		return fmt.Errorf("file name %q must use the %s extension", file, agentconfig.FileExtension)
	}
	return nil
}

// Read returns the raw content of one agent file.
func (s *Storage) Read(file string) ([]byte, error) {
	if err := checkFileName(file); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(filepath.Join(s.dir, file))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, api.NewAgentNotFoundError(file)
		}
		return nil, fmt.Errorf("failed to read %s: %w", file, err)
	}
	return data, nil
}

// Write stores raw content under the given agent filename, creating the
// project directory if needed.
func (s *Storage) Write(file string, data []byte) error {
	if err := checkFileName(file); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", s.dir, err)
	}

	path := filepath.Join(s.dir, file)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	logging.Debug("Storage", "Wrote %s (%d bytes)", path, len(data))
	return nil
}

// Delete removes one agent file. Missing files are a NotFound error.
func (s *Storage) Delete(file string) error {
	if err := checkFileName(file); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, file)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return api.NewAgentNotFoundError(file)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete %s: %w", path, err)
	}

	logging.Debug("Storage", "Deleted %s", path)
	return nil
}

// Exists reports whether an agent file is present on disk.
func (s *Storage) Exists(file string) bool {
	if err := checkFileName(file); err != nil {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, err := os.Stat(filepath.Join(s.dir, file))
	return err == nil
}

// List returns the base names of every agent file in the project, sorted.
// A missing directory is an empty project, not an error.
func (s *Storage) List() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list %s: %w", s.dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(entry.Name(), agentconfig.FileExtension) {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}
