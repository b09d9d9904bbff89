package project

import (
	"os"
	"path/filepath"
	"testing"

	"agentcanvas/internal/api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryGetCachesManagers(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "demo"), 0755))

	r := NewRegistry(root)
	first, err := r.Get("demo")
	require.NoError(t, err)
	second, err := r.Get("demo")
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestRegistryGetMissingProjectIsNotFound(t *testing.T) {
	r := NewRegistry(t.TempDir())

	_, err := r.Get("ghost")
	assert.True(t, api.IsNotFound(err))
}

func TestRegistryGetRejectsNamesEscapingRoot(t *testing.T) {
	root := t.TempDir()

	// A sibling directory outside the root must stay unreachable even though
	// it holds agent files.
	outside := filepath.Join(filepath.Dir(root), "secret")
	require.NoError(t, os.MkdirAll(outside, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(outside, "root_agent.yaml"), []byte(agentNamed("root_agent")), 0644))

	r := NewRegistry(root)
	for _, name := range []string{"../secret", "..", ".", "a/b", `a\b`, "/etc", ""} {
		_, err := r.Get(name)
		assert.True(t, api.IsNotFound(err), "name %q", name)
	}
}

func TestRegistryCreateRejectsNamesEscapingRoot(t *testing.T) {
	root := t.TempDir()
	r := NewRegistry(root)

	for _, name := range []string{"../evil", "..", "a/b", ""} {
		_, err := r.Create(name)
		assert.True(t, api.IsInvalidName(err), "name %q", name)
	}

	// Nothing was scaffolded outside the root.
	_, err := os.Stat(filepath.Join(filepath.Dir(root), "evil"))
	assert.True(t, os.IsNotExist(err))
}

func TestRegistryCreateThenList(t *testing.T) {
	r := NewRegistry(t.TempDir())

	_, err := r.Create("fresh")
	require.NoError(t, err)

	names, err := r.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh"}, names)
}
