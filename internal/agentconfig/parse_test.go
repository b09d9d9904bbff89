package agentconfig

import (
	"testing"

	"agentcanvas/internal/api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMinimalDefaultsToLlmAgent(t *testing.T) {
	def, err := Parse("helper.yaml", []byte("name: helper\nmodel: gemini-2.0-flash\n"))
	require.NoError(t, err)
	assert.Equal(t, ClassLlmAgent, def.Class)
	assert.Equal(t, "helper", def.Name)
	assert.Equal(t, "helper.yaml", def.FilePath)
}

func TestParsePreservesSubAgentOrder(t *testing.T) {
	raw := `name: pipeline
agent_class: SequentialAgent
description: ordered
sub_agents:
  - config_path: first.yaml
  - config_path: second.yaml
  - config_path: third.yaml
`
	def, err := Parse("pipeline.yaml", []byte(raw))
	require.NoError(t, err)
	require.Len(t, def.SubAgentRefs, 3)
	assert.Equal(t, "first.yaml", def.SubAgentRefs[0].ConfigPath)
	assert.Equal(t, "second.yaml", def.SubAgentRefs[1].ConfigPath)
	assert.Equal(t, "third.yaml", def.SubAgentRefs[2].ConfigPath)
}

func TestParseToolForms(t *testing.T) {
	raw := `name: researcher
agent_class: LlmAgent
model: gemini-2.0-flash
description: tools
tools:
  - google_search
  - name: AgentTool
    args:
      agent: copy_agent.yaml
`
	def, err := Parse("researcher.yaml", []byte(raw))
	require.NoError(t, err)
	require.Len(t, def.Tools, 2)

	assert.Equal(t, "google_search", def.Tools[0].Name)
	_, hasRef := def.Tools[0].AgentRef()
	assert.False(t, hasRef)

	target, hasRef := def.Tools[1].AgentRef()
	require.True(t, hasRef)
	assert.Equal(t, "copy_agent.yaml", target)
}

func TestParseMalformedRetainsRawAndLine(t *testing.T) {
	raw := "name: broken\nagent_class: LlmAgent\n  bad_indent: true\n"
	_, err := Parse("broken.yaml", []byte(raw))
	require.Error(t, err)

	malformed, ok := err.(*api.MalformedYAMLError)
	require.True(t, ok, "expected MalformedYAMLError, got %T", err)
	assert.Equal(t, "broken.yaml", malformed.FileName)
	assert.Equal(t, raw, malformed.Raw)
	assert.Equal(t, 3, malformed.Line)
	assert.True(t, api.IsMalformedYAML(err))
}

func TestParseRejectsInvalidClass(t *testing.T) {
	_, err := Parse("odd.yaml", []byte("name: odd\nagent_class: WorkflowAgent\n"))
	require.Error(t, err)
	assert.True(t, api.IsMalformedYAML(err))
	assert.Contains(t, err.Error(), "WorkflowAgent")
}

func TestParseRejectsMissingName(t *testing.T) {
	_, err := Parse("anon.yaml", []byte("agent_class: LlmAgent\nmodel: gemini-2.0-flash\n"))
	require.Error(t, err)
	assert.True(t, api.IsMalformedYAML(err))
	assert.Contains(t, err.Error(), "name")
}

func TestReferencesEnumeratesBothKinds(t *testing.T) {
	def := &AgentDefinition{
		Name:     "root_agent",
		Class:    ClassLlmAgent,
		FilePath: "root_agent.yaml",
		Tools: []Tool{
			{Name: "google_search"},
			{Name: "AgentTool", Args: map[string]interface{}{"agent": "copy_agent.yaml"}},
		},
		SubAgentRefs: []SubAgentRef{
			{ConfigPath: "copy_agent.yaml"},
			{ConfigPath: "review_agent.yaml"},
		},
	}

	refs := def.References()
	require.Len(t, refs, 3)
	assert.Equal(t, api.Reference{Source: "root_agent.yaml", Target: "copy_agent.yaml", Kind: api.RefKindSubAgent}, refs[0])
	assert.Equal(t, api.Reference{Source: "root_agent.yaml", Target: "review_agent.yaml", Kind: api.RefKindSubAgent}, refs[1])
	assert.Equal(t, api.Reference{Source: "root_agent.yaml", Target: "copy_agent.yaml", Kind: api.RefKindToolAgent}, refs[2])
}

func TestReferencesIgnoresStaleToolsOnContainer(t *testing.T) {
	def := &AgentDefinition{
		Name:     "pipeline",
		Class:    ClassSequentialAgent,
		FilePath: "pipeline.yaml",
		// Stale from an earlier class change; never serialized, never resolved.
		Tools:        []Tool{{Name: "AgentTool", Args: map[string]interface{}{"agent": "ghost.yaml"}}},
		SubAgentRefs: []SubAgentRef{{ConfigPath: "step.yaml"}},
	}

	refs := def.References()
	require.Len(t, refs, 1)
	assert.Equal(t, api.RefKindSubAgent, refs[0].Kind)
}
