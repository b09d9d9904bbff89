package agentconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serialize(t *testing.T, def *AgentDefinition) string {
	t.Helper()
	data, err := Serialize(def)
	require.NoError(t, err)
	return string(data)
}

func TestSerializeContainerDropsStaleLlmFields(t *testing.T) {
	// Fields left over from an earlier class change must never leak into
	// the serialized form of a container class.
	def := &AgentDefinition{
		Name:        "pipeline",
		Class:       ClassSequentialAgent,
		FilePath:    "pipeline.yaml",
		Description: "was an LlmAgent once",
		Model:       "gemini-2.0-flash",
		Instruction: "stale",
		Tools:       []Tool{{Name: "google_search"}},
		GenerationConfig: &GenerationConfig{
			Temperature: floatPtr(0.5),
		},
		SubAgentRefs: []SubAgentRef{{ConfigPath: "step.yaml"}},
	}

	out := serialize(t, def)
	assert.NotContains(t, out, "model")
	assert.NotContains(t, out, "tools")
	assert.NotContains(t, out, "instruction")
	assert.NotContains(t, out, "generation_config")
	assert.Contains(t, out, "agent_class: SequentialAgent")
	assert.Contains(t, out, "config_path: step.yaml")
}

func TestSerializeOmitsEmptySubAgents(t *testing.T) {
	def := &AgentDefinition{
		Name:         "leaf",
		Class:        ClassLlmAgent,
		Description:  "no children",
		Model:        "gemini-2.0-flash",
		SubAgentRefs: []SubAgentRef{},
	}

	out := serialize(t, def)
	assert.NotContains(t, out, "sub_agents")
}

func TestSerializeOmitsEmptyGenerationConfig(t *testing.T) {
	def := &AgentDefinition{
		Name:             "plain",
		Class:            ClassLlmAgent,
		Description:      "defaults",
		Model:            "gemini-2.0-flash",
		GenerationConfig: &GenerationConfig{},
	}

	out := serialize(t, def)
	assert.NotContains(t, out, "generation_config")
}

func TestSerializeOmitsEmptyCallbackLists(t *testing.T) {
	def := &AgentDefinition{
		Name:                 "quiet",
		Class:                ClassLlmAgent,
		Description:          "no callbacks",
		Model:                "gemini-2.0-flash",
		BeforeAgentCallbacks: []Callback{},
	}

	out := serialize(t, def)
	assert.NotContains(t, out, "callbacks")
}

func TestSerializeCommonFieldsAlwaysPresent(t *testing.T) {
	for _, class := range []AgentClass{ClassLlmAgent, ClassSequentialAgent, ClassParallelAgent, ClassLoopAgent} {
		def := &AgentDefinition{Name: "n", Class: class}
		out := serialize(t, def)
		assert.Contains(t, out, "name: n")
		assert.Contains(t, out, "agent_class: "+string(class))
		assert.Contains(t, out, "description:")
	}
}

func TestSerializeLoopAgentEmitsMaxIterations(t *testing.T) {
	def := &AgentDefinition{
		Name:          "refiner",
		Class:         ClassLoopAgent,
		Description:   "loop",
		MaxIterations: 4,
	}

	out := serialize(t, def)
	assert.Contains(t, out, "max_iterations: 4")
}

func TestSerializeBareToolIsScalar(t *testing.T) {
	def := &AgentDefinition{
		Name:        "researcher",
		Class:       ClassLlmAgent,
		Description: "tools",
		Model:       "gemini-2.0-flash",
		Tools:       []Tool{{Name: "google_search"}},
	}

	out := serialize(t, def)
	assert.Contains(t, out, "- google_search")
	assert.NotContains(t, out, "name: google_search")
}

func TestSerializeConfiguredToolIsMapping(t *testing.T) {
	def := &AgentDefinition{
		Name:        "careful",
		Class:       ClassLlmAgent,
		Description: "confirmations",
		Model:       "gemini-2.0-flash",
		Tools: []Tool{{
			Name:                "delete_file",
			RequireConfirmation: true,
			ConfirmationPrompt:  "Really delete?",
		}},
	}

	out := serialize(t, def)
	assert.Contains(t, out, "name: delete_file")
	assert.Contains(t, out, "require_confirmation: true")
	assert.Contains(t, out, "confirmation_prompt: Really delete?")
}

func TestSerializeRequiresName(t *testing.T) {
	_, err := Serialize(&AgentDefinition{Class: ClassLlmAgent})
	require.Error(t, err)
}

func TestSerializeRejectsUnknownClass(t *testing.T) {
	_, err := Serialize(&AgentDefinition{Name: "x", Class: AgentClass("WorkflowAgent")})
	require.Error(t, err)
}

func TestDefaultDefinitionPerClass(t *testing.T) {
	llm := DefaultDefinition("copy agent", ClassLlmAgent)
	assert.Equal(t, "copy_agent", llm.Name)
	assert.Equal(t, "copy_agent.yaml", llm.FilePath)
	assert.Equal(t, DefaultModel, llm.Model)
	assert.NotEmpty(t, llm.Instruction)

	loop := DefaultDefinition("refiner", ClassLoopAgent)
	assert.Equal(t, ClassLoopAgent, loop.Class)
	assert.Greater(t, loop.MaxIterations, 0)

	// Every template must serialize and round trip cleanly.
	for _, class := range []AgentClass{ClassLlmAgent, ClassSequentialAgent, ClassParallelAgent, ClassLoopAgent} {
		def := DefaultDefinition("sample", class)
		require.Equal(t, def, roundTrip(t, def))
	}
}
