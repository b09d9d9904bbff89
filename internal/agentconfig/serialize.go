package agentconfig

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Per-class document shapes. The exhaustive switch in Serialize keeps a
// container-class node from ever emitting model, tools, instruction or
// generation config. Field order here is the canonical emission order.

type llmDoc struct {
	Name                 string            `yaml:"name"`
	AgentClass           AgentClass        `yaml:"agent_class"`
	Model                string            `yaml:"model,omitempty"`
	Description          string            `yaml:"description"`
	Instruction          string            `yaml:"instruction,omitempty"`
	GenerationConfig     *GenerationConfig `yaml:"generation_config,omitempty"`
	SubAgents            []SubAgentRef     `yaml:"sub_agents,omitempty"`
	Tools                []Tool            `yaml:"tools,omitempty"`
	BeforeAgentCallbacks []Callback        `yaml:"before_agent_callbacks,omitempty"`
	AfterAgentCallbacks  []Callback        `yaml:"after_agent_callbacks,omitempty"`
	BeforeModelCallbacks []Callback        `yaml:"before_model_callbacks,omitempty"`
	AfterModelCallbacks  []Callback        `yaml:"after_model_callbacks,omitempty"`
	BeforeToolCallbacks  []Callback        `yaml:"before_tool_callbacks,omitempty"`
	AfterToolCallbacks   []Callback        `yaml:"after_tool_callbacks,omitempty"`
}

type containerDoc struct {
	Name        string        `yaml:"name"`
	AgentClass  AgentClass    `yaml:"agent_class"`
	Description string        `yaml:"description"`
	SubAgents   []SubAgentRef `yaml:"sub_agents,omitempty"`
}

type loopDoc struct {
	Name          string        `yaml:"name"`
	AgentClass    AgentClass    `yaml:"agent_class"`
	Description   string        `yaml:"description"`
	MaxIterations int           `yaml:"max_iterations,omitempty"`
	SubAgents     []SubAgentRef `yaml:"sub_agents,omitempty"`
}

// Serialize produces the canonical textual form of a definition. Common
// fields (name, agent_class, description) are always present; every optional
// field is omitted when unset, in particular an empty sub_agents list is
// never persisted as an empty collection.
func Serialize(def *AgentDefinition) ([]byte, error) {
	if def.Name == "" {
		return nil, fmt.Errorf("cannot serialize definition without a name")
	}

	var doc interface{}
	switch def.Class {
	case ClassLlmAgent:
		generationConfig := def.GenerationConfig
		if generationConfig.IsZero() {
			generationConfig = nil
		}
		doc = llmDoc{
			Name:                 def.Name,
			AgentClass:           def.Class,
			Model:                def.Model,
			Description:          def.Description,
			Instruction:          def.Instruction,
			GenerationConfig:     generationConfig,
			SubAgents:            def.SubAgentRefs,
			Tools:                def.Tools,
			BeforeAgentCallbacks: def.BeforeAgentCallbacks,
			AfterAgentCallbacks:  def.AfterAgentCallbacks,
			BeforeModelCallbacks: def.BeforeModelCallbacks,
			AfterModelCallbacks:  def.AfterModelCallbacks,
			BeforeToolCallbacks:  def.BeforeToolCallbacks,
			AfterToolCallbacks:   def.AfterToolCallbacks,
		}
	case ClassSequentialAgent, ClassParallelAgent:
		doc = containerDoc{
			Name:        def.Name,
			AgentClass:  def.Class,
			Description: def.Description,
			SubAgents:   def.SubAgentRefs,
		}
	case ClassLoopAgent:
		doc = loopDoc{
			Name:          def.Name,
			AgentClass:    def.Class,
			Description:   def.Description,
			MaxIterations: def.MaxIterations,
			SubAgents:     def.SubAgentRefs,
		}
	default:
		return nil, fmt.Errorf("unknown agent class %q", def.Class)
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal agent %s: %w", def.Name, err)
	}
	return data, nil
}
