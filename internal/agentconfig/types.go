package agentconfig

import (
	"fmt"

	"agentcanvas/internal/api"

	"gopkg.in/yaml.v3"
)

// RootFileName is the conventional entry filename of a project. The node
// stored under this name is the designated root of the reference graph.
const RootFileName = "root_agent.yaml"

// FileExtension is the extension every agent file carries.
const FileExtension = ".yaml"

// AgentClass is the discriminant selecting the serialization rules for an
// agent definition.
type AgentClass string

const (
	ClassLlmAgent        AgentClass = "LlmAgent"
	ClassSequentialAgent AgentClass = "SequentialAgent"
	ClassParallelAgent   AgentClass = "ParallelAgent"
	ClassLoopAgent       AgentClass = "LoopAgent"
)

// Valid reports whether the class is one of the four known agent classes.
func (c AgentClass) Valid() bool {
	switch c {
	case ClassLlmAgent, ClassSequentialAgent, ClassParallelAgent, ClassLoopAgent:
		return true
	}
	return false
}

// IsContainer reports whether the class is a composition-only class.
// Container classes never emit model, tools, instruction or generation
// config, even if stale values remain in memory from an earlier class change.
func (c AgentClass) IsContainer() bool {
	switch c {
	case ClassSequentialAgent, ClassParallelAgent, ClassLoopAgent:
		return true
	}
	return false
}

// AgentClasses lists the valid class names, for validation messages and CLI help.
func AgentClasses() []string {
	return []string{
		string(ClassLlmAgent),
		string(ClassSequentialAgent),
		string(ClassParallelAgent),
		string(ClassLoopAgent),
	}
}

// GenerationConfig holds the optional model sampling parameters. The whole
// block is omitted from the serialized form when no sub-field is set.
type GenerationConfig struct {
	Temperature     *float64 `yaml:"temperature,omitempty" json:"temperature,omitempty"`
	MaxOutputTokens *int     `yaml:"max_output_tokens,omitempty" json:"max_output_tokens,omitempty"`
	TopP            *float64 `yaml:"top_p,omitempty" json:"top_p,omitempty"`
	TopK            *int     `yaml:"top_k,omitempty" json:"top_k,omitempty"`
}

// IsZero reports whether no sub-field is set.
func (g *GenerationConfig) IsZero() bool {
	return g == nil || (g.Temperature == nil && g.MaxOutputTokens == nil && g.TopP == nil && g.TopK == nil)
}

// SubAgentRef is one entry of the ordered sub_agents list. Order is
// semantically significant: it encodes execution order for SequentialAgent
// and is preserved regardless of class.
type SubAgentRef struct {
	ConfigPath string `yaml:"config_path" json:"config_path"`
}

// Tool is one entry of an LlmAgent's tool list. An unconfigured tool
// serializes as a bare identifier string; a configured one as a mapping.
type Tool struct {
	Name                string
	Args                map[string]interface{}
	RequireConfirmation bool
	ConfirmationPrompt  string
}

// toolDoc is the mapping form of a configured tool.
type toolDoc struct {
	Name                string                 `yaml:"name"`
	Args                map[string]interface{} `yaml:"args,omitempty"`
	RequireConfirmation bool                   `yaml:"require_confirmation,omitempty"`
	ConfirmationPrompt  string                 `yaml:"confirmation_prompt,omitempty"`
}

// configured reports whether the tool carries anything beyond its name.
func (t Tool) configured() bool {
	return len(t.Args) > 0 || t.RequireConfirmation || t.ConfirmationPrompt != ""
}

// MarshalYAML emits a bare string for unconfigured tools and a structured
// entry otherwise.
func (t Tool) MarshalYAML() (interface{}, error) {
	if !t.configured() {
		return t.Name, nil
	}
	return toolDoc{
		Name:                t.Name,
		Args:                t.Args,
		RequireConfirmation: t.RequireConfirmation,
		ConfirmationPrompt:  t.ConfirmationPrompt,
	}, nil
}

// UnmarshalYAML accepts both the bare-string and the mapping form.
func (t *Tool) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		return value.Decode(&t.Name)
	case yaml.MappingNode:
		var doc toolDoc
		if err := value.Decode(&doc); err != nil {
			return err
		}
		if doc.Name == "" {
			return fmt.Errorf("line %d: tool entry is missing a name", value.Line)
		}
		t.Name = doc.Name
		t.Args = doc.Args
		t.RequireConfirmation = doc.RequireConfirmation
		t.ConfirmationPrompt = doc.ConfirmationPrompt
		return nil
	default:
		return fmt.Errorf("line %d: tool entry must be a string or a mapping", value.Line)
	}
}

// agentArgKey is the tool argument carrying an embedded agent reference.
const agentArgKey = "agent"

// AgentRef returns the filename of the agent embedded in this tool's args,
// if any.
func (t Tool) AgentRef() (string, bool) {
	if t.Args == nil {
		return "", false
	}
	ref, ok := t.Args[agentArgKey].(string)
	if !ok || ref == "" {
		return "", false
	}
	return ref, true
}

// SetAgentRef rewrites the embedded agent reference in place, preserving all
// sibling args.
func (t *Tool) SetAgentRef(configPath string) {
	if t.Args == nil {
		t.Args = map[string]interface{}{}
	}
	t.Args[agentArgKey] = configPath
}

// Callback is one entry of a callback list, naming the code to invoke.
type Callback struct {
	Name string `yaml:"name" json:"name"`
}

// AgentDefinition is the typed representation of one agent file.
type AgentDefinition struct {
	// Name is the canonical identifier, used both as the in-file name and
	// to derive the filename.
	Name string

	// Class selects the field set and serialization rules.
	Class AgentClass

	// FilePath is the base filename the definition was loaded from or will
	// be written to. Not part of the serialized document.
	FilePath string

	// Description is common to every class.
	Description string

	// LlmAgent-only fields.
	Model            string
	Instruction      string
	GenerationConfig *GenerationConfig
	Tools            []Tool

	// The six LlmAgent callback lists, each omitted entirely when empty.
	BeforeAgentCallbacks []Callback
	AfterAgentCallbacks  []Callback
	BeforeModelCallbacks []Callback
	AfterModelCallbacks  []Callback
	BeforeToolCallbacks  []Callback
	AfterToolCallbacks   []Callback

	// MaxIterations is LoopAgent-only.
	MaxIterations int

	// SubAgentRefs is the ordered list of child references.
	SubAgentRefs []SubAgentRef
}

// References enumerates every outgoing reference: the sub_agents entries and
// the tool entries that embed an agent. Targets are reported even when the
// referenced file does not exist.
func (d *AgentDefinition) References() []api.Reference {
	var refs []api.Reference
	for _, sub := range d.SubAgentRefs {
		refs = append(refs, api.Reference{
			Source: d.FilePath,
			Target: sub.ConfigPath,
			Kind:   api.RefKindSubAgent,
		})
	}
	// Tool-agent references only matter for LlmAgent, but stale tools on a
	// container class are never serialized, so there is nothing to resolve.
	if d.Class == ClassLlmAgent {
		for _, tool := range d.Tools {
			if target, ok := tool.AgentRef(); ok {
				refs = append(refs, api.Reference{
					Source: d.FilePath,
					Target: target,
					Kind:   api.RefKindToolAgent,
				})
			}
		}
	}
	return refs
}

// Clone returns an independent copy of the definition. Mutating operations
// work on a clone and persist it, so a failed write never leaves a
// half-mutated definition in the in-memory graph.
func (d *AgentDefinition) Clone() *AgentDefinition {
	out := *d
	if d.GenerationConfig != nil {
		cfg := *d.GenerationConfig
		out.GenerationConfig = &cfg
	}
	out.SubAgentRefs = append([]SubAgentRef(nil), d.SubAgentRefs...)
	if d.Tools != nil {
		out.Tools = make([]Tool, len(d.Tools))
		for i, tool := range d.Tools {
			out.Tools[i] = tool
			if tool.Args != nil {
				args := make(map[string]interface{}, len(tool.Args))
				for k, v := range tool.Args {
					args[k] = v
				}
				out.Tools[i].Args = args
			}
		}
	}
	out.BeforeAgentCallbacks = append([]Callback(nil), d.BeforeAgentCallbacks...)
	out.AfterAgentCallbacks = append([]Callback(nil), d.AfterAgentCallbacks...)
	out.BeforeModelCallbacks = append([]Callback(nil), d.BeforeModelCallbacks...)
	out.AfterModelCallbacks = append([]Callback(nil), d.AfterModelCallbacks...)
	out.BeforeToolCallbacks = append([]Callback(nil), d.BeforeToolCallbacks...)
	out.AfterToolCallbacks = append([]Callback(nil), d.AfterToolCallbacks...)
	return &out
}

// HasSubAgent reports whether config_path already appears in SubAgentRefs.
func (d *AgentDefinition) HasSubAgent(configPath string) bool {
	for _, sub := range d.SubAgentRefs {
		if sub.ConfigPath == configPath {
			return true
		}
	}
	return false
}
