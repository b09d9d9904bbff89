package agentconfig

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"agentcanvas/internal/api"

	"gopkg.in/yaml.v3"
)

// document is the superset of every class-specific shape, used for decoding.
// Unknown top-level keys are tolerated; serialization is canonical and
// re-emits only the fields the class owns.
type document struct {
	Name                 string            `yaml:"name"`
	AgentClass           string            `yaml:"agent_class"`
	Model                string            `yaml:"model"`
	Description          string            `yaml:"description"`
	Instruction          string            `yaml:"instruction"`
	GenerationConfig     *GenerationConfig `yaml:"generation_config"`
	MaxIterations        int               `yaml:"max_iterations"`
	SubAgents            []SubAgentRef     `yaml:"sub_agents"`
	Tools                []Tool            `yaml:"tools"`
	BeforeAgentCallbacks []Callback        `yaml:"before_agent_callbacks"`
	AfterAgentCallbacks  []Callback        `yaml:"after_agent_callbacks"`
	BeforeModelCallbacks []Callback        `yaml:"before_model_callbacks"`
	AfterModelCallbacks  []Callback        `yaml:"after_model_callbacks"`
	BeforeToolCallbacks  []Callback        `yaml:"before_tool_callbacks"`
	AfterToolCallbacks   []Callback        `yaml:"after_tool_callbacks"`
}

// yamlLineRe matches the "line N:" context yaml.v3 embeds in its messages.
var yamlLineRe = regexp.MustCompile(`line (\d+):`)

// errorLine extracts the first line number mentioned by a yaml.v3 error,
// or 0 when the error carries no location.
func errorLine(err error) int {
	if err == nil {
		return 0
	}
	match := yamlLineRe.FindStringSubmatch(err.Error())
	if match == nil {
		return 0
	}
	line, convErr := strconv.Atoi(match[1])
	if convErr != nil {
		return 0
	}
	return line
}

// Parse converts raw file text into a typed definition. Parse failures retain
// the offending raw content and the failing line so the caller can keep the
// file editable instead of discarding it.
func Parse(fileName string, data []byte) (*AgentDefinition, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		reason := strings.TrimPrefix(err.Error(), "yaml: ")
		return nil, api.NewMalformedYAMLError(fileName, string(data), errorLine(err), reason)
	}

	if strings.TrimSpace(doc.Name) == "" {
		return nil, api.NewMalformedYAMLError(fileName, string(data), 0, "missing required field 'name'")
	}

	// The ADK dialect treats a missing agent_class as LlmAgent.
	class := AgentClass(doc.AgentClass)
	if doc.AgentClass == "" {
		class = ClassLlmAgent
	}
	if !class.Valid() {
		reason := fmt.Sprintf("invalid agent_class %q, must be one of: %s",
			doc.AgentClass, strings.Join(AgentClasses(), ", "))
		return nil, api.NewMalformedYAMLError(fileName, string(data), 0, reason)
	}

	def := &AgentDefinition{
		Name:                 doc.Name,
		Class:                class,
		FilePath:             fileName,
		Description:          doc.Description,
		Model:                doc.Model,
		Instruction:          doc.Instruction,
		GenerationConfig:     doc.GenerationConfig,
		Tools:                doc.Tools,
		BeforeAgentCallbacks: doc.BeforeAgentCallbacks,
		AfterAgentCallbacks:  doc.AfterAgentCallbacks,
		BeforeModelCallbacks: doc.BeforeModelCallbacks,
		AfterModelCallbacks:  doc.AfterModelCallbacks,
		BeforeToolCallbacks:  doc.BeforeToolCallbacks,
		AfterToolCallbacks:   doc.AfterToolCallbacks,
		MaxIterations:        doc.MaxIterations,
		SubAgentRefs:         doc.SubAgents,
	}
	if def.GenerationConfig.IsZero() {
		def.GenerationConfig = nil
	}
	return def, nil
}
