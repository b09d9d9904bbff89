package agentconfig

// DefaultModel is the model new LlmAgent files start with.
const DefaultModel = "gemini-2.0-flash"

// defaultLoopIterations caps a fresh LoopAgent until the user tunes it.
const defaultLoopIterations = 3

// DefaultDefinition builds the class-appropriate template a newly created
// agent file starts from.
func DefaultDefinition(name string, class AgentClass) *AgentDefinition {
	def := &AgentDefinition{
		Name:     SnakeCase(name),
		Class:    class,
		FilePath: CanonicalFileName(name),
	}

	switch class {
	case ClassLlmAgent:
		def.Description = "A helpful assistant agent."
		def.Model = DefaultModel
		def.Instruction = "You are a helpful assistant."
	case ClassSequentialAgent:
		def.Description = "Runs its sub-agents in order."
	case ClassParallelAgent:
		def.Description = "Runs its sub-agents concurrently."
	case ClassLoopAgent:
		def.Description = "Repeats its sub-agents until done."
		def.MaxIterations = defaultLoopIterations
	}

	return def
}
