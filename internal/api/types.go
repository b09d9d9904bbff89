package api

// RefKind distinguishes the two ways one agent file can point at another.
type RefKind string

const (
	// RefKindSubAgent is an entry in the ordered sub_agents list.
	RefKindSubAgent RefKind = "subAgent"

	// RefKindToolAgent is an agent embedded as a callable tool inside
	// another agent's tool list.
	RefKindToolAgent RefKind = "toolAgent"
)

// Reference is a directed edge between two agent files.
type Reference struct {
	// Source is the filename holding the reference.
	Source string `json:"source"`

	// Target is the referenced filename. It may name a file that does not
	// exist; such references are retained for display, not dropped.
	Target string `json:"target"`

	// Kind tags how the reference is expressed in the source file.
	Kind RefKind `json:"kind"`
}

// BrokenReference describes a reference whose target filename is absent from
// the loaded project.
type BrokenReference struct {
	Kind   RefKind `json:"referenceKind"`
	Target string  `json:"targetName"`
}

// NodeValidation is the per-file validation outcome.
type NodeValidation struct {
	// File is the filename the findings belong to.
	File string `json:"file"`

	// Broken lists the references in File that could not be resolved.
	Broken []BrokenReference `json:"brokenReferences"`
}

// AgentFile is the raw view of a single agent file as returned by the
// file-level API. Malformed files are still returned so editing can continue.
type AgentFile struct {
	// FileName is the base name, e.g. "root_agent.yaml".
	FileName string `json:"fileName"`

	// Name is the declared agent name, empty when the file failed to parse.
	Name string `json:"name,omitempty"`

	// Raw is the exact on-disk content.
	Raw string `json:"raw"`

	// Valid reports whether the file parsed into a well-formed definition.
	Valid bool `json:"valid"`

	// ParseError holds the parse failure message for invalid files.
	ParseError string `json:"parseError,omitempty"`
}
