package api

import (
	"errors"
	"fmt"
	"strings"
)

// NotFoundError indicates a requested project or agent file does not exist.
//
// The error carries the resource type ("project", "agent file", "connection")
// and the specific name so callers can produce precise error payloads.
type NotFoundError struct {
	// ResourceType categorizes the resource that was not found.
	ResourceType string

	// ResourceName is the identifier of the missing resource.
	ResourceName string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.ResourceType, e.ResourceName)
}

// NewNotFoundError creates a NotFoundError for the given resource type and name.
func NewNotFoundError(resourceType, resourceName string) *NotFoundError {
	return &NotFoundError{ResourceType: resourceType, ResourceName: resourceName}
}

// Convenience constructors for the resource types the engine deals with.
var (
	NewProjectNotFoundError = func(name string) *NotFoundError {
		return NewNotFoundError("project", name)
	}
	NewAgentNotFoundError = func(name string) *NotFoundError {
		return NewNotFoundError("agent file", name)
	}
	NewConnectionNotFoundError = func(parent, child string) *NotFoundError {
		return NewNotFoundError("connection", fmt.Sprintf("%s -> %s", parent, child))
	}
)

// IsNotFound checks if an error is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr)
}

// NameConflictError indicates a create or rename would collide with a
// different existing agent file.
type NameConflictError struct {
	// Name is the display name that was requested.
	Name string

	// FileName is the canonical filename derived from Name.
	FileName string
}

func (e *NameConflictError) Error() string {
	return fmt.Sprintf("agent name %q conflicts with existing file %s", e.Name, e.FileName)
}

// NewNameConflictError creates a NameConflictError for the given display name
// and the canonical filename it collides on.
func NewNameConflictError(name, fileName string) *NameConflictError {
	return &NameConflictError{Name: name, FileName: fileName}
}

// IsNameConflict checks if an error is or wraps a NameConflictError.
func IsNameConflict(err error) bool {
	var conflictErr *NameConflictError
	return errors.As(err, &conflictErr)
}

// InvalidNameError indicates a project or file name the engine refuses to
// use, such as one containing path separators or a filename that contradicts
// the declared agent name.
type InvalidNameError struct {
	// Name is the rejected name as requested.
	Name string

	// Reason describes why the name is unusable.
	Reason string
}

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("invalid name %q: %s", e.Name, e.Reason)
}

// NewInvalidNameError creates an InvalidNameError for the given name.
func NewInvalidNameError(name, reason string) *InvalidNameError {
	return &InvalidNameError{Name: name, Reason: reason}
}

// IsInvalidName checks if an error is or wraps an InvalidNameError.
func IsInvalidName(err error) bool {
	var invalidErr *InvalidNameError
	return errors.As(err, &invalidErr)
}

// MalformedYAMLError indicates an agent file could not be parsed. The raw
// content is retained so the caller can keep editing the broken file, and the
// line number is extracted from the YAML parser when available.
type MalformedYAMLError struct {
	// FileName is the base name of the offending file.
	FileName string

	// Raw is the full original file content.
	Raw string

	// Line is the 1-based line where parsing failed, or 0 when unknown.
	Line int

	// Reason describes the parse failure.
	Reason string
}

func (e *MalformedYAMLError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed YAML in %s at line %d: %s", e.FileName, e.Line, e.Reason)
	}
	return fmt.Sprintf("malformed YAML in %s: %s", e.FileName, e.Reason)
}

// NewMalformedYAMLError creates a MalformedYAMLError retaining the raw content.
func NewMalformedYAMLError(fileName, raw string, line int, reason string) *MalformedYAMLError {
	return &MalformedYAMLError{FileName: fileName, Raw: raw, Line: line, Reason: reason}
}

// IsMalformedYAML checks if an error is or wraps a MalformedYAMLError.
func IsMalformedYAML(err error) bool {
	var malformedErr *MalformedYAMLError
	return errors.As(err, &malformedErr)
}

// OutOfRangeError indicates a reorder index outside [0, len).
type OutOfRangeError struct {
	Index  int
	Length int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("index %d out of range [0, %d)", e.Index, e.Length)
}

// NewOutOfRangeError creates an OutOfRangeError for the given index and list length.
func NewOutOfRangeError(index, length int) *OutOfRangeError {
	return &OutOfRangeError{Index: index, Length: length}
}

// IsOutOfRange checks if an error is or wraps an OutOfRangeError.
func IsOutOfRange(err error) bool {
	var rangeErr *OutOfRangeError
	return errors.As(err, &rangeErr)
}

// CycleDetectedError indicates the resolver found a reference cycle. Agent
// configurations are trees by convention; a cycle is a hard error.
type CycleDetectedError struct {
	// Members lists the files known to participate in the cycle.
	Members []string
}

func (e *CycleDetectedError) Error() string {
	if len(e.Members) == 0 {
		return "reference cycle detected"
	}
	return fmt.Sprintf("reference cycle detected involving: %s", strings.Join(e.Members, ", "))
}

// NewCycleDetectedError creates a CycleDetectedError naming the participants.
func NewCycleDetectedError(members []string) *CycleDetectedError {
	return &CycleDetectedError{Members: members}
}

// IsCycleDetected checks if an error is or wraps a CycleDetectedError.
func IsCycleDetected(err error) bool {
	var cycleErr *CycleDetectedError
	return errors.As(err, &cycleErr)
}

// RenameRolledBackError is the single composite error surfaced when a rename
// could not complete and every buffered file was restored. The operation is
// all-or-nothing from the caller's perspective.
type RenameRolledBackError struct {
	// OldFile and NewFile identify the attempted rename.
	OldFile string
	NewFile string

	// Cause is the failure that triggered the rollback.
	Cause error

	// RestoreErrors collects any files that additionally failed to restore.
	// Empty when the rollback itself succeeded completely.
	RestoreErrors []error
}

func (e *RenameRolledBackError) Error() string {
	msg := fmt.Sprintf("rename %s -> %s failed and was rolled back: %v", e.OldFile, e.NewFile, e.Cause)
	if len(e.RestoreErrors) > 0 {
		msg = fmt.Sprintf("%s (rollback incomplete: %d files could not be restored)", msg, len(e.RestoreErrors))
	}
	return msg
}

func (e *RenameRolledBackError) Unwrap() error {
	return e.Cause
}

// ExecuteRefusedError is returned by the execute gate when the project is not
// safe to run. It carries the structured list of broken references so the
// HTTP layer can emit them as a payload rather than flattened text.
type ExecuteRefusedError struct {
	// MissingRoot is true when the project has no entry file.
	MissingRoot bool

	// Broken lists each unresolved reference reachable from the root.
	Broken []BrokenReference
}

func (e *ExecuteRefusedError) Error() string {
	if e.MissingRoot {
		return "execution refused: project has no root agent"
	}
	targets := make([]string, 0, len(e.Broken))
	for _, b := range e.Broken {
		targets = append(targets, b.Target)
	}
	return fmt.Sprintf("execution refused: %d broken references (%s)", len(e.Broken), strings.Join(targets, ", "))
}

// IsExecuteRefused checks if an error is or wraps an ExecuteRefusedError.
func IsExecuteRefused(err error) bool {
	var refusedErr *ExecuteRefusedError
	return errors.As(err, &refusedErr)
}
