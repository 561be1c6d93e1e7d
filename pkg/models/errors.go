package models

import (
	"errors"
	"fmt"
)

// Standard error types returned by graph lookups and mutations.
var (
	// ErrWorkflowNotFound indicates a workflow was not found by the given
	// name or identifier.
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrNodeNotFound indicates a node was not found in the workflow.
	ErrNodeNotFound = errors.New("node not found")

	// ErrInvalidPath indicates a malformed parameter path (empty path or
	// empty segment).
	ErrInvalidPath = errors.New("invalid parameter path")

	// ErrPathConflict indicates an intermediate path segment already holds
	// a non-mapping value.
	ErrPathConflict = errors.New("parameter path conflict")
)

// StructuralError reports a referential-integrity violation that blocks
// serialization, such as an unnamed node or duplicate node ids.
type StructuralError struct {
	Workflow string // workflow name if known
	Reason   string
}

func (e *StructuralError) Error() string {
	if e.Workflow != "" {
		return fmt.Sprintf("workflow %q is structurally invalid: %s", e.Workflow, e.Reason)
	}

	return "workflow is structurally invalid: " + e.Reason
}

// IsNotFound checks whether an error indicates a workflow or node lookup
// miss.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound) || errors.Is(err, ErrNodeNotFound)
}
