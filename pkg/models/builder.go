package models

import "github.com/google/uuid"

// NewWorkflow returns an unsaved workflow with empty collections so it
// serializes with every key the service expects.
func NewWorkflow(name string) *Workflow {
	return &Workflow{
		Name:        name,
		Nodes:       []*Node{},
		Connections: map[string]PortMap{},
		Settings:    map[string]any{},
		Tags:        []string{},
	}
}

// NewNode returns a node of the given type with a generated id and an
// empty parameter tree.
func NewNode(name, nodeType string) *Node {
	return &Node{
		ID:          uuid.New().String(),
		Name:        name,
		Type:        nodeType,
		TypeVersion: 1,
		Position:    []float64{0, 0},
		Parameters:  map[string]any{},
	}
}

// EnsureNodeIDs fills in generated ids for nodes that have none, e.g.
// documents authored by hand before their first import.
func (w *Workflow) EnsureNodeIDs() {
	for _, node := range w.Nodes {
		if node.ID == "" {
			node.ID = uuid.New().String()
		}
	}
}
