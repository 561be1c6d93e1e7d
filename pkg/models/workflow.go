// Package models defines the workflow document model exchanged with an
// n8n-compatible automation service: the node graph, its connection map,
// and the JSON round-trip rules that keep unknown service-owned fields
// intact across load and save.
package models

import (
	"encoding/json"
	"fmt"
)

// Connection is a directed reference from one node's output port to a
// target node, addressed by the target's name.
type Connection struct {
	Node  string `json:"node"`
	Type  string `json:"type"`
	Index int    `json:"index"`
}

// PortMap groups a node's outgoing connections by port type. Each port
// type holds an ordered list of connection groups; group order carries
// the service's fan-out semantics and is never reordered here.
type PortMap map[string][][]Connection

// Node is a single configured processing unit. Type and Parameters are
// opaque to this package; Name is the key used by the connection map,
// ID is the document's own identifier and is never referenced by
// connections.
type Node struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"        validate:"required,min=1"`
	Type        string         `json:"type"`
	TypeVersion float64        `json:"typeVersion"`
	Position    []float64      `json:"position"`
	Parameters  map[string]any `json:"parameters"`
	Credentials map[string]any `json:"credentials,omitempty"`
}

// Workflow is the full named graph exchanged with the automation
// service. Fields the service owns but this tool never interprets
// (createdAt, versionId, webhookId, staticData, pinData, ...) live in
// Extra so a load→save round trip is lossless.
type Workflow struct {
	ID          string `validate:"-"`
	Name        string `validate:"required,min=1"`
	Active      bool
	IsArchived  bool
	Nodes       []*Node `validate:"dive"`
	Connections map[string]PortMap
	Settings    map[string]any
	Tags        []string
	Extra       map[string]json.RawMessage
}

// knownFields are the top-level document keys bound to typed Workflow
// fields; everything else passes through Extra untouched.
var knownFields = []string{
	"id", "name", "active", "isArchived", "nodes", "connections", "settings", "tags",
}

// MarshalJSON emits every typed field plus the opaque extras. The id is
// omitted for unsaved workflows; nil collections serialize as empty so
// the service always sees the keys it expects.
func (w *Workflow) MarshalJSON() ([]byte, error) {
	doc := make(map[string]any, len(w.Extra)+len(knownFields))
	for key, raw := range w.Extra {
		doc[key] = raw
	}

	if w.ID != "" {
		doc["id"] = w.ID
	}

	doc["name"] = w.Name
	doc["active"] = w.Active
	doc["isArchived"] = w.IsArchived

	nodes := w.Nodes
	if nodes == nil {
		nodes = []*Node{}
	}

	doc["nodes"] = nodes

	connections := w.Connections
	if connections == nil {
		connections = map[string]PortMap{}
	}

	doc["connections"] = connections

	settings := w.Settings
	if settings == nil {
		settings = map[string]any{}
	}

	doc["settings"] = settings

	tags := w.Tags
	if tags == nil {
		tags = []string{}
	}

	doc["tags"] = tags

	return json.Marshal(doc)
}

// UnmarshalJSON binds the known document keys to typed fields and keeps
// every unknown top-level key in Extra.
func (w *Workflow) UnmarshalJSON(data []byte) error {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse workflow document: %w", err)
	}

	*w = Workflow{}

	bindings := map[string]any{
		"id":          &w.ID,
		"name":        &w.Name,
		"active":      &w.Active,
		"isArchived":  &w.IsArchived,
		"nodes":       &w.Nodes,
		"connections": &w.Connections,
		"settings":    &w.Settings,
		"tags":        &w.Tags,
	}

	for _, key := range knownFields {
		raw, ok := doc[key]
		if !ok || string(raw) == "null" {
			continue
		}

		if err := json.Unmarshal(raw, bindings[key]); err != nil {
			return fmt.Errorf("failed to parse workflow field %q: %w", key, err)
		}

		delete(doc, key)
	}

	if len(doc) > 0 {
		w.Extra = doc
	}

	return nil
}

// FindNodeByName returns the first node in sequence order whose name
// matches, or nil. Names are expected to be unique; when they are not,
// the first match wins, mirroring how the service resolves them.
func (w *Workflow) FindNodeByName(name string) *Node {
	for _, node := range w.Nodes {
		if node.Name == name {
			return node
		}
	}

	return nil
}

// FindNodeByID returns the first node whose id matches, or nil.
func (w *Workflow) FindNodeByID(id string) *Node {
	for _, node := range w.Nodes {
		if node.ID == id {
			return node
		}
	}

	return nil
}

// AppendNode adds a node to the end of the sequence. The connection map
// is left alone; callers wire the node up via MergeConnections.
func (w *Workflow) AppendNode(node *Node) {
	w.Nodes = append(w.Nodes, node)
}

// MergeConnections appends the supplied connection groups to the
// workflow's connection map, creating source and port-type entries as
// needed. Existing groups keep their order; new groups land after them
// in the order supplied.
func (w *Workflow) MergeConnections(additions map[string]PortMap) {
	if len(additions) == 0 {
		return
	}

	if w.Connections == nil {
		w.Connections = make(map[string]PortMap, len(additions))
	}

	for source, ports := range additions {
		existing, ok := w.Connections[source]
		if !ok {
			existing = make(PortMap, len(ports))
			w.Connections[source] = existing
		}

		for portType, groups := range ports {
			existing[portType] = append(existing[portType], groups...)
		}
	}
}
