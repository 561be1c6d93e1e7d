package models

import (
	"encoding/json"
	"fmt"
)

// copyIDSuffix is appended to every node id in a duplicated workflow so
// the copy carries its own identifier space.
const copyIDSuffix = "_copy"

// duplicateStripFields are service-owned fields a duplicate must not
// carry: the service assigns them when the copy is created.
var duplicateStripFields = []string{"createdAt", "updatedAt", "versionId", "webhookId"}

// Duplicate produces a structurally independent copy of the workflow
// under a new display name, suitable for submission as a new entity.
// Node ids are remapped with a fixed suffix; node names are untouched.
//
// The remap table is keyed by node id while connection targets hold
// node names, so in the usual document the rewrite finds no matches and
// targets pass through unchanged. That is harmless: duplication never
// renames nodes, so the name-addressed connections remain valid. The
// rewrite stays in place for documents whose connections reference ids
// directly. See DESIGN.md for the known limitation.
func Duplicate(w *Workflow, newName string) (*Workflow, error) {
	raw, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("failed to copy workflow %q: %w", w.Name, err)
	}

	dup := new(Workflow)
	if err := json.Unmarshal(raw, dup); err != nil {
		return nil, fmt.Errorf("failed to copy workflow %q: %w", w.Name, err)
	}

	dup.Name = newName
	dup.ID = ""

	for _, field := range duplicateStripFields {
		delete(dup.Extra, field)
	}

	idMap := make(map[string]string, len(dup.Nodes))

	for _, node := range dup.Nodes {
		if node.ID == "" {
			continue
		}

		newID := node.ID + copyIDSuffix
		idMap[node.ID] = newID
		node.ID = newID
	}

	for _, ports := range dup.Connections {
		for _, groups := range ports {
			for _, group := range groups {
				for i := range group {
					if mapped, ok := idMap[group[i].Node]; ok {
						group[i].Node = mapped
					}
				}
			}
		}
	}

	return dup, nil
}
