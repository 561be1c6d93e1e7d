package models

import (
	"encoding/json"
	"fmt"
)

// createStripFields are removed before submitting a workflow as a new
// entity: the service assigns or owns all of them.
var createStripFields = []string{
	"id", "createdAt", "updatedAt", "versionId", "webhookId",
	"triggerCount", "staticData", "meta", "pinData", "tags",
	"credentials", "active",
}

// updateStripFields are removed before submitting a modification to an
// existing entity: only its identity and the service's audit fields.
// Everything else, active state included, is submitted as-is so
// in-place field changes take effect.
var updateStripFields = []string{"id", "createdAt", "updatedAt", "versionId"}

// CreatePayload renders the workflow as the JSON body for a create
// call, with the service-owned fields stripped. The workflow itself is
// not modified.
func CreatePayload(w *Workflow) ([]byte, error) {
	return payload(w, createStripFields)
}

// UpdatePayload renders the workflow as the JSON body for an update
// call, stripping only identity and audit fields.
func UpdatePayload(w *Workflow) ([]byte, error) {
	return payload(w, updateStripFields)
}

func payload(w *Workflow, strip []string) ([]byte, error) {
	raw, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workflow %q: %w", w.Name, err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to serialize workflow %q: %w", w.Name, err)
	}

	for _, field := range strip {
		delete(doc, field)
	}

	return json.Marshal(doc)
}
