package models

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// documentSchema describes the top-level shape of a workflow document.
// Node parameters stay opaque; only the envelope is checked.
var documentSchema = map[string]any{
	"type":     "object",
	"required": []any{"name"},
	"properties": map[string]any{
		"name": map[string]any{
			"type":      "string",
			"minLength": 1,
		},
		"active": map[string]any{
			"type": "boolean",
		},
		"nodes": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
			},
		},
		"connections": map[string]any{
			"type": "object",
		},
		"settings": map[string]any{
			"type": "object",
		},
	},
}

// ValidateDocument checks raw JSON against the workflow envelope schema
// before it is parsed into the model.
func ValidateDocument(data []byte) error {
	schemaLoader := gojsonschema.NewGoLoader(documentSchema)
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("failed to validate workflow document: %w", err)
	}

	if !result.Valid() {
		var problems []string
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}

		return fmt.Errorf("invalid workflow document: %s", strings.Join(problems, "; "))
	}

	return nil
}
