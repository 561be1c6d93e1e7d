package models

import (
	"fmt"
	"strings"
)

// SetNodeParameter resolves a node by name and writes value at the
// dotted path inside its parameter tree. Returns ErrNodeNotFound when
// the node is absent.
func (w *Workflow) SetNodeParameter(nodeName, path string, value any) error {
	node := w.FindNodeByName(nodeName)
	if node == nil {
		return fmt.Errorf("node %q: %w", nodeName, ErrNodeNotFound)
	}

	return node.SetParameter(path, value)
}

// SetParameter writes value at the dotted path inside the node's
// parameter tree. Missing intermediate segments become empty mappings;
// an intermediate that already holds a non-mapping value is a caller
// contract violation and fails with ErrPathConflict, leaving the tree
// unmodified. The final segment is always overwritten regardless of its
// previous type.
func (n *Node) SetParameter(path string, value any) error {
	segments, err := splitPath(path)
	if err != nil {
		return err
	}

	if err := probePath(n.Parameters, segments); err != nil {
		return err
	}

	if n.Parameters == nil {
		n.Parameters = make(map[string]any)
	}

	current := n.Parameters
	for _, segment := range segments[:len(segments)-1] {
		next, ok := current[segment]
		if !ok {
			created := make(map[string]any)
			current[segment] = created
			current = created

			continue
		}

		// probePath already rejected non-mapping intermediates
		current = next.(map[string]any)
	}

	current[segments[len(segments)-1]] = value

	return nil
}

func splitPath(path string) ([]string, error) {
	if path == "" {
		return nil, fmt.Errorf("empty path: %w", ErrInvalidPath)
	}

	segments := strings.Split(path, ".")
	for _, segment := range segments {
		if segment == "" {
			return nil, fmt.Errorf("path %q has an empty segment: %w", path, ErrInvalidPath)
		}
	}

	return segments, nil
}

// probePath walks the existing tree without creating anything so a
// conflict surfaces before any mutation. Everything below a missing
// segment would be created fresh and cannot conflict.
func probePath(params map[string]any, segments []string) error {
	current := params
	for _, segment := range segments[:len(segments)-1] {
		next, ok := current[segment]
		if !ok {
			return nil
		}

		mapping, ok := next.(map[string]any)
		if !ok {
			return fmt.Errorf("segment %q already holds a non-mapping value: %w", segment, ErrPathConflict)
		}

		current = mapping
	}

	return nil
}
