package models

import (
	"errors"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// DanglingRef records a connection-map entry that does not resolve to
// any node. Target is empty when the source key itself is dangling.
type DanglingRef struct {
	Source   string
	PortType string
	Group    int
	Index    int
	Target   string
}

func (d DanglingRef) String() string {
	if d.Target == "" {
		return fmt.Sprintf("connection source %q has no matching node", d.Source)
	}

	return fmt.Sprintf("connection %s/%s[%d][%d] targets unknown node %q",
		d.Source, d.PortType, d.Group, d.Index, d.Target)
}

// Report collects the non-fatal findings of a validation pass. Callers
// decide whether dangling references are acceptable.
type Report struct {
	Dangling []DanglingRef
}

// Clean reports whether the pass found nothing to flag.
func (r *Report) Clean() bool {
	return len(r.Dangling) == 0
}

// Validate checks the workflow's structural integrity. Unnamed nodes,
// a missing workflow name, and duplicate node ids are fatal and return
// a *StructuralError; connection entries that resolve to no node are
// tolerated and reported in the Report for the caller to judge.
func Validate(w *Workflow) (*Report, error) {
	if err := validate.Struct(w); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return nil, &StructuralError{
				Workflow: w.Name,
				Reason:   fmt.Sprintf("field %s failed %q validation", fieldErrs[0].Namespace(), fieldErrs[0].Tag()),
			}
		}

		return nil, err
	}

	seen := make(map[string]bool, len(w.Nodes))

	for _, node := range w.Nodes {
		if node.ID == "" {
			continue
		}

		if seen[node.ID] {
			return nil, &StructuralError{
				Workflow: w.Name,
				Reason:   fmt.Sprintf("duplicate node id %q", node.ID),
			}
		}

		seen[node.ID] = true
	}

	return &Report{Dangling: danglingRefs(w)}, nil
}

// danglingRefs walks the connection map in sorted source order so the
// report is deterministic.
func danglingRefs(w *Workflow) []DanglingRef {
	sources := make([]string, 0, len(w.Connections))
	for source := range w.Connections {
		sources = append(sources, source)
	}

	sort.Strings(sources)

	var dangling []DanglingRef

	for _, source := range sources {
		if w.FindNodeByName(source) == nil {
			dangling = append(dangling, DanglingRef{Source: source})
		}

		ports := w.Connections[source]

		portTypes := make([]string, 0, len(ports))
		for portType := range ports {
			portTypes = append(portTypes, portType)
		}

		sort.Strings(portTypes)

		for _, portType := range portTypes {
			for g, group := range ports[portType] {
				for i, conn := range group {
					if w.FindNodeByName(conn.Node) == nil {
						dangling = append(dangling, DanglingRef{
							Source:   source,
							PortType: portType,
							Group:    g,
							Index:    i,
							Target:   conn.Node,
						})
					}
				}
			}
		}
	}

	return dangling
}
