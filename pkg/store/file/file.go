// Package file provides a local JSON file store for exported workflow
// documents.
package file

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/rmorandeira/flowctl/pkg/models"
)

// exportSuffix is appended to derived filenames so exports are easy to
// tell apart from hand-authored documents.
const exportSuffix = "_exported.json"

// Store reads and writes workflow documents under a root directory.
type Store struct {
	root string
}

// NewStore creates a store rooted at the given directory. The directory
// is created on the first write.
func NewStore(root string) *Store {
	return &Store{root: strings.Replace(root, "file://", "", 1)}
}

// WriteWorkflow serializes the workflow to a JSON file and returns the
// path written. When filename is empty it is derived from the
// workflow's display name.
func (s *Store) WriteWorkflow(workflow *models.Workflow, filename string) (string, error) {
	if filename == "" {
		filename = DeriveFilename(workflow.Name)
	}

	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory %s: %w", s.root, err)
	}

	data, err := json.MarshalIndent(workflow, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize workflow %q: %w", workflow.Name, err)
	}

	path := filepath.Join(s.root, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write workflow file %s: %w", path, err)
	}

	return path, nil
}

// ReadWorkflow loads a workflow document from a JSON file, checking the
// document envelope before parsing it into the model.
func (s *Store) ReadWorkflow(path string) (*models.Workflow, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.root, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow file %s: %w", path, err)
	}

	if err := models.ValidateDocument(data); err != nil {
		return nil, fmt.Errorf("workflow file %s: %w", path, err)
	}

	workflow := new(models.Workflow)
	if err := json.Unmarshal(data, workflow); err != nil {
		return nil, fmt.Errorf("failed to parse workflow file %s: %w", path, err)
	}

	return workflow, nil
}

// DeriveFilename sanitizes a workflow display name into a filename:
// only letters, digits, spaces, hyphens and underscores survive,
// trailing spaces are trimmed, remaining spaces become underscores, and
// the export suffix is appended.
func DeriveFilename(name string) string {
	var b strings.Builder

	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}

	safe := strings.TrimRight(b.String(), " ")
	safe = strings.ReplaceAll(safe, " ", "_")

	if safe == "" {
		safe = "workflow"
	}

	return safe + exportSuffix
}
