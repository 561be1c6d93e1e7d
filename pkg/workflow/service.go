// Package workflow orchestrates single-snapshot mutations against the
// remote store: fetch a workflow, apply one change locally, validate,
// write back. There is no locking against concurrent remote writers;
// callers needing that must serialize externally.
package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rmorandeira/flowctl/pkg/log"
	"github.com/rmorandeira/flowctl/pkg/models"
	"github.com/rmorandeira/flowctl/pkg/store/file"
)

// Store is the remote-store capability the manager consumes. pkg/client
// implements it against the service's REST API.
type Store interface {
	FetchAll(ctx context.Context) ([]*models.Workflow, error)
	FetchByID(ctx context.Context, id string) (*models.Workflow, error)
	Create(ctx context.Context, workflow *models.Workflow) (*models.Workflow, error)
	Update(ctx context.Context, id string, workflow *models.Workflow) (*models.Workflow, error)
	Delete(ctx context.Context, id string) error
}

// Manager applies named mutations to workflows held in a remote store.
type Manager struct {
	store  Store
	logger *slog.Logger
}

// NewManager creates a manager over the given store.
func NewManager(store Store) *Manager {
	return &Manager{
		store:  store,
		logger: log.WithModule("workflow"),
	}
}

// FindByName fetches all workflows and returns the first whose name
// matches, or models.ErrWorkflowNotFound.
func (m *Manager) FindByName(ctx context.Context, name string) (*models.Workflow, error) {
	workflows, err := m.store.FetchAll(ctx)
	if err != nil {
		return nil, err
	}

	for _, workflow := range workflows {
		if workflow.Name == name {
			return workflow, nil
		}
	}

	return nil, fmt.Errorf("workflow %q: %w", name, models.ErrWorkflowNotFound)
}

// ModifyNodeParameter sets a single node parameter, addressed by dotted
// path, and writes the workflow back.
func (m *Manager) ModifyNodeParameter(ctx context.Context, workflowName, nodeName, path string, value any) (*models.Workflow, error) {
	workflow, err := m.FindByName(ctx, workflowName)
	if err != nil {
		return nil, err
	}

	if err := workflow.SetNodeParameter(nodeName, path, value); err != nil {
		return nil, fmt.Errorf("workflow %q: %w", workflowName, err)
	}

	m.logger.InfoContext(ctx, "Modified node parameter",
		"workflow", workflowName, "node", nodeName, "path", path)

	return m.writeBack(ctx, workflow)
}

// Rename changes a workflow's display name.
func (m *Manager) Rename(ctx context.Context, oldName, newName string) (*models.Workflow, error) {
	workflow, err := m.FindByName(ctx, oldName)
	if err != nil {
		return nil, err
	}

	workflow.Name = newName

	m.logger.InfoContext(ctx, "Renaming workflow", "from", oldName, "to", newName)

	return m.writeBack(ctx, workflow)
}

// SetActive toggles a workflow's active state. Setting the current
// state again is harmless: the submitted document is unchanged.
func (m *Manager) SetActive(ctx context.Context, name string, active bool) (*models.Workflow, error) {
	workflow, err := m.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}

	workflow.Active = active

	m.logger.InfoContext(ctx, "Setting workflow active state", "workflow", name, "active", active)

	return m.writeBack(ctx, workflow)
}

// Duplicate copies a workflow under a new name and submits the copy as
// a new entity. The service assigns the copy's id.
func (m *Manager) Duplicate(ctx context.Context, name, newName string) (*models.Workflow, error) {
	workflow, err := m.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}

	dup, err := models.Duplicate(workflow, newName)
	if err != nil {
		return nil, err
	}

	if err := m.validateForWrite(ctx, dup); err != nil {
		return nil, err
	}

	m.logger.InfoContext(ctx, "Duplicating workflow", "from", name, "to", newName)

	return m.store.Create(ctx, dup)
}

// Export fetches a workflow by name and writes it to a JSON file under
// dir, deriving the filename from the workflow name when none is given.
// Returns the path written.
func (m *Manager) Export(ctx context.Context, name, dir, filename string) (string, error) {
	workflow, err := m.FindByName(ctx, name)
	if err != nil {
		return "", err
	}

	path, err := file.NewStore(dir).WriteWorkflow(workflow, filename)
	if err != nil {
		return "", err
	}

	m.logger.InfoContext(ctx, "Exported workflow", "workflow", name, "path", path)

	return path, nil
}

// ImportFile loads a workflow document from disk and submits it as a
// new entity. Nodes without ids get generated ones first.
func (m *Manager) ImportFile(ctx context.Context, path string) (*models.Workflow, error) {
	workflow, err := file.NewStore(".").ReadWorkflow(path)
	if err != nil {
		return nil, err
	}

	workflow.EnsureNodeIDs()

	if err := m.validateForWrite(ctx, workflow); err != nil {
		return nil, err
	}

	m.logger.InfoContext(ctx, "Importing workflow", "workflow", workflow.Name, "path", path)

	return m.store.Create(ctx, workflow)
}

// List returns every workflow in the store.
func (m *Manager) List(ctx context.Context) ([]*models.Workflow, error) {
	return m.store.FetchAll(ctx)
}

// ListArchived returns only archived workflows.
func (m *Manager) ListArchived(ctx context.Context) ([]*models.Workflow, error) {
	workflows, err := m.store.FetchAll(ctx)
	if err != nil {
		return nil, err
	}

	archived := make([]*models.Workflow, 0)

	for _, workflow := range workflows {
		if workflow.IsArchived {
			archived = append(archived, workflow)
		}
	}

	return archived, nil
}

// PruneResult reports the outcome of a DeleteArchived pass.
type PruneResult struct {
	Deleted []string         // names of deleted workflows
	Failed  map[string]error // name -> failure, deletion continued past these
}

// DeleteArchived deletes every archived workflow, continuing past
// individual failures so one bad entity does not block the batch.
func (m *Manager) DeleteArchived(ctx context.Context) (*PruneResult, error) {
	archived, err := m.ListArchived(ctx)
	if err != nil {
		return nil, err
	}

	result := &PruneResult{Failed: make(map[string]error)}

	for _, workflow := range archived {
		if workflow.ID == "" {
			result.Failed[workflow.Name] = fmt.Errorf("workflow %q has no id", workflow.Name)

			continue
		}

		if err := m.store.Delete(ctx, workflow.ID); err != nil {
			m.logger.WarnContext(ctx, "Failed to delete archived workflow",
				"workflow", workflow.Name, "error", err)
			result.Failed[workflow.Name] = err

			continue
		}

		m.logger.InfoContext(ctx, "Deleted archived workflow", "workflow", workflow.Name)
		result.Deleted = append(result.Deleted, workflow.Name)
	}

	return result, nil
}

// writeBack validates the mutated snapshot and submits it as an update.
func (m *Manager) writeBack(ctx context.Context, workflow *models.Workflow) (*models.Workflow, error) {
	if workflow.ID == "" {
		return nil, fmt.Errorf("workflow %q has no id to update: %w", workflow.Name, models.ErrWorkflowNotFound)
	}

	if err := m.validateForWrite(ctx, workflow); err != nil {
		return nil, err
	}

	return m.store.Update(ctx, workflow.ID, workflow)
}

// validateForWrite blocks structurally broken documents and logs the
// non-fatal findings.
func (m *Manager) validateForWrite(ctx context.Context, workflow *models.Workflow) error {
	report, err := models.Validate(workflow)
	if err != nil {
		return err
	}

	for _, ref := range report.Dangling {
		m.logger.WarnContext(ctx, "Dangling connection reference",
			"workflow", workflow.Name, "ref", ref.String())
	}

	return nil
}
