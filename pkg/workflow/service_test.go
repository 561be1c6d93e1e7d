package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmorandeira/flowctl/pkg/models"
)

// fakeStore is an in-memory Store for manager tests.
type fakeStore struct {
	workflows []*models.Workflow

	created    []*models.Workflow
	updated    map[string]*models.Workflow
	deleted    []string
	deleteErrs map[string]error
	fetchErr   error
}

func newFakeStore(workflows ...*models.Workflow) *fakeStore {
	return &fakeStore{
		workflows:  workflows,
		updated:    make(map[string]*models.Workflow),
		deleteErrs: make(map[string]error),
	}
}

func (f *fakeStore) FetchAll(_ context.Context) ([]*models.Workflow, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}

	return f.workflows, nil
}

func (f *fakeStore) FetchByID(_ context.Context, id string) (*models.Workflow, error) {
	for _, workflow := range f.workflows {
		if workflow.ID == id {
			return workflow, nil
		}
	}

	return nil, models.ErrWorkflowNotFound
}

func (f *fakeStore) Create(_ context.Context, workflow *models.Workflow) (*models.Workflow, error) {
	f.created = append(f.created, workflow)

	return workflow, nil
}

func (f *fakeStore) Update(_ context.Context, id string, workflow *models.Workflow) (*models.Workflow, error) {
	f.updated[id] = workflow

	return workflow, nil
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	if err := f.deleteErrs[id]; err != nil {
		return err
	}

	f.deleted = append(f.deleted, id)

	return nil
}

func testWorkflow(t *testing.T) *models.Workflow {
	t.Helper()

	workflow := new(models.Workflow)
	require.NoError(t, json.Unmarshal([]byte(`{
		"id": "wf-1",
		"name": "Ping",
		"active": false,
		"nodes": [
			{"id": "n1", "name": "Trigger", "type": "t", "typeVersion": 1, "position": [0, 0], "parameters": {}},
			{"id": "n2", "name": "Responder", "type": "t", "typeVersion": 1, "position": [0, 0], "parameters": {}}
		],
		"connections": {
			"Trigger": {"main": [[{"node": "Responder", "type": "main", "index": 0}]]}
		}
	}`), workflow))

	return workflow
}

func TestManager_FindByName(t *testing.T) {
	store := newFakeStore(testWorkflow(t))
	manager := NewManager(store)

	found, err := manager.FindByName(t.Context(), "Ping")
	require.NoError(t, err)
	assert.Equal(t, "wf-1", found.ID)

	_, err = manager.FindByName(t.Context(), "Missing")
	assert.ErrorIs(t, err, models.ErrWorkflowNotFound)
}

func TestManager_ModifyNodeParameter(t *testing.T) {
	store := newFakeStore(testWorkflow(t))
	manager := NewManager(store)

	updated, err := manager.ModifyNodeParameter(t.Context(), "Ping", "Responder", "options.systemMessage", "be nice")
	require.NoError(t, err)

	node := updated.FindNodeByName("Responder")
	require.NotNil(t, node)
	assert.Equal(t, "be nice",
		node.Parameters["options"].(map[string]any)["systemMessage"])

	require.Contains(t, store.updated, "wf-1")
}

func TestManager_ModifyNodeParameter_ConflictDoesNotWriteBack(t *testing.T) {
	workflow := testWorkflow(t)
	workflow.Nodes[1].Parameters = map[string]any{"options": "scalar"}

	store := newFakeStore(workflow)
	manager := NewManager(store)

	_, err := manager.ModifyNodeParameter(t.Context(), "Ping", "Responder", "options.systemMessage", "x")
	require.ErrorIs(t, err, models.ErrPathConflict)
	assert.Empty(t, store.updated)
}

func TestManager_ModifyNodeParameter_NodeNotFound(t *testing.T) {
	store := newFakeStore(testWorkflow(t))
	manager := NewManager(store)

	_, err := manager.ModifyNodeParameter(t.Context(), "Ping", "Ghost", "a", "x")
	require.ErrorIs(t, err, models.ErrNodeNotFound)
	assert.Empty(t, store.updated)
}

func TestManager_Rename(t *testing.T) {
	store := newFakeStore(testWorkflow(t))
	manager := NewManager(store)

	updated, err := manager.Rename(t.Context(), "Ping", "Pong")
	require.NoError(t, err)
	assert.Equal(t, "Pong", updated.Name)
	assert.Contains(t, store.updated, "wf-1")
}

func TestManager_SetActive(t *testing.T) {
	store := newFakeStore(testWorkflow(t))
	manager := NewManager(store)

	updated, err := manager.SetActive(t.Context(), "Ping", true)
	require.NoError(t, err)
	assert.True(t, updated.Active)

	submitted := store.updated["wf-1"]
	require.NotNil(t, submitted)
	assert.True(t, submitted.Active)
}

func TestManager_Duplicate_SubmitsFreshCopy(t *testing.T) {
	store := newFakeStore(testWorkflow(t))
	manager := NewManager(store)

	created, err := manager.Duplicate(t.Context(), "Ping", "Ping Copy")
	require.NoError(t, err)

	require.Len(t, store.created, 1)
	assert.Same(t, created, store.created[0])
	assert.Equal(t, "Ping Copy", created.Name)
	assert.Equal(t, "n1_copy", created.Nodes[0].ID)
	assert.Equal(t, "Responder", created.Connections["Trigger"]["main"][0][0].Node)

	// Source snapshot in the store is untouched.
	assert.Equal(t, "n1", store.workflows[0].Nodes[0].ID)
}

func TestManager_Export(t *testing.T) {
	store := newFakeStore(testWorkflow(t))
	manager := NewManager(store)

	dir := t.TempDir()

	path, err := manager.Export(t.Context(), "Ping", dir, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Ping_exported.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"name": "Ping"`)
}

func TestManager_ImportFile(t *testing.T) {
	store := newFakeStore()
	manager := NewManager(store)

	path := filepath.Join(t.TempDir(), "doc.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"name": "Imported",
		"nodes": [{"name": "Loose", "type": "t", "typeVersion": 1, "position": [0, 0], "parameters": {}}],
		"connections": {}
	}`), 0o644))

	created, err := manager.ImportFile(t.Context(), path)
	require.NoError(t, err)
	assert.Equal(t, "Imported", created.Name)
	assert.NotEmpty(t, created.Nodes[0].ID)
	require.Len(t, store.created, 1)
}

func TestManager_ListArchived(t *testing.T) {
	live := testWorkflow(t)

	archived := testWorkflow(t)
	archived.ID = "wf-2"
	archived.Name = "Old"
	archived.IsArchived = true

	manager := NewManager(newFakeStore(live, archived))

	result, err := manager.ListArchived(t.Context())
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "Old", result[0].Name)
}

func TestManager_DeleteArchived_ContinuesPastFailures(t *testing.T) {
	first := testWorkflow(t)
	first.ID = "wf-a"
	first.Name = "A"
	first.IsArchived = true

	second := testWorkflow(t)
	second.ID = "wf-b"
	second.Name = "B"
	second.IsArchived = true

	store := newFakeStore(first, second)
	store.deleteErrs["wf-a"] = errors.New("locked")

	manager := NewManager(store)

	result, err := manager.DeleteArchived(t.Context())
	require.NoError(t, err)

	assert.Equal(t, []string{"B"}, result.Deleted)
	require.Contains(t, result.Failed, "A")
	assert.Equal(t, []string{"wf-b"}, store.deleted)
}

func TestManager_WriteBack_BlocksStructurallyInvalid(t *testing.T) {
	workflow := testWorkflow(t)
	workflow.Nodes[1].ID = "n1" // duplicate id

	store := newFakeStore(workflow)
	manager := NewManager(store)

	_, err := manager.Rename(t.Context(), "Ping", "Pong")
	require.Error(t, err)

	var structural *models.StructuralError
	require.ErrorAs(t, err, &structural)
	assert.Empty(t, store.updated)
}
