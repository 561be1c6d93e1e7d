package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmorandeira/flowctl/pkg/models"
)

func TestDeriveFilename(t *testing.T) {
	testCases := []struct {
		name     string
		workflow string
		expected string
	}{
		{name: "plain", workflow: "Ping", expected: "Ping_exported.json"},
		{name: "spaces become underscores", workflow: "My Workflow", expected: "My_Workflow_exported.json"},
		{name: "special characters dropped", workflow: "Ops: daily/report!", expected: "Ops_dailyreport_exported.json"},
		{name: "trailing spaces trimmed", workflow: "Trailing?  ", expected: "Trailing_exported.json"},
		{name: "hyphens and underscores kept", workflow: "a-b_c", expected: "a-b_c_exported.json"},
		{name: "empty after sanitizing", workflow: "!!!", expected: "workflow_exported.json"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, DeriveFilename(tc.workflow))
		})
	}
}

func TestStore_WriteAndReadWorkflow(t *testing.T) {
	store := NewStore(t.TempDir())

	workflow := models.NewWorkflow("Round Trip")
	workflow.AppendNode(models.NewNode("Webhook", "n8n-nodes-base.webhook"))

	path, err := store.WriteWorkflow(workflow, "")
	require.NoError(t, err)
	assert.Equal(t, "Round_Trip_exported.json", filepath.Base(path))

	loaded, err := store.ReadWorkflow(path)
	require.NoError(t, err)
	assert.Equal(t, "Round Trip", loaded.Name)
	require.Len(t, loaded.Nodes, 1)
	assert.Equal(t, "Webhook", loaded.Nodes[0].Name)
}

func TestStore_WriteWorkflow_ExplicitFilename(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	path, err := store.WriteWorkflow(models.NewWorkflow("Named"), "custom.json")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "custom.json"), path)
}

func TestStore_WriteWorkflow_CreatesDirectory(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "exports")
	store := NewStore(root)

	_, err := store.WriteWorkflow(models.NewWorkflow("W"), "")
	require.NoError(t, err)

	info, err := os.Stat(root)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestStore_ReadWorkflow_RejectsInvalidDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"nodes": []}`), 0o644))

	_, err := NewStore(dir).ReadWorkflow("bad.json")
	assert.Error(t, err)
}

func TestStore_ReadWorkflow_MissingFile(t *testing.T) {
	_, err := NewStore(t.TempDir()).ReadWorkflow("gone.json")
	assert.Error(t, err)
}
