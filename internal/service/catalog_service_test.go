package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCatalogFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNewCatalogService(t *testing.T) {
	catalog, err := NewCatalogService(writeCatalogFile(t, testCatalogYAML))
	require.NoError(t, err)

	jobs := catalog.ListJobs()
	require.Len(t, jobs, 2)
	assert.Equal(t, "daily-etl-pipeline", jobs[0].Name)
	assert.Equal(t, "0 2 * * *", jobs[0].Schedule)
	assert.Equal(t, "8Gi", jobs[0].Resources.Requests.Memory)
	require.Len(t, jobs[0].Storage, 1)
	assert.Equal(t, "fs-0abc123", jobs[0].Storage[0].FileSystemID)

	job := catalog.FindJob("weekly-reconciliation")
	require.NotNil(t, job)
	assert.Equal(t, "0 4 * * 1", job.Schedule)

	assert.Nil(t, catalog.FindJob("no-such-job"))
}

func TestNewCatalogServiceErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "empty catalog",
			content: "jobs: []\n",
			wantErr: "declares no jobs",
		},
		{
			name: "missing job name",
			content: `jobs:
  - schedule: "0 2 * * *"
`,
			wantErr: "without a name",
		},
		{
			name: "duplicate job name",
			content: `jobs:
  - name: daily-etl-pipeline
    schedule: "0 2 * * *"
  - name: daily-etl-pipeline
    schedule: "0 3 * * *"
`,
			wantErr: "duplicate job name",
		},
		{
			name: "invalid schedule",
			content: `jobs:
  - name: daily-etl-pipeline
    schedule: "whenever"
`,
			wantErr: "invalid schedule",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalogService(writeCatalogFile(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewCatalogServiceMissingFile(t *testing.T) {
	_, err := NewCatalogService(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
