// pkg/pipeline/receipt_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: testutil.MemoryFS
// PURPOSE: Run receipt serialization

package pipeline_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/rigup/pkg/pipeline"
	"github.com/arthur-debert/rigup/pkg/testutil"
)

func TestWriteReceipt(t *testing.T) {
	fsys := testutil.NewMemoryFS()

	result := pipeline.RunResult{
		Started:  time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		Finished: time.Date(2024, 1, 1, 12, 1, 0, 0, time.UTC),
		Steps: []pipeline.StepResult{
			{Name: "preflight", Status: pipeline.StatusSucceeded, Duration: 12 * time.Millisecond},
			{Name: "core-packages", Status: pipeline.StatusSucceeded, Skipped: true, Message: "all core packages already present"},
			{Name: "extra-packages", Status: pipeline.StatusWarned, Err: errors.New("fzf failed"), Message: "fzf failed"},
		},
		Warnings: []string{"extra-packages: fzf failed"},
	}

	path := "/state/rigup/last-run.yaml"
	require.NoError(t, pipeline.WriteReceipt(fsys, path, result))

	data, err := fsys.ReadFile(path)
	require.NoError(t, err)

	var receipt pipeline.Receipt
	require.NoError(t, yaml.Unmarshal(data, &receipt))

	assert.False(t, receipt.Aborted)
	require.Len(t, receipt.Steps, 3)
	assert.Equal(t, "preflight", receipt.Steps[0].Name)
	assert.Equal(t, "succeeded", receipt.Steps[0].Status)
	assert.True(t, receipt.Steps[1].Skipped)
	assert.Equal(t, "warned", receipt.Steps[2].Status)
	assert.Equal(t, []string{"extra-packages: fzf failed"}, receipt.Warnings)
}
