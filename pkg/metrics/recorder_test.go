package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderSnapshot(t *testing.T) {
	recorder := NewRecorder()
	recorder.ObserveRequest("coder", 250*time.Millisecond, true)
	recorder.ObserveRequest("coder", 100*time.Millisecond, false)
	recorder.AddPromptTokens("coder", 1200)
	recorder.ObserveTool("create_file", true)
	recorder.FileCreated()
	recorder.TaskCompleted("success")

	snapshot, err := recorder.Snapshot()
	require.NoError(t, err)

	assert.Contains(t, snapshot, `llm_requests_total{agent="coder",status="success"} 1`)
	assert.Contains(t, snapshot, `llm_requests_total{agent="coder",status="failure"} 1`)
	assert.Contains(t, snapshot, `llm_prompt_tokens_total{agent="coder"} 1200`)
	assert.Contains(t, snapshot, `tool_executions_total{tool="create_file",status="success"} 1`)
	assert.Contains(t, snapshot, "files_created_total 1")
	assert.Contains(t, snapshot, `tasks_total{outcome="success"} 1`)
}

func TestRecorderIsolatedRegistries(t *testing.T) {
	// Two recorders must not share state or panic on duplicate registration.
	a := NewRecorder()
	b := NewRecorder()
	a.FileCreated()

	snapshot, err := b.Snapshot()
	require.NoError(t, err)
	assert.NotContains(t, snapshot, "files_created_total 1")
}

func TestWriteSnapshot(t *testing.T) {
	recorder := NewRecorder()
	recorder.ObserveTool("web_search", true)

	path := filepath.Join(t.TempDir(), "metrics.prom")
	require.NoError(t, recorder.WriteSnapshot(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "tool_executions_total")
}
