package toolloop

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeagents/pkg/agent/llm"
	"codeagents/pkg/exec"
	"codeagents/pkg/logx"
	"codeagents/pkg/tools"
)

// scriptedCompleter replays fixed results and records request
// transcripts.
type scriptedCompleter struct {
	results  []llm.Result
	requests []llm.CompletionRequest
}

func (c *scriptedCompleter) RetryComplete(_ context.Context, req llm.CompletionRequest) llm.Result {
	c.requests = append(c.requests, req)
	i := len(c.requests) - 1
	if i >= len(c.results) {
		i = len(c.results) - 1
	}
	return c.results[i]
}

func createFileCall(id, path, content string) llm.ToolCall {
	return llm.ToolCall{
		ID:         id,
		Name:       tools.ToolCreateFile,
		Parameters: map[string]any{"file_path": path, "content": content},
	}
}

func newTestConfig(t *testing.T, completer Completer) (*Config, string) {
	t.Helper()
	dir := t.TempDir()
	logger := logx.NewLoggerTo("test", io.Discard)
	registry, err := tools.NewRegistry(dir, exec.NewLocalExec(), logger)
	require.NoError(t, err)
	return &Config{
		Completer:     completer,
		Tools:         registry,
		Logger:        logger,
		MaxIterations: 10,
		MaxTokens:     4000,
	}, dir
}

func seed(prompt string) []llm.CompletionMessage {
	return []llm.CompletionMessage{
		llm.NewSystemMessage("system"),
		llm.NewUserMessage(prompt),
	}
}

func TestRunNaturalStop(t *testing.T) {
	completer := &scriptedCompleter{results: []llm.Result{
		{Content: "creating", ToolCalls: []llm.ToolCall{createFileCall("call_1", "index.html", "<html></html>")}},
		{Content: "all done"},
	}}
	cfg, dir := newTestConfig(t, completer)

	result := Run(context.Background(), seed("build it"), cfg)
	require.NoError(t, result.Err)
	assert.Equal(t, 2, result.Iterations)
	assert.False(t, result.HitCeiling)
	assert.Equal(t, []string{"index.html"}, result.CreatedFiles)
	assert.Equal(t, "all done", result.FinalMessage)

	// The file actually landed in the sandbox.
	data, err := os.ReadFile(filepath.Join(dir, "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", string(data))

	// Transcript: system, user, assistant(+calls), tool, assistant.
	require.Len(t, result.Messages, 5)
	assert.Equal(t, llm.RoleAssistant, result.Messages[2].Role)
	require.Len(t, result.Messages[2].ToolCalls, 1)
	assert.Equal(t, tools.ToolCreateFile, result.Messages[2].ToolCalls[0].Function.Name)
	assert.Equal(t, llm.RoleTool, result.Messages[3].Role)
	assert.Equal(t, "call_1", result.Messages[3].ToolCallID)
	assert.Contains(t, result.Messages[3].Content, `"success":true`)
}

func TestRunTranscriptGrowsAcrossIterations(t *testing.T) {
	completer := &scriptedCompleter{results: []llm.Result{
		{ToolCalls: []llm.ToolCall{createFileCall("call_1", "a.txt", "a")}},
		{ToolCalls: []llm.ToolCall{createFileCall("call_2", "b.txt", "b")}},
		{Content: "done"},
	}}
	cfg, _ := newTestConfig(t, completer)

	result := Run(context.Background(), seed("go"), cfg)
	require.NoError(t, result.Err)
	assert.Equal(t, []string{"a.txt", "b.txt"}, result.CreatedFiles)

	// Each request must replay the full transcript so far.
	require.Len(t, completer.requests, 3)
	assert.Len(t, completer.requests[0].Messages, 2)
	assert.Len(t, completer.requests[1].Messages, 4)
	assert.Len(t, completer.requests[2].Messages, 6)
	// Tools are offered on every request.
	assert.Len(t, completer.requests[2].Tools, 6)
}

func TestRunCeilingIsSuccess(t *testing.T) {
	completer := &scriptedCompleter{results: []llm.Result{
		{ToolCalls: []llm.ToolCall{createFileCall("call_1", "loop.txt", "again")}},
	}}
	cfg, _ := newTestConfig(t, completer)
	cfg.MaxIterations = 3

	result := Run(context.Background(), seed("go"), cfg)
	require.NoError(t, result.Err)
	assert.True(t, result.HitCeiling)
	assert.Equal(t, 3, result.Iterations)
	assert.Len(t, result.CreatedFiles, 3)
}

func TestRunModelFailureKeepsPartialWork(t *testing.T) {
	boom := errors.New("backend down")
	completer := &scriptedCompleter{results: []llm.Result{
		{ToolCalls: []llm.ToolCall{createFileCall("call_1", "kept.txt", "kept")}},
		{Err: boom},
	}}
	cfg, dir := newTestConfig(t, completer)

	result := Run(context.Background(), seed("go"), cfg)
	assert.ErrorIs(t, result.Err, boom)
	assert.Equal(t, []string{"kept.txt"}, result.CreatedFiles)
	assert.FileExists(t, filepath.Join(dir, "kept.txt"))
}

func TestRunCancelledContext(t *testing.T) {
	completer := &scriptedCompleter{results: []llm.Result{{Content: "never"}}}
	cfg, _ := newTestConfig(t, completer)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := Run(ctx, seed("go"), cfg)
	assert.ErrorIs(t, result.Err, context.Canceled)
	assert.Empty(t, completer.requests)
}

func TestRunFailedCreateNotTracked(t *testing.T) {
	completer := &scriptedCompleter{results: []llm.Result{
		{ToolCalls: []llm.ToolCall{createFileCall("call_1", "../escape.txt", "nope")}},
		{Content: "done"},
	}}
	cfg, _ := newTestConfig(t, completer)

	result := Run(context.Background(), seed("go"), cfg)
	require.NoError(t, result.Err)
	assert.Empty(t, result.CreatedFiles)
	// The refusal still produces a tool result turn.
	assert.Equal(t, llm.RoleTool, result.Messages[3].Role)
	assert.Contains(t, result.Messages[3].Content, `"success":false`)
}

func TestRunOnContentSeesEveryTextTurn(t *testing.T) {
	completer := &scriptedCompleter{results: []llm.Result{
		{Content: "first", ToolCalls: []llm.ToolCall{createFileCall("call_1", "x.txt", "x")}},
		{Content: "second"},
	}}
	cfg, _ := newTestConfig(t, completer)

	var seen []string
	cfg.OnContent = func(content string) { seen = append(seen, content) }

	result := Run(context.Background(), seed("go"), cfg)
	require.NoError(t, result.Err)
	assert.Equal(t, []string{"first", "second"}, seen)
}
