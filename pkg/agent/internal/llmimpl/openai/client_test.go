package openai

import (
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeagents/pkg/agent/llm"
	"codeagents/pkg/tools"
)

func TestConvertMessagesPreservesToolEnvelope(t *testing.T) {
	messages := []llm.CompletionMessage{
		llm.NewSystemMessage("You are a coder."),
		llm.NewUserMessage("Build index.html"),
		{
			Role: llm.RoleAssistant,
			ToolCalls: []llm.WireCall{
				{
					ID:   "call_1",
					Type: "function",
					Function: llm.WireFunction{
						Name:      "create_file",
						Arguments: `{"file_path":"index.html","content":"<html>"}`,
					},
				},
			},
		},
		llm.NewToolResultMessage("call_1", `{"success":true}`),
	}

	converted := convertMessages(messages)
	require.Len(t, converted, 4)

	assert.Equal(t, "system", converted[0].Role)
	assert.Equal(t, "user", converted[1].Role)

	require.Len(t, converted[2].ToolCalls, 1)
	assert.Equal(t, "call_1", converted[2].ToolCalls[0].ID)
	assert.Equal(t, `{"file_path":"index.html","content":"<html>"}`, converted[2].ToolCalls[0].Function.Arguments)

	assert.Equal(t, "tool", converted[3].Role)
	assert.Equal(t, "call_1", converted[3].ToolCallID)
}

func TestConvertTools(t *testing.T) {
	defs := []tools.ToolDefinition{
		{
			Name:        "read_file",
			Description: "Read content from a file",
			InputSchema: tools.InputSchema{
				Type: "object",
				Properties: map[string]tools.Property{
					"file_path": {Type: "string"},
				},
				Required: []string{"file_path"},
			},
		},
	}

	converted := convertTools(defs)
	require.Len(t, converted, 1)
	assert.Equal(t, openai.ToolTypeFunction, converted[0].Type)
	assert.Equal(t, "read_file", converted[0].Function.Name)
}

func TestConvertWireCalls(t *testing.T) {
	calls := []openai.ToolCall{
		{
			ID:   "call_9",
			Type: openai.ToolTypeFunction,
			Function: openai.FunctionCall{
				Name:      "web_search",
				Arguments: `{"query":"bootstrap"}`,
			},
		},
	}

	wire := convertWireCalls(calls)
	require.Len(t, wire, 1)
	assert.Equal(t, "call_9", wire[0].ID)
	assert.Equal(t, "web_search", wire[0].Function.Name)
	assert.Equal(t, `{"query":"bootstrap"}`, wire[0].Function.Arguments)

	assert.Nil(t, convertWireCalls(nil))
}
