package ollama

import (
	"encoding/json"
	"testing"

	"github.com/ollama/ollama/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeagents/pkg/agent/llm"
	"codeagents/pkg/tools"
)

func TestConvertMessagesRejectsEmpty(t *testing.T) {
	_, err := convertMessages(nil)
	assert.Error(t, err)
}

func TestConvertMessagesDecodesToolCallArguments(t *testing.T) {
	messages := []llm.CompletionMessage{
		llm.NewUserMessage("go"),
		{
			Role: llm.RoleAssistant,
			ToolCalls: []llm.WireCall{
				{
					ID:       "call_1",
					Function: llm.WireFunction{Name: "list_files", Arguments: `{"directory":"."}`},
				},
			},
		},
	}

	converted, err := convertMessages(messages)
	require.NoError(t, err)
	require.Len(t, converted, 2)
	require.Len(t, converted[1].ToolCalls, 1)
	assert.Equal(t, ".", converted[1].ToolCalls[0].Function.Arguments["directory"])
}

func TestConvertTools(t *testing.T) {
	defs := []tools.ToolDefinition{
		{
			Name:        "create_file",
			Description: "Create a new file",
			InputSchema: tools.InputSchema{
				Type: "object",
				Properties: map[string]tools.Property{
					"file_path": {Type: "string", Description: "path"},
					"content":   {Type: "string"},
				},
				Required: []string{"file_path", "content"},
			},
		},
	}

	converted := convertTools(defs)
	require.Len(t, converted, 1)
	assert.Equal(t, "function", converted[0].Type)
	assert.Equal(t, "create_file", converted[0].Function.Name)
	assert.Equal(t, []string{"file_path", "content"}, converted[0].Function.Parameters.Required)
}

func TestConvertWireCallsSynthesizesIDs(t *testing.T) {
	calls := []api.ToolCall{
		{Function: api.ToolCallFunction{Name: "web_search", Arguments: api.ToolCallFunctionArguments{"query": "jquery"}}},
	}

	wire := convertWireCalls(calls)
	require.Len(t, wire, 1)
	assert.Equal(t, "call_0", wire[0].ID)

	var args map[string]any
	require.NoError(t, json.Unmarshal([]byte(wire[0].Function.Arguments), &args))
	assert.Equal(t, "jquery", args["query"])
}

func TestStopReasonMapping(t *testing.T) {
	assert.Equal(t, "incomplete", stopReason(&api.ChatResponse{Done: false}))
	assert.Equal(t, "stop", stopReason(&api.ChatResponse{Done: true, DoneReason: "stop"}))
	assert.Equal(t, "stop", stopReason(&api.ChatResponse{Done: true}))
	assert.Equal(t, "length", stopReason(&api.ChatResponse{Done: true, DoneReason: "length"}))
}
