package google

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"codeagents/pkg/agent/llm"
	"codeagents/pkg/tools"
)

func TestConvertMessagesExtractsSystemInstruction(t *testing.T) {
	messages := []llm.CompletionMessage{
		llm.NewSystemMessage("You are a planner."),
		llm.NewUserMessage("plan a todo app"),
	}

	contents, system, err := convertMessages(messages)
	require.NoError(t, err)
	assert.Equal(t, "You are a planner.", system)
	require.Len(t, contents, 1)
	assert.Equal(t, "user", contents[0].Role)
}

func TestConvertMessagesCorrelatesToolResultsByName(t *testing.T) {
	messages := []llm.CompletionMessage{
		llm.NewUserMessage("go"),
		{
			Role: llm.RoleAssistant,
			ToolCalls: []llm.WireCall{
				{ID: "call_1", Function: llm.WireFunction{Name: "read_file", Arguments: `{"file_path":"a.txt"}`}},
			},
		},
		llm.NewToolResultMessage("call_1", `{"success":true,"content":"hi"}`),
	}

	contents, _, err := convertMessages(messages)
	require.NoError(t, err)
	require.Len(t, contents, 3)

	model := contents[1]
	assert.Equal(t, "model", model.Role)
	require.NotNil(t, model.Parts[0].FunctionCall)
	assert.Equal(t, "read_file", model.Parts[0].FunctionCall.Name)

	toolResult := contents[2]
	require.NotNil(t, toolResult.Parts[0].FunctionResponse)
	assert.Equal(t, "read_file", toolResult.Parts[0].FunctionResponse.Name)
}

func TestConvertTools(t *testing.T) {
	defs := []tools.ToolDefinition{
		{
			Name: "execute_command",
			InputSchema: tools.InputSchema{
				Type: "object",
				Properties: map[string]tools.Property{
					"command": {Type: "string"},
					"timeout": {Type: "integer"},
				},
				Required: []string{"command"},
			},
		},
	}

	declarations := convertTools(defs)
	require.Len(t, declarations, 1)
	assert.Equal(t, "execute_command", declarations[0].Name)
	assert.Equal(t, genai.TypeInteger, declarations[0].Parameters.Properties["timeout"].Type)
}

func TestConvertWireCallsFallsBackToName(t *testing.T) {
	calls := []*genai.FunctionCall{
		{Name: "list_files", Args: map[string]any{"directory": "."}},
	}

	wire := convertWireCalls(calls)
	require.Len(t, wire, 1)
	assert.Equal(t, "list_files", wire[0].ID)
	assert.Contains(t, wire[0].Function.Arguments, "directory")
}
