// Package llm provides the message types, tool-call codec, and client
// interface shared by all model backend implementations.
package llm

import (
	"context"
	"fmt"

	"codeagents/pkg/tools"
)

// CompletionRole represents the role of a message in a conversation.
type CompletionRole string

const (
	// RoleSystem indicates a system message that provides instructions or context.
	RoleSystem CompletionRole = "system"
	// RoleUser indicates a message from the human user.
	RoleUser CompletionRole = "user"
	// RoleAssistant indicates a message from the AI assistant.
	RoleAssistant CompletionRole = "assistant"
	// RoleTool indicates a tool execution result fed back to the model.
	RoleTool CompletionRole = "tool"
)

// CompletionMessage represents one turn of a conversation transcript.
// Assistant turns that requested tool calls carry them in wire form
// (string-encoded arguments); tool turns carry the id of the call they
// answer.
type CompletionMessage struct {
	Role       CompletionRole `json:"role"`
	Content    string         `json:"content"`
	ToolCalls  []WireCall     `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
}

// CompletionRequest represents a request to generate a completion.
type CompletionRequest struct {
	Messages    []CompletionMessage
	Tools       []tools.ToolDefinition
	ToolChoice  string
	MaxTokens   int
	Temperature float32
}

// CompletionResponse represents a response from a completion request.
// Tool calls are returned in wire form exactly as the backend sent
// them; decoding happens at the gateway boundary.
type CompletionResponse struct {
	ToolCalls  []WireCall
	Content    string // Main response text
	StopReason string // Why the response stopped: "stop", "tool_calls", "length", etc.
}

// LLMClient defines the interface for language model interactions.
type LLMClient interface { //nolint:revive // Established name
	// Complete generates a completion synchronously.
	Complete(ctx context.Context, in CompletionRequest) (CompletionResponse, error)

	// GetModelName returns the model name for this LLM client.
	GetModelName() string
}

// NewSystemMessage creates a new system message.
func NewSystemMessage(content string) CompletionMessage {
	return CompletionMessage{Role: RoleSystem, Content: content}
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) CompletionMessage {
	return CompletionMessage{Role: RoleUser, Content: content}
}

// NewToolResultMessage creates a tool-result turn answering callID.
func NewToolResultMessage(callID, content string) CompletionMessage {
	return CompletionMessage{Role: RoleTool, Content: content, ToolCallID: callID}
}

// LLMConfig represents configuration for an LLM client.
type LLMConfig struct { //nolint:revive // Established name
	APIKey    string
	BaseURL   string
	ModelName string
}

// Validate validates the LLM configuration.
func (c *LLMConfig) Validate() error {
	if c.ModelName == "" {
		return fmt.Errorf("model name cannot be empty")
	}
	return nil
}
