// Package openai provides the chat-completions client used for the
// OpenAI, DeepSeek, and custom (OpenAI-compatible) providers.
package openai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"codeagents/pkg/agent/llm"
	"codeagents/pkg/tools"
)

// Client wraps the OpenAI chat-completions API to implement llm.LLMClient.
type Client struct {
	client *openai.Client
	model  string
}

// NewClient creates a client for the given model. A non-empty baseURL
// points the client at an OpenAI-compatible endpoint (DeepSeek, local
// gateways).
func NewClient(apiKey, baseURL, model string) llm.LLMClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Complete implements the llm.LLMClient interface.
func (c *Client) Complete(ctx context.Context, in llm.CompletionRequest) (llm.CompletionResponse, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    convertMessages(in.Messages),
		Temperature: in.Temperature,
		MaxTokens:   in.MaxTokens,
	}

	if len(in.Tools) > 0 {
		req.Tools = convertTools(in.Tools)
		if in.ToolChoice != "" {
			req.ToolChoice = in.ToolChoice
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return llm.CompletionResponse{}, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return llm.CompletionResponse{}, fmt.Errorf("chat completion returned no choices")
	}

	choice := resp.Choices[0]
	return llm.CompletionResponse{
		Content:    choice.Message.Content,
		ToolCalls:  convertWireCalls(choice.Message.ToolCalls),
		StopReason: string(choice.FinishReason),
	}, nil
}

// GetModelName returns the model name for this client.
func (c *Client) GetModelName() string {
	return c.model
}

func convertMessages(messages []llm.CompletionMessage) []openai.ChatCompletionMessage {
	result := make([]openai.ChatCompletionMessage, 0, len(messages))
	for i := range messages {
		msg := &messages[i]
		converted := openai.ChatCompletionMessage{
			Role:       string(msg.Role),
			Content:    msg.Content,
			ToolCallID: msg.ToolCallID,
		}
		for _, tc := range msg.ToolCalls {
			converted.ToolCalls = append(converted.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Function.Name,
					Arguments: tc.Function.Arguments,
				},
			})
		}
		result = append(result, converted)
	}
	return result
}

func convertTools(defs []tools.ToolDefinition) []openai.Tool {
	result := make([]openai.Tool, 0, len(defs))
	for i := range defs {
		def := &defs[i]
		result = append(result, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        def.Name,
				Description: def.Description,
				Parameters:  def.InputSchema,
			},
		})
	}
	return result
}

func convertWireCalls(calls []openai.ToolCall) []llm.WireCall {
	if len(calls) == 0 {
		return nil
	}
	result := make([]llm.WireCall, 0, len(calls))
	for _, call := range calls {
		result = append(result, llm.WireCall{
			ID:   call.ID,
			Type: string(call.Type),
			Function: llm.WireFunction{
				Name:      call.Function.Name,
				Arguments: call.Function.Arguments,
			},
		})
	}
	return result
}
