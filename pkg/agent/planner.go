package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"codeagents/pkg/agent/llm"
	"codeagents/pkg/config"
	"codeagents/pkg/logx"
	"codeagents/pkg/proto"
)

// PlannerAgent turns a free-form task description into a structured
// Plan with one model call.
type PlannerAgent struct {
	gateway     *Gateway
	logger      *logx.Logger
	temperature float32
	maxTokens   int
}

// NewPlannerAgent creates a planner with the given sampling profile.
func NewPlannerAgent(gateway *Gateway, sampling config.AgentConfig, logger *logx.Logger) *PlannerAgent {
	return &PlannerAgent{
		gateway:     gateway,
		logger:      logger,
		temperature: sampling.Temperature,
		maxTokens:   sampling.MaxTokens,
	}
}

// CreatePlan asks the model to decompose the description into tasks
// and parses the response. A parse failure returns a *ParseError that
// carries the raw response text.
func (a *PlannerAgent) CreatePlan(ctx context.Context, description string, contextData map[string]any) (*proto.Plan, error) {
	a.logger.Info("starting project planning: %s", truncate(description, 100))

	messages := []llm.CompletionMessage{
		llm.NewSystemMessage(plannerSystemPrompt),
		llm.NewUserMessage(fmt.Sprintf("Plan the following project:\n\n%s", description)),
	}
	if len(contextData) > 0 {
		encoded, err := json.MarshalIndent(contextData, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode planning context: %w", err)
		}
		messages = append(messages, llm.NewUserMessage(fmt.Sprintf("Additional context:\n%s", encoded)))
	}

	res := a.gateway.RetryComplete(ctx, llm.CompletionRequest{
		Messages:    messages,
		MaxTokens:   a.maxTokens,
		Temperature: a.temperature,
	})
	if !res.Success() {
		return nil, fmt.Errorf("planning failed: %w", res.Err)
	}

	a.logger.Info("received planning response: %d characters", len(res.Content))

	var plan proto.Plan
	if err := UnmarshalResponse(res.Content, &plan); err != nil {
		a.logger.Error("failed to parse plan: %v", err)
		return nil, err
	}

	a.logger.Info("parsed plan with %d tasks", len(plan.Tasks))
	return &plan, nil
}

// truncate shortens s for log lines.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// clip bounds file content interpolated into prompts. Unlike truncate
// it adds no marker, keeping the cut deterministic.
func clip(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n]
}
