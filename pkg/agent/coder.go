package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"codeagents/pkg/agent/llm"
	"codeagents/pkg/agent/toolloop"
	"codeagents/pkg/config"
	"codeagents/pkg/logx"
	"codeagents/pkg/metrics"
	"codeagents/pkg/proto"
)

// CoderAgent implements one plan task at a time by driving the tool
// loop. Each task starts a fresh transcript; nothing carries over
// between invocations.
type CoderAgent struct {
	gateway       *Gateway
	tools         toolloop.Toolset
	recorder      *metrics.Recorder
	logger        *logx.Logger
	temperature   float32
	maxTokens     int
	maxIterations int
}

// NewCoderAgent creates a coder. recorder may be nil.
func NewCoderAgent(gateway *Gateway, toolset toolloop.Toolset, cfg *config.Config, recorder *metrics.Recorder, logger *logx.Logger) *CoderAgent {
	sampling := cfg.AgentFor(config.AgentCoder)
	return &CoderAgent{
		gateway:       gateway,
		tools:         toolset,
		recorder:      recorder,
		logger:        logger,
		temperature:   sampling.Temperature,
		maxTokens:     sampling.MaxTokens,
		maxIterations: cfg.CoderIterations,
	}
}

// CodeResult is the outcome of one task implementation. CreatedFiles
// is populated even when Err is set so partial work is never lost.
type CodeResult struct {
	CreatedFiles []string
	Iterations   int
	FinalMessage string
	Err          error
}

// Success reports whether the task completed without a model failure.
// Reaching the iteration ceiling still counts as success.
func (r CodeResult) Success() bool {
	return r.Err == nil
}

// ExecuteTask runs the tool loop for one plan task.
func (a *CoderAgent) ExecuteTask(ctx context.Context, task *proto.Task, contextData map[string]any) CodeResult {
	a.logger.Info("starting code generation for task: %s", task.TaskID)

	details := task.ImplementationDetails
	if details == "" {
		details = "None"
	}
	prompt := fmt.Sprintf(`Generate code for this task:

Task ID: %s
Title: %s
Description: %s
Files to create: %s
Implementation details: %s

Generate complete, working code. Use the create_file tool to create each file.
Make sure the code is production-ready with proper error handling and user feedback.`,
		task.TaskID, task.Title, task.Description, strings.Join(task.Files, ", "), details)

	messages := []llm.CompletionMessage{
		llm.NewSystemMessage(coderSystemPrompt),
		llm.NewUserMessage(prompt),
	}
	if len(contextData) > 0 {
		if encoded, err := json.MarshalIndent(contextData, "", "  "); err == nil {
			messages = append(messages, llm.NewUserMessage(fmt.Sprintf("Additional context:\n%s", encoded)))
		}
	}

	out := toolloop.Run(ctx, messages, &toolloop.Config{
		Completer:     a.gateway,
		Tools:         a.tools,
		Logger:        a.logger,
		Recorder:      a.recorder,
		MaxIterations: a.maxIterations,
		MaxTokens:     a.maxTokens,
		Temperature:   a.temperature,
	})
	if out.Err != nil {
		a.logger.Error("code generation failed for %s: %v", task.TaskID, out.Err)
	} else {
		a.logger.Info("code generation for %s done: %d files in %d iterations", task.TaskID, len(out.CreatedFiles), out.Iterations)
	}

	return CodeResult{
		CreatedFiles: out.CreatedFiles,
		Iterations:   out.Iterations,
		FinalMessage: out.FinalMessage,
		Err:          out.Err,
	}
}
