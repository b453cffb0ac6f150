package agent

import (
	"context"
	"fmt"
	"strings"

	"codeagents/pkg/agent/llm"
	"codeagents/pkg/agent/toolloop"
	"codeagents/pkg/config"
	"codeagents/pkg/logx"
	"codeagents/pkg/proto"
	"codeagents/pkg/tools"
)

// EvaluatorAgent reviews the files of one completed task with a single
// model call and parses the structured verdict.
type EvaluatorAgent struct {
	gateway      *Gateway
	tools        toolloop.Toolset
	logger       *logx.Logger
	temperature  float32
	maxTokens    int
	contentLimit int
}

// NewEvaluatorAgent creates an evaluator.
func NewEvaluatorAgent(gateway *Gateway, toolset toolloop.Toolset, cfg *config.Config, logger *logx.Logger) *EvaluatorAgent {
	sampling := cfg.AgentFor(config.AgentEvaluator)
	return &EvaluatorAgent{
		gateway:      gateway,
		tools:        toolset,
		logger:       logger,
		temperature:  sampling.Temperature,
		maxTokens:    sampling.MaxTokens,
		contentLimit: cfg.FileContentLimit,
	}
}

// EvaluateTask reads the given files through the sandbox and asks the
// model to review them against the task. Unreadable files are skipped
// with a warning; each readable file's content is truncated to the
// configured limit before it enters the prompt. The file list is the
// caller's choice and need not match what was actually created.
func (a *EvaluatorAgent) EvaluateTask(ctx context.Context, task *proto.Task, files []string) (*proto.Evaluation, error) {
	a.logger.Info("starting code evaluation for %d files", len(files))

	var request strings.Builder
	readable := 0
	var contents []fileContent
	for _, path := range files {
		result := a.tools.Execute(ctx, tools.ToolReadFile, map[string]any{"file_path": path})
		if !result.Success {
			a.logger.Warn("could not read file: %s", path)
			continue
		}
		readable++
		contents = append(contents, fileContent{path: path, content: clip(result.Content, a.contentLimit)})
	}

	details := task.ImplementationDetails
	if details == "" {
		details = "See description"
	}
	fmt.Fprintf(&request, `Evaluate the code for this task:

Task: %s
Description: %s
Requirements: %s

Files created: %d

`, task.Title, task.Description, details, readable)
	for _, fc := range contents {
		fmt.Fprintf(&request, "\n--- %s ---\n%s\n", fc.path, fc.content)
	}

	res := a.gateway.RetryComplete(ctx, llm.CompletionRequest{
		Messages: []llm.CompletionMessage{
			llm.NewSystemMessage(evaluatorSystemPrompt),
			llm.NewUserMessage(request.String()),
		},
		MaxTokens:   a.maxTokens,
		Temperature: a.temperature,
	})
	if !res.Success() {
		return nil, fmt.Errorf("evaluation failed: %w", res.Err)
	}

	var evaluation proto.Evaluation
	if err := UnmarshalResponse(res.Content, &evaluation); err != nil {
		a.logger.Error("failed to parse evaluation: %v", err)
		return nil, err
	}
	evaluation.TaskID = task.TaskID

	a.logger.Info("evaluation completed: %s", evaluation.OverallQuality)
	return &evaluation, nil
}

type fileContent struct {
	path    string
	content string
}
