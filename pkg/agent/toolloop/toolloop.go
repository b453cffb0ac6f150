// Package toolloop provides the bounded tool-calling loop shared by the
// coder and debugger agents: call the model, execute every requested
// tool, feed the results back, and stop on a text-only turn or at the
// iteration ceiling.
package toolloop

import (
	"context"
	"encoding/json"
	"fmt"

	"codeagents/pkg/agent/llm"
	"codeagents/pkg/logx"
	"codeagents/pkg/metrics"
	"codeagents/pkg/tools"
)

// Completer is the model-call surface the loop needs. The gateway
// satisfies it.
type Completer interface {
	RetryComplete(ctx context.Context, req llm.CompletionRequest) llm.Result
}

// Toolset is the tool surface the loop needs. The sandbox registry
// satisfies it.
type Toolset interface {
	Catalog() []tools.ToolDefinition
	Execute(ctx context.Context, name string, arguments map[string]any) tools.ToolResult
}

// Config defines how the loop behaves.
type Config struct {
	Completer Completer
	Tools     Toolset
	Logger    *logx.Logger
	Recorder  *metrics.Recorder // optional

	MaxIterations int
	MaxTokens     int
	Temperature   float32

	// OnContent is invoked with every non-empty assistant text turn,
	// before tools execute. The debugger uses it to opportunistically
	// parse its analysis document.
	OnContent func(content string)
}

// Result is the outcome of a loop run. CreatedFiles and the transcript
// are populated even on failure so callers can report partial work.
type Result struct {
	Messages     []llm.CompletionMessage
	CreatedFiles []string
	Iterations   int
	HitCeiling   bool
	FinalMessage string
	Err          error
}

// Run executes the loop starting from the given transcript. A turn
// with no tool calls ends the loop normally; reaching the iteration
// ceiling is also a normal stop, not a failure. A model failure or
// context cancellation ends the loop with Err set and partial results
// preserved.
func Run(ctx context.Context, messages []llm.CompletionMessage, cfg *Config) Result {
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = 10
	}

	result := Result{Messages: messages}

	for iteration := 1; iteration <= cfg.MaxIterations; iteration++ {
		result.Iterations = iteration

		if err := ctx.Err(); err != nil {
			result.Err = err
			return finish(result)
		}

		cfg.Logger.Info("iteration %d/%d", iteration, cfg.MaxIterations)

		res := cfg.Completer.RetryComplete(ctx, llm.CompletionRequest{
			Messages:    result.Messages,
			Tools:       cfg.Tools.Catalog(),
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
		})
		if !res.Success() {
			result.Err = res.Err
			return finish(result)
		}

		if res.Content != "" && cfg.OnContent != nil {
			cfg.OnContent(res.Content)
		}

		// Assistant turns keep their tool calls in wire form so the
		// transcript replays identically on the next request.
		assistant := llm.CompletionMessage{
			Role:    llm.RoleAssistant,
			Content: res.Content,
		}
		if len(res.ToolCalls) > 0 {
			assistant.ToolCalls = llm.WireCalls(res.ToolCalls)
		}
		result.Messages = append(result.Messages, assistant)

		if len(res.ToolCalls) == 0 {
			cfg.Logger.Info("loop completed after %d iterations", iteration)
			return finish(result)
		}

		// Every requested call gets a result turn, even failures.
		cfg.Logger.Info("processing %d tool calls", len(res.ToolCalls))
		for _, call := range res.ToolCalls {
			cfg.Logger.Info("executing tool: %s", call.Name)
			toolResult := cfg.Tools.Execute(ctx, call.Name, call.Parameters)

			if cfg.Recorder != nil {
				cfg.Recorder.ObserveTool(call.Name, toolResult.Success)
			}
			if call.Name == tools.ToolCreateFile && toolResult.Success {
				if path, ok := call.Parameters["file_path"].(string); ok {
					result.CreatedFiles = append(result.CreatedFiles, path)
					if cfg.Recorder != nil {
						cfg.Recorder.FileCreated()
					}
				}
			}

			result.Messages = append(result.Messages, llm.NewToolResultMessage(call.ID, encodeResult(toolResult)))
		}
	}

	// Hitting the ceiling with work done is a normal stop.
	cfg.Logger.Info("iteration ceiling reached after %d iterations", cfg.MaxIterations)
	result.HitCeiling = true
	return finish(result)
}

func finish(result Result) Result {
	if n := len(result.Messages); n > 0 {
		result.FinalMessage = result.Messages[n-1].Content
	}
	return result
}

func encodeResult(result tools.ToolResult) string {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Sprintf(`{"success":false,"message":"failed to encode tool result: %v"}`, err)
	}
	return string(data)
}
