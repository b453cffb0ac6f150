// Package agent implements the pipeline's agents: a model gateway with
// retry, the shared JSON extraction policy, and the planner, coder,
// evaluator, and debugger roles built on top of them.
package agent

import (
	"context"
	"fmt"
	"time"

	"codeagents/pkg/agent/llm"
	"codeagents/pkg/logx"
	"codeagents/pkg/metrics"
	"codeagents/pkg/utils"
)

// Gateway wraps an LLMClient with retry, tool-call decoding, and
// metrics. It never panics and never surfaces a transport error as a
// separate return: every call yields an llm.Result whose Err field the
// caller interprets.
type Gateway struct {
	client     llm.LLMClient
	agentName  string
	logger     *logx.Logger
	recorder   *metrics.Recorder
	counter    *utils.TokenCounter
	maxRetries int
	retryDelay time.Duration

	// sleep is replaceable in tests so retry timing is observable
	// without waiting.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewGateway creates a gateway for one agent role. recorder may be nil.
func NewGateway(client llm.LLMClient, agentName string, maxRetries int, retryDelay time.Duration, recorder *metrics.Recorder, logger *logx.Logger) *Gateway {
	counter, err := utils.NewTokenCounter(client.GetModelName())
	if err != nil {
		logger.Warn("token counter unavailable for %s, using character estimation: %v", client.GetModelName(), err)
		counter = nil
	}
	if maxRetries < 1 {
		maxRetries = 1
	}

	return &Gateway{
		client:     client,
		agentName:  agentName,
		logger:     logger,
		recorder:   recorder,
		counter:    counter,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		sleep:      sleepContext,
	}
}

// ModelName returns the underlying client's model name.
func (g *Gateway) ModelName() string {
	return g.client.GetModelName()
}

// Complete performs a single model call and decodes its tool calls.
// Calls whose arguments cannot be parsed even after repair are dropped
// individually; the rest of the response is preserved.
func (g *Gateway) Complete(ctx context.Context, req llm.CompletionRequest) llm.Result {
	g.observePromptSize(req)

	start := time.Now()
	resp, err := g.client.Complete(ctx, req)
	duration := time.Since(start)

	if g.recorder != nil {
		g.recorder.ObserveRequest(g.agentName, duration, err == nil)
	}

	if err != nil {
		g.logger.Error("model call failed after %.3gs: %v", duration.Seconds(), err)
		return llm.Result{Err: fmt.Errorf("completion failed: %w", err)}
	}

	g.logger.Debug("model call completed in %.3gs: %d chars, %d tool calls, stop=%s",
		duration.Seconds(), len(resp.Content), len(resp.ToolCalls), resp.StopReason)

	return llm.Result{
		Content:    resp.Content,
		ToolCalls:  llm.DecodeCalls(resp.ToolCalls, g.logger),
		StopReason: resp.StopReason,
	}
}

// RetryComplete calls Complete up to maxRetries times, sleeping
// retryDelay*attempt between attempts. The last attempt's result is
// returned whether or not it succeeded; context cancellation during
// backoff ends the retry sequence early.
func (g *Gateway) RetryComplete(ctx context.Context, req llm.CompletionRequest) llm.Result {
	var result llm.Result
	for attempt := 1; attempt <= g.maxRetries; attempt++ {
		result = g.Complete(ctx, req)
		if result.Success() {
			return result
		}

		g.logger.Warn("attempt %d/%d failed: %v", attempt, g.maxRetries, result.Err)
		if attempt < g.maxRetries {
			delay := time.Duration(attempt) * g.retryDelay
			g.logger.Info("retrying in %s", delay)
			if err := g.sleep(ctx, delay); err != nil {
				result.Err = fmt.Errorf("retry aborted: %w", err)
				return result
			}
		}
	}
	return result
}

// observePromptSize records the approximate token count of the request.
func (g *Gateway) observePromptSize(req llm.CompletionRequest) {
	if g.recorder == nil {
		return
	}
	total := 0
	for _, msg := range req.Messages {
		total += g.counter.CountTokens(msg.Content)
	}
	g.recorder.AddPromptTokens(g.agentName, total)
}

// sleepContext waits for d or until ctx is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
