// Package orch sequences the agent pipeline: Plan, Code, Evaluate,
// Debug, Decide, Complete. It owns all mutable run state; agents are
// invoked through narrow interfaces and communicate only via return
// values.
package orch

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"codeagents/pkg/agent"
	"codeagents/pkg/config"
	"codeagents/pkg/logx"
	"codeagents/pkg/metrics"
	"codeagents/pkg/proto"
)

// Planner produces a structured plan from a task description.
type Planner interface {
	CreatePlan(ctx context.Context, description string, contextData map[string]any) (*proto.Plan, error)
}

// Coder implements one plan task.
type Coder interface {
	ExecuteTask(ctx context.Context, task *proto.Task, contextData map[string]any) agent.CodeResult
}

// Evaluator reviews the files of one completed task.
type Evaluator interface {
	EvaluateTask(ctx context.Context, task *proto.Task, files []string) (*proto.Evaluation, error)
}

// Debugger analyzes and repairs the accumulated file set.
type Debugger interface {
	AnalyzeAndFix(ctx context.Context, files []string, projectDescription string) agent.DebugResult
}

// Orchestrator drives a full run. It is single-threaded: Execute,
// GetState, and Reset must not be called concurrently.
type Orchestrator struct {
	planner   Planner
	coder     Coder
	evaluator Evaluator
	debugger  Debugger
	logger    *logx.Logger
	recorder  *metrics.Recorder

	maxIterations  int
	skipEvaluation bool
	evaluatePolicy config.EvaluatePolicy

	state RunState
	// taskFiles records what the coder actually created per task, for
	// the "actual" evaluate policy.
	taskFiles map[string][]string
}

// New creates an orchestrator. recorder may be nil.
func New(planner Planner, coder Coder, evaluator Evaluator, debugger Debugger, cfg *config.Config, recorder *metrics.Recorder, logger *logx.Logger) *Orchestrator {
	return &Orchestrator{
		planner:        planner,
		coder:          coder,
		evaluator:      evaluator,
		debugger:       debugger,
		logger:         logger,
		recorder:       recorder,
		maxIterations:  cfg.MaxIterations,
		skipEvaluation: cfg.SkipEvaluation,
		evaluatePolicy: cfg.EvaluatePolicy,
		state:          newRunState(),
		taskFiles:      make(map[string][]string),
	}
}

// Execute runs the full phase sequence for one task description.
// Nothing escapes: panics anywhere in the sequence become a failed
// RunResult carrying whatever partial progress had accumulated.
func (o *Orchestrator) Execute(ctx context.Context, taskDescription string, progress ProgressFunc) (result RunResult) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("orchestrator panic: %v\n%s", r, debug.Stack())
			o.state.Status = StatusFailed
			o.state.EndTime = time.Now()
			result = o.buildResult(false, fmt.Sprintf("internal error: %v", r))
		}
	}()

	o.logger.Info("starting orchestrator run")
	o.state.StartTime = time.Now()

	// Phase 1: Plan. Failure here is fatal.
	o.state.Status = StatusPlanning
	o.emit(progress, "Planning project architecture...", 0, 0)

	plan, err := o.planner.CreatePlan(ctx, taskDescription, nil)
	if err != nil {
		o.logger.Error("planning failed: %v", err)
		o.state.Status = StatusFailed
		o.state.EndTime = time.Now()
		return o.buildResult(false, fmt.Sprintf("planning failed: %v", err))
	}
	o.state.Plan = plan
	o.state.TasksPending = plan.Tasks
	o.logger.Info("plan created with %d tasks", len(plan.Tasks))

	// Phase 2: Code every task in declared order.
	o.state.Status = StatusCoding
	o.runCoding(ctx, progress)

	if !o.skipEvaluation {
		// Phase 3: Evaluate completed tasks.
		o.state.Status = StatusEvaluating
		o.runEvaluation(ctx, progress)

		// Phase 4: Debug the accumulated file set once.
		o.state.Status = StatusDebugging
		o.runDebugging(ctx, progress, taskDescription)
	}

	if err := ctx.Err(); err != nil {
		o.logger.Error("run cancelled: %v", err)
		o.state.Status = StatusFailed
		o.state.EndTime = time.Now()
		return o.buildResult(false, fmt.Sprintf("run cancelled: %v", err))
	}

	// Phase 5: Iterate decision. The counter advances but phases 2-4
	// are not re-run; the hook is deliberately inert.
	if o.shouldIterate() && o.state.Iterations < o.maxIterations {
		o.logger.Info("issues found, iterating...")
		o.state.Iterations++
	}

	// Phase 6: Complete.
	o.state.Status = StatusCompleted
	o.state.EndTime = time.Now()
	o.emit(progress, "Project completed successfully!", 0, 0)

	return o.buildResult(true, "")
}

// GetState returns a detached snapshot of the run state.
func (o *Orchestrator) GetState() RunState {
	return o.state.snapshot()
}

// Reset returns the orchestrator to its initial idle state so it can
// run again.
func (o *Orchestrator) Reset() {
	o.state = newRunState()
	o.taskFiles = make(map[string][]string)
}

// runCoding executes every pending task in order. Per-task failures
// are logged and skipped; the phase never aborts.
func (o *Orchestrator) runCoding(ctx context.Context, progress ProgressFunc) {
	o.logger.Info("phase 2: code generation")
	total := len(o.state.TasksPending)

	for idx := range o.state.TasksPending {
		if ctx.Err() != nil {
			o.logger.Warn("coding phase interrupted at task %d/%d", idx+1, total)
			return
		}

		task := &o.state.TasksPending[idx]
		o.emit(progress, fmt.Sprintf("Generating code for task %d/%d: %s", idx+1, total, task.Title), idx+1, total)

		o.logger.Info("executing task: %s - %s", task.TaskID, task.Title)
		o.state.CurrentTask = task.TaskID

		result := o.coder.ExecuteTask(ctx, task, planContext(o.state.Plan))
		if result.Success() {
			o.logger.Info("task %s completed: %d files created", task.TaskID, len(result.CreatedFiles))
			o.state.TasksCompleted = append(o.state.TasksCompleted, task.TaskID)
			o.state.AllCreatedFiles = append(o.state.AllCreatedFiles, result.CreatedFiles...)
			o.taskFiles[task.TaskID] = result.CreatedFiles
			o.recordTask("success")
		} else {
			o.logger.Error("task %s failed: %v", task.TaskID, result.Err)
			o.recordTask("failure")
		}
	}
}

// runEvaluation reviews each completed task's files per the configured
// policy. Failures are logged and skipped.
func (o *Orchestrator) runEvaluation(ctx context.Context, progress ProgressFunc) {
	o.logger.Info("phase 3: code evaluation")

	if len(o.state.AllCreatedFiles) == 0 {
		o.logger.Warn("no files to evaluate")
		return
	}

	o.emit(progress, "Evaluating generated code...", 0, 0)

	for _, taskID := range o.state.TasksCompleted {
		task := o.state.Plan.TaskByID(taskID)
		if task == nil {
			continue
		}

		files := task.Files
		if o.evaluatePolicy == config.EvaluateActual {
			files = o.taskFiles[taskID]
		}
		if len(files) == 0 {
			continue
		}

		evaluation, err := o.evaluator.EvaluateTask(ctx, task, files)
		if err != nil {
			o.logger.Warn("evaluation failed for task %s: %v", taskID, err)
			continue
		}
		o.state.Evaluations = append(o.state.Evaluations, *evaluation)
		o.logger.Info("task %s evaluation: %s", taskID, evaluation.OverallQuality)
	}
}

// runDebugging analyzes the whole accumulated file set once and folds
// any fixed paths back into it. Debug failures never abort the run.
func (o *Orchestrator) runDebugging(ctx context.Context, progress ProgressFunc, taskDescription string) {
	o.logger.Info("phase 4: code debugging")

	if len(o.state.AllCreatedFiles) == 0 {
		o.logger.Warn("no files to debug")
		return
	}

	o.emit(progress, "Analyzing code for common issues (CORS, API problems)...", 0, 0)

	result := o.debugger.AnalyzeAndFix(ctx, o.state.AllCreatedFiles, taskDescription)
	if result.Err != nil {
		o.logger.Warn("debugging failed: %v", result.Err)
		return
	}

	if len(result.FixedFiles) > 0 {
		o.logger.Info("fixed %d files", len(result.FixedFiles))
		o.emit(progress, fmt.Sprintf("Fixed %d issues in generated code", len(result.FixedFiles)), 0, 0)

		// Exact string match only; differently-spelled equivalent
		// paths will duplicate.
		for _, fixed := range result.FixedFiles {
			if !contains(o.state.AllCreatedFiles, fixed) {
				o.state.AllCreatedFiles = append(o.state.AllCreatedFiles, fixed)
			}
		}
	} else {
		o.logger.Info("no critical issues found that need fixing")
		o.emit(progress, "Code analysis complete - no critical issues found", 0, 0)
	}

	if result.Analysis != nil {
		o.logger.Info("debug analysis found %d issues", len(result.Analysis.IssuesFound))
		for _, issue := range result.Analysis.IssuesFound {
			o.logger.Info("  - %s: %s", issue.Type, issue.Description)
		}
	}
}

// shouldIterate reports whether any evaluation warrants another pass:
// an overall "poor" verdict or any critical issue.
func (o *Orchestrator) shouldIterate() bool {
	for i := range o.state.Evaluations {
		if o.state.Evaluations[i].OverallQuality == proto.QualityPoor {
			return true
		}
		if o.state.Evaluations[i].HasCritical() {
			return true
		}
	}
	return false
}

// emit logs a progress message and notifies the callback. A panicking
// callback is contained here so it cannot abort the run.
func (o *Orchestrator) emit(progress ProgressFunc, message string, current, total int) {
	o.logger.Info("%s", message)
	if progress == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			o.logger.Warn("progress callback panicked: %v", r)
		}
	}()
	progress(ProgressEvent{
		Message:      message,
		Status:       o.state.Status,
		Current:      current,
		Total:        total,
		FilesCreated: len(o.state.AllCreatedFiles),
	})
}

func (o *Orchestrator) buildResult(success bool, errMsg string) RunResult {
	var duration float64
	if !o.state.StartTime.IsZero() && !o.state.EndTime.IsZero() {
		duration = o.state.EndTime.Sub(o.state.StartTime).Seconds()
	}

	return RunResult{
		Success:         success,
		Status:          o.state.Status,
		Error:           errMsg,
		Plan:            o.state.Plan,
		TasksCompleted:  append([]string(nil), o.state.TasksCompleted...),
		FilesCreated:    append([]string(nil), o.state.AllCreatedFiles...),
		TotalFiles:      len(o.state.AllCreatedFiles),
		Evaluations:     append([]proto.Evaluation(nil), o.state.Evaluations...),
		Iterations:      o.state.Iterations,
		DurationSeconds: duration,
	}
}

func (o *Orchestrator) recordTask(outcome string) {
	if o.recorder != nil {
		o.recorder.TaskCompleted(outcome)
	}
}

// planContext exposes the plan to the coder as loosely-typed context
// without handing over the state object itself.
func planContext(plan *proto.Plan) map[string]any {
	if plan == nil {
		return nil
	}
	return map[string]any{
		"project_overview": plan.ProjectOverview,
		"architecture":     plan.Architecture,
		"technology_stack": plan.TechnologyStack,
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
