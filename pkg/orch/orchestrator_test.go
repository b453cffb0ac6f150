package orch

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeagents/pkg/agent"
	"codeagents/pkg/config"
	"codeagents/pkg/logx"
	"codeagents/pkg/proto"
)

type stubPlanner struct {
	plan  *proto.Plan
	err   error
	calls int
}

func (s *stubPlanner) CreatePlan(_ context.Context, _ string, _ map[string]any) (*proto.Plan, error) {
	s.calls++
	return s.plan, s.err
}

type stubCoder struct {
	calls int
	fail  map[string]bool
	// files overrides the created-file list per task; defaults to the
	// task's declared files.
	files map[string][]string
}

func (s *stubCoder) ExecuteTask(_ context.Context, task *proto.Task, _ map[string]any) agent.CodeResult {
	s.calls++
	if s.fail[task.TaskID] {
		return agent.CodeResult{Err: errors.New("generation failed")}
	}
	created := task.Files
	if override, ok := s.files[task.TaskID]; ok {
		created = override
	}
	return agent.CodeResult{CreatedFiles: created, Iterations: 1}
}

type stubEvaluator struct {
	calls     int
	quality   proto.Quality
	critical  bool
	err       error
	seenFiles [][]string
}

func (s *stubEvaluator) EvaluateTask(_ context.Context, task *proto.Task, files []string) (*proto.Evaluation, error) {
	s.calls++
	s.seenFiles = append(s.seenFiles, files)
	if s.err != nil {
		return nil, s.err
	}
	eval := &proto.Evaluation{TaskID: task.TaskID, OverallQuality: s.quality, PassesRequirements: true}
	if s.critical {
		eval.Issues = []proto.Issue{{Severity: proto.SeverityCritical, Description: "broken"}}
	}
	return eval, nil
}

type stubDebugger struct {
	calls int
	fixed []string
	seen  []string
	err   error
}

func (s *stubDebugger) AnalyzeAndFix(_ context.Context, files []string, _ string) agent.DebugResult {
	s.calls++
	s.seen = append([]string(nil), files...)
	return agent.DebugResult{FixedFiles: s.fixed, Iterations: 1, Err: s.err}
}

func twoTaskPlan() *proto.Plan {
	return &proto.Plan{
		ProjectOverview: "todo app",
		Tasks: []proto.Task{
			{TaskID: "T1", Title: "Base page", Files: []string{"index.html"}},
			{TaskID: "T2", Title: "App logic", Files: []string{"js/app.js"}},
		},
	}
}

type fixture struct {
	planner   *stubPlanner
	coder     *stubCoder
	evaluator *stubEvaluator
	debugger  *stubDebugger
	orch      *Orchestrator
}

func newFixture(t *testing.T, cfg *config.Config) *fixture {
	t.Helper()
	f := &fixture{
		planner:   &stubPlanner{plan: twoTaskPlan()},
		coder:     &stubCoder{fail: map[string]bool{}, files: map[string][]string{}},
		evaluator: &stubEvaluator{quality: proto.QualityGood},
		debugger:  &stubDebugger{},
	}
	logger := logx.NewLoggerTo("orch-test", io.Discard)
	f.orch = New(f.planner, f.coder, f.evaluator, f.debugger, cfg, nil, logger)
	return f
}

func TestExecuteHappyPath(t *testing.T) {
	f := newFixture(t, config.Default())

	var events []ProgressEvent
	result := f.orch.Execute(context.Background(), "build a todo app", func(e ProgressEvent) {
		events = append(events, e)
	})

	assert.True(t, result.Success)
	assert.Equal(t, StatusCompleted, result.Status)
	assert.Equal(t, []string{"T1", "T2"}, result.TasksCompleted)
	assert.Equal(t, 2, result.TotalFiles)
	assert.Equal(t, 0, result.Iterations)
	assert.Len(t, result.Evaluations, 2)
	assert.GreaterOrEqual(t, result.DurationSeconds, 0.0)

	assert.Equal(t, 1, f.planner.calls)
	assert.Equal(t, 2, f.coder.calls)
	assert.Equal(t, 2, f.evaluator.calls)
	assert.Equal(t, 1, f.debugger.calls)

	// Progress: planning, one per task, evaluation, debug, completion.
	require.NotEmpty(t, events)
	assert.Equal(t, StatusPlanning, events[0].Status)
	assert.Equal(t, 1, events[1].Current)
	assert.Equal(t, 2, events[1].Total)
	assert.Equal(t, 2, events[2].Current)
	last := events[len(events)-1]
	assert.Equal(t, StatusCompleted, last.Status)
	assert.Equal(t, 2, last.FilesCreated)
}

func TestExecutePoorQualityIterateDecisionIsInert(t *testing.T) {
	f := newFixture(t, config.Default())
	f.evaluator.quality = proto.QualityPoor

	result := f.orch.Execute(context.Background(), "task", nil)

	// The decision fires and the counter advances, but phases 2-4 do
	// not re-run.
	assert.True(t, result.Success)
	assert.Equal(t, StatusCompleted, result.Status)
	assert.Equal(t, 1, result.Iterations)
	assert.Equal(t, 2, f.coder.calls)
	assert.Equal(t, 1, f.debugger.calls)
}

func TestExecuteCriticalIssueTriggersIterateDecision(t *testing.T) {
	f := newFixture(t, config.Default())
	f.evaluator.quality = proto.QualityGood
	f.evaluator.critical = true

	result := f.orch.Execute(context.Background(), "task", nil)
	assert.Equal(t, 1, result.Iterations)
	assert.Equal(t, StatusCompleted, result.Status)
}

func TestExecutePlanningFailureIsFatal(t *testing.T) {
	f := newFixture(t, config.Default())
	f.planner.plan = nil
	f.planner.err = &agent.ParseError{Raw: "not json", Err: errors.New("invalid character")}

	result := f.orch.Execute(context.Background(), "task", nil)

	assert.False(t, result.Success)
	assert.Equal(t, StatusFailed, result.Status)
	assert.Contains(t, result.Error, "planning failed")
	// No later phase runs.
	assert.Equal(t, 0, f.coder.calls)
	assert.Equal(t, 0, f.evaluator.calls)
	assert.Equal(t, 0, f.debugger.calls)
}

func TestExecutePerTaskFailureSkipsTask(t *testing.T) {
	f := newFixture(t, config.Default())
	f.coder.fail["T1"] = true

	result := f.orch.Execute(context.Background(), "task", nil)

	assert.True(t, result.Success)
	assert.Equal(t, []string{"T2"}, result.TasksCompleted)
	assert.Equal(t, []string{"js/app.js"}, result.FilesCreated)
	// Only the completed task is evaluated.
	assert.Equal(t, 1, f.evaluator.calls)
}

func TestExecuteEvaluationFailureSkipped(t *testing.T) {
	f := newFixture(t, config.Default())
	f.evaluator.err = errors.New("eval backend down")

	result := f.orch.Execute(context.Background(), "task", nil)
	assert.True(t, result.Success)
	assert.Empty(t, result.Evaluations)
	assert.Equal(t, 1, f.debugger.calls)
}

func TestExecuteDebuggerMergesFixedFiles(t *testing.T) {
	f := newFixture(t, config.Default())
	// One path already known, one new.
	f.debugger.fixed = []string{"index.html", "data/sample.json"}

	result := f.orch.Execute(context.Background(), "task", nil)

	assert.Equal(t, []string{"index.html", "js/app.js", "data/sample.json"}, result.FilesCreated)
	// The debugger sees the union accumulated across tasks.
	assert.Equal(t, []string{"index.html", "js/app.js"}, f.debugger.seen)
}

func TestExecuteDebuggerFailureDoesNotAbort(t *testing.T) {
	f := newFixture(t, config.Default())
	f.debugger.err = errors.New("debug failed")

	result := f.orch.Execute(context.Background(), "task", nil)
	assert.True(t, result.Success)
	assert.Equal(t, StatusCompleted, result.Status)
}

func TestExecuteSkipEvaluation(t *testing.T) {
	cfg := config.Default()
	cfg.SkipEvaluation = true
	f := newFixture(t, cfg)

	result := f.orch.Execute(context.Background(), "task", nil)
	assert.True(t, result.Success)
	assert.Equal(t, 0, f.evaluator.calls)
	assert.Equal(t, 0, f.debugger.calls)
}

func TestExecuteEvaluatePolicyDeclaredVsActual(t *testing.T) {
	// The coder creates a different file than the plan declared.
	declared := config.Default()
	f := newFixture(t, declared)
	f.coder.files["T1"] = []string{"actually-created.html"}

	f.orch.Execute(context.Background(), "task", nil)
	require.NotEmpty(t, f.evaluator.seenFiles)
	assert.Equal(t, []string{"index.html"}, f.evaluator.seenFiles[0])

	actual := config.Default()
	actual.EvaluatePolicy = config.EvaluateActual
	f2 := newFixture(t, actual)
	f2.coder.files["T1"] = []string{"actually-created.html"}

	f2.orch.Execute(context.Background(), "task", nil)
	require.NotEmpty(t, f2.evaluator.seenFiles)
	assert.Equal(t, []string{"actually-created.html"}, f2.evaluator.seenFiles[0])
}

func TestExecuteSkipsTasksWithoutDeclaredFiles(t *testing.T) {
	f := newFixture(t, config.Default())
	f.planner.plan = &proto.Plan{Tasks: []proto.Task{
		{TaskID: "T1", Title: "No files declared"},
	}}
	f.coder.files["T1"] = []string{"side-effect.txt"}

	f.orch.Execute(context.Background(), "task", nil)
	assert.Equal(t, 0, f.evaluator.calls)
}

func TestExecutePanickingCallbackIsContained(t *testing.T) {
	f := newFixture(t, config.Default())

	result := f.orch.Execute(context.Background(), "task", func(ProgressEvent) {
		panic("misbehaving callback")
	})
	assert.True(t, result.Success)
	assert.Equal(t, StatusCompleted, result.Status)
}

func TestExecutePanickingAgentBecomesFailedResult(t *testing.T) {
	f := newFixture(t, config.Default())
	f.orch.coder = panicCoder{}

	result := f.orch.Execute(context.Background(), "task", nil)
	assert.False(t, result.Success)
	assert.Equal(t, StatusFailed, result.Status)
	assert.Contains(t, result.Error, "internal error")
}

type panicCoder struct{}

func (panicCoder) ExecuteTask(_ context.Context, _ *proto.Task, _ map[string]any) agent.CodeResult {
	panic("coder exploded")
}

func TestExecuteCancelledContextFailsCleanly(t *testing.T) {
	f := newFixture(t, config.Default())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := f.orch.Execute(ctx, "task", nil)
	assert.False(t, result.Success)
	assert.Equal(t, StatusFailed, result.Status)
	// Coding is checked per task, so no task ran.
	assert.Equal(t, 0, f.coder.calls)
}

func TestResetThenExecuteReproducesRun(t *testing.T) {
	f := newFixture(t, config.Default())

	first := f.orch.Execute(context.Background(), "task", nil)
	require.True(t, first.Success)

	f.orch.Reset()
	state := f.orch.GetState()
	assert.Equal(t, StatusIdle, state.Status)
	assert.Empty(t, state.TasksCompleted)
	assert.Empty(t, state.AllCreatedFiles)
	assert.Equal(t, 0, state.Iterations)
	assert.True(t, state.StartTime.IsZero())

	second := f.orch.Execute(context.Background(), "task", nil)
	assert.Equal(t, first.Success, second.Success)
	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, first.TasksCompleted, second.TasksCompleted)
	assert.Equal(t, first.FilesCreated, second.FilesCreated)
	assert.Equal(t, first.TotalFiles, second.TotalFiles)
	assert.Equal(t, first.Iterations, second.Iterations)
}

func TestGetStateSnapshotIsDetached(t *testing.T) {
	f := newFixture(t, config.Default())
	f.orch.Execute(context.Background(), "task", nil)

	snap := f.orch.GetState()
	require.NotEmpty(t, snap.TasksCompleted)
	snap.TasksCompleted[0] = "mutated"
	assert.Equal(t, "T1", f.orch.GetState().TasksCompleted[0])
}
