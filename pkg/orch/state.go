package orch

import (
	"time"

	"codeagents/pkg/proto"
)

// Status is the orchestrator's lifecycle state.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusPlanning   Status = "planning"
	StatusCoding     Status = "coding"
	StatusEvaluating Status = "evaluating"
	StatusDebugging  Status = "debugging"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// RunState is the single mutable record of one orchestration run. It
// is owned and mutated exclusively by the Orchestrator; agents only
// ever see structured inputs and return structured results.
type RunState struct {
	Status          Status             `json:"status"`
	CurrentTask     string             `json:"current_task,omitempty"`
	Plan            *proto.Plan        `json:"plan,omitempty"`
	TasksCompleted  []string           `json:"tasks_completed"`
	TasksPending    []proto.Task       `json:"tasks_pending"`
	AllCreatedFiles []string           `json:"all_created_files"`
	Evaluations     []proto.Evaluation `json:"evaluations"`
	Iterations      int                `json:"iterations"`
	StartTime       time.Time          `json:"start_time"`
	EndTime         time.Time          `json:"end_time"`
}

// newRunState returns the initial idle snapshot.
func newRunState() RunState {
	return RunState{
		Status:          StatusIdle,
		TasksCompleted:  []string{},
		TasksPending:    []proto.Task{},
		AllCreatedFiles: []string{},
		Evaluations:     []proto.Evaluation{},
	}
}

// snapshot returns a copy whose slices are detached from the live
// state.
func (s *RunState) snapshot() RunState {
	out := *s
	out.TasksCompleted = append([]string(nil), s.TasksCompleted...)
	out.TasksPending = append([]proto.Task(nil), s.TasksPending...)
	out.AllCreatedFiles = append([]string(nil), s.AllCreatedFiles...)
	out.Evaluations = append([]proto.Evaluation(nil), s.Evaluations...)
	return out
}

// RunResult is the final assembled outcome of one run. Partial
// progress is always included, success or not.
type RunResult struct {
	Success         bool               `json:"success"`
	Status          Status             `json:"status"`
	Error           string             `json:"error,omitempty"`
	Plan            *proto.Plan        `json:"plan,omitempty"`
	TasksCompleted  []string           `json:"tasks_completed"`
	FilesCreated    []string           `json:"files_created"`
	TotalFiles      int                `json:"total_files"`
	Evaluations     []proto.Evaluation `json:"evaluations"`
	Iterations      int                `json:"iterations"`
	DurationSeconds float64            `json:"duration_seconds"`
}

// ProgressEvent is one best-effort progress notification.
type ProgressEvent struct {
	Message      string `json:"message"`
	Status       Status `json:"status"`
	Current      int    `json:"current"`
	Total        int    `json:"total"`
	FilesCreated int    `json:"files_created"`
}

// ProgressFunc receives progress events during a run. Implementations
// may misbehave freely: a panicking callback is logged and ignored.
type ProgressFunc func(ProgressEvent)
