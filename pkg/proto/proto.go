// Package proto defines the structured types exchanged between the
// pipeline's agents and the orchestrator: plans, tasks, evaluations,
// and debug analyses. All of them are produced by parsing model output
// and are immutable once parsed.
package proto

// Task is one unit of work inside a Plan. Dependencies are recorded as
// declared by the model but are not consulted for ordering: tasks run
// in declaration order.
type Task struct {
	TaskID                string   `json:"task_id"`
	Title                 string   `json:"title"`
	Description           string   `json:"description"`
	Files                 []string `json:"files"`
	ImplementationDetails string   `json:"implementation_details"`
	Dependencies          []string `json:"dependencies"`
	Priority              string   `json:"priority"`
}

// Plan is the planner's decomposition of a task description. Owned by
// the orchestrator for the lifetime of one run, read-only after parse.
type Plan struct {
	ProjectOverview   string   `json:"project_overview"`
	Architecture      string   `json:"architecture"`
	APIConsiderations string   `json:"api_considerations"`
	TechnologyStack   []string `json:"technology_stack"`
	Tasks             []Task   `json:"tasks"`

	// FileStructure maps a path (file or directory) to its purpose.
	FileStructure map[string]string `json:"file_structure"`
}

// TaskByID returns the plan task with the given id, or nil.
func (p *Plan) TaskByID(id string) *Task {
	for i := range p.Tasks {
		if p.Tasks[i].TaskID == id {
			return &p.Tasks[i]
		}
	}
	return nil
}

// Quality is the evaluator's overall verdict for one task.
type Quality string

const (
	QualityExcellent Quality = "excellent"
	QualityGood      Quality = "good"
	QualityFair      Quality = "fair"
	QualityPoor      Quality = "poor"
)

// Severity grades an individual evaluation issue.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityMajor    Severity = "major"
	SeverityMinor    Severity = "minor"
)

// Issue is one problem the evaluator found in a task's files.
type Issue struct {
	Severity    Severity `json:"severity"`
	Type        string   `json:"type"`
	Description string   `json:"description"`
	File        string   `json:"file"`
	Suggestion  string   `json:"suggestion"`
}

// Evaluation is the evaluator's structured report for one task.
// Appended to run state and never mutated afterwards.
type Evaluation struct {
	TaskID             string   `json:"task_id,omitempty"`
	OverallQuality     Quality  `json:"overall_quality"`
	FunctionalityScore int      `json:"functionality_score"`
	CodeQualityScore   int      `json:"code_quality_score"`
	RobustnessScore    int      `json:"robustness_score"`
	Issues             []Issue  `json:"issues"`
	Strengths          []string `json:"strengths"`
	Recommendations    []string `json:"recommendations"`
	PassesRequirements bool     `json:"passes_requirements"`
}

// HasCritical reports whether any issue is critical.
func (e *Evaluation) HasCritical() bool {
	for i := range e.Issues {
		if e.Issues[i].Severity == SeverityCritical {
			return true
		}
	}
	return false
}

// DebugIssue is one problem the debugger identified.
type DebugIssue struct {
	Type        string   `json:"type"`
	Severity    Severity `json:"severity"`
	File        string   `json:"file"`
	Description string   `json:"description"`
	FixNeeded   bool     `json:"fix_needed"`
}

// DebugFix is one corrective action the debugger planned.
type DebugFix struct {
	File   string `json:"file"`
	Action string `json:"action"`
	Reason string `json:"reason"`
}

// DebugAnalysis is the debugger's structured report over the
// accumulated file set.
type DebugAnalysis struct {
	IssuesFound []DebugIssue `json:"issues_found"`
	Fixes       []DebugFix   `json:"fixes"`
}
