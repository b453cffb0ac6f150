// Package metrics provides Prometheus-based metrics recording for pipeline runs.
package metrics

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

// Recorder collects counters and histograms for model calls and tool
// executions. Each Recorder owns a private registry so parallel runs
// (and tests) never collide on metric registration.
type Recorder struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	promptTokens    *prometheus.CounterVec
	toolsTotal      *prometheus.CounterVec
	filesCreated    prometheus.Counter
	tasksTotal      *prometheus.CounterVec
}

// NewRecorder creates a Recorder backed by a fresh registry.
func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Recorder{
		registry: registry,
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "llm_requests_total",
				Help: "Total number of LLM requests by agent and status",
			},
			[]string{"agent", "status"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "llm_request_duration_seconds",
				Help:    "Duration of LLM requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"agent"},
		),
		promptTokens: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "llm_prompt_tokens_total",
				Help: "Approximate prompt tokens sent per agent",
			},
			[]string{"agent"},
		),
		toolsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tool_executions_total",
				Help: "Total number of tool executions by tool and status",
			},
			[]string{"tool", "status"},
		),
		filesCreated: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "files_created_total",
				Help: "Total number of files created by the pipeline",
			},
		),
		tasksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tasks_total",
				Help: "Total number of plan tasks by outcome",
			},
			[]string{"outcome"},
		),
	}
}

// ObserveRequest records a completed model request.
func (r *Recorder) ObserveRequest(agent string, duration time.Duration, success bool) {
	r.requestsTotal.WithLabelValues(agent, statusLabel(success)).Inc()
	r.requestDuration.WithLabelValues(agent).Observe(duration.Seconds())
}

// AddPromptTokens records the approximate prompt size of a request.
func (r *Recorder) AddPromptTokens(agent string, tokens int) {
	if tokens > 0 {
		r.promptTokens.WithLabelValues(agent).Add(float64(tokens))
	}
}

// ObserveTool records a tool execution.
func (r *Recorder) ObserveTool(tool string, success bool) {
	r.toolsTotal.WithLabelValues(tool, statusLabel(success)).Inc()
}

// FileCreated increments the created-files counter.
func (r *Recorder) FileCreated() {
	r.filesCreated.Inc()
}

// TaskCompleted records the outcome of a plan task ("success" or "failure").
func (r *Recorder) TaskCompleted(outcome string) {
	r.tasksTotal.WithLabelValues(outcome).Inc()
}

// Snapshot renders all collected metrics in the Prometheus text format.
func (r *Recorder) Snapshot() (string, error) {
	families, err := r.registry.Gather()
	if err != nil {
		return "", fmt.Errorf("failed to gather metrics: %w", err)
	}

	var buf bytes.Buffer
	encoder := expfmt.NewEncoder(&buf, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, family := range families {
		if err := encoder.Encode(family); err != nil {
			return "", fmt.Errorf("failed to encode metric family %s: %w", family.GetName(), err)
		}
	}

	return buf.String(), nil
}

// WriteSnapshot writes the text-format snapshot to path.
func (r *Recorder) WriteSnapshot(path string) error {
	snapshot, err := r.Snapshot()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(snapshot), 0o644); err != nil {
		return fmt.Errorf("failed to write metrics snapshot: %w", err)
	}
	return nil
}

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
