// Command codeagents runs the multi-agent code generation pipeline:
// plan a project from a task description, generate its files through
// tool-calling model conversations, evaluate the result, and apply
// automatic fixes, all inside a sandboxed output directory.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/term"

	"codeagents/pkg/agent"
	"codeagents/pkg/config"
	execpkg "codeagents/pkg/exec"
	"codeagents/pkg/logx"
	"codeagents/pkg/metrics"
	"codeagents/pkg/orch"
	"codeagents/pkg/persistence"
	"codeagents/pkg/tools"
	"codeagents/pkg/utils"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		taskFlag     string
		outputDir    string
		providerFlag string
		configPath   string
		envPath      string
		noEvaluation bool
		debugFlag    bool
	)
	flag.StringVar(&taskFlag, "task", "", "task description (default: built-in arXiv CS Daily demo task)")
	flag.StringVar(&outputDir, "output", "output", "output directory for generated files")
	flag.StringVar(&providerFlag, "provider", "", "LLM provider: openai, deepseek, anthropic, ollama, gemini, custom")
	flag.StringVar(&configPath, "config", "config.yaml", "configuration file path")
	flag.StringVar(&envPath, "env", ".env", "env file with provider credentials")
	flag.BoolVar(&noEvaluation, "no-evaluation", false, "skip the evaluation and debug phases")
	flag.BoolVar(&debugFlag, "debug", false, "enable debug logging")
	flag.Parse()

	if debugFlag {
		logx.SetDebug(true)
	}
	logger := logx.NewLogger("main")

	cfg, err := config.Load(configPath, envPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return 1
	}
	if providerFlag != "" {
		cfg.Provider = strings.ToLower(providerFlag)
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
			return 1
		}
	}
	if noEvaluation {
		cfg.SkipEvaluation = true
	}

	task := taskFlag
	if task == "" {
		task = defaultTask
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create output directory: %v\n", err)
		return 1
	}

	// Interrupt converts to context cancellation, checked between loop
	// iterations and phases.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := agent.NewLLMClient(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize LLM client: %v\n", err)
		return 1
	}

	registry, err := tools.NewRegistry(outputDir, execpkg.NewLocalExec(), logx.NewLogger("tools"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize tool registry: %v\n", err)
		return 1
	}
	registry.SetCommandTimeout(time.Duration(cfg.CommandTimeoutSec) * time.Second)

	recorder := metrics.NewRecorder()
	retryDelay := time.Duration(cfg.RetryDelaySec * float64(time.Second))
	gateway := func(role string) *agent.Gateway {
		return agent.NewGateway(client, role, cfg.MaxRetries, retryDelay, recorder, logx.NewLogger(role))
	}

	planner := agent.NewPlannerAgent(gateway(config.AgentPlanner), cfg.AgentFor(config.AgentPlanner), logx.NewLogger(config.AgentPlanner))
	coder := agent.NewCoderAgent(gateway(config.AgentCoder), registry, cfg, recorder, logx.NewLogger(config.AgentCoder))
	evaluator := agent.NewEvaluatorAgent(gateway(config.AgentEvaluator), registry, cfg, logx.NewLogger(config.AgentEvaluator))
	debugger := agent.NewDebuggerAgent(gateway(config.AgentDebugger), registry, cfg, recorder, logx.NewLogger(config.AgentDebugger))

	orchestrator := orch.New(planner, coder, evaluator, debugger, cfg, recorder, logx.NewLogger("orchestrator"))

	store, err := persistence.Open(filepath.Join(outputDir, "runs.db"), logx.NewLogger("persistence"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open run store: %v\n", err)
		return 1
	}
	defer func() { _ = store.Close() }()

	runID := uuid.New().String()
	tracker := newProgressTracker(term.IsTerminal(int(os.Stdout.Fd())))

	logger.Info("starting run %s with provider %s (%s)", runID, cfg.Provider, client.GetModelName())
	tracker.printBanner(task)

	result := orchestrator.Execute(ctx, task, func(event orch.ProgressEvent) {
		tracker.update(event)
		if err := store.RecordProgress(runID, event); err != nil {
			logger.Warn("failed to persist progress event: %v", err)
		}
	})

	if err := store.SaveRun(&persistence.RunRecord{
		RunID:           runID,
		TaskDescription: task,
		Provider:        cfg.Provider,
		Model:           client.GetModelName(),
		Result:          result,
		FileDigests:     digestFiles(outputDir, result.FilesCreated, logger),
		CreatedAt:       time.Now(),
	}); err != nil {
		logger.Warn("failed to persist run: %v", err)
	}

	if err := tracker.saveLog(filepath.Join(outputDir, "execution_log.json")); err != nil {
		logger.Warn("failed to save execution log: %v", err)
	}
	if err := saveResult(filepath.Join(outputDir, "result.json"), result); err != nil {
		logger.Warn("failed to save result: %v", err)
	}
	if err := recorder.WriteSnapshot(filepath.Join(outputDir, "metrics.prom")); err != nil {
		logger.Warn("failed to save metrics snapshot: %v", err)
	}

	tracker.printSummary(result, outputDir)

	if ctx.Err() != nil {
		fmt.Fprintln(os.Stderr, "execution interrupted")
		return 1
	}
	if !result.Success {
		return 1
	}
	return 0
}

// digestFiles computes content digests of the run's created files,
// keyed by their sandbox-relative paths. Files that disappeared after
// creation are logged and omitted.
func digestFiles(outputDir string, files []string, logger *logx.Logger) map[string]string {
	digests := make(map[string]string, len(files))
	for _, f := range files {
		digest, err := utils.FileDigest(filepath.Join(outputDir, f))
		if err != nil {
			logger.Warn("failed to digest %s: %v", f, err)
			continue
		}
		digests[f] = digest
	}
	return digests
}

// saveResult writes the full run result as indented JSON.
func saveResult(path string, result orch.RunResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
