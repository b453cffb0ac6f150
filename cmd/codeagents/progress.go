package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"codeagents/pkg/orch"
)

// defaultTask is the demo project used when no -task flag is given: a
// static web page that lists the day's arXiv computer science papers.
const defaultTask = `Create a web page called "arXiv CS Daily" that displays recent arXiv computer science papers.

Requirements:
1. An index.html page with a clean, modern layout showing a list of papers.
2. Each paper entry shows title, authors, abstract, and a link to the arXiv page.
3. A JavaScript file that fetches paper data from the arXiv API (http://export.arxiv.org/api/query) for the cs category, sorted by submission date.
4. A CSS file with a responsive design that works on mobile and desktop.
5. A search box to filter the displayed papers by title or author.
6. Show a loading indicator while papers are being fetched and a friendly message if the fetch fails.

Keep everything in plain HTML, CSS, and JavaScript with no build step.`

// logEntry is one line of the execution log written alongside the
// generated project.
type logEntry struct {
	Timestamp string `json:"timestamp"`
	Status    string `json:"status"`
	Message   string `json:"message"`
}

// progressTracker accumulates progress events for the execution log
// and prints phase lines to stdout.
type progressTracker struct {
	entries []logEntry
	isTTY   bool
}

func newProgressTracker(isTTY bool) *progressTracker {
	return &progressTracker{entries: []logEntry{}, isTTY: isTTY}
}

func (p *progressTracker) update(event orch.ProgressEvent) {
	p.entries = append(p.entries, logEntry{
		Timestamp: time.Now().Format(time.RFC3339),
		Status:    string(event.Status),
		Message:   event.Message,
	})
	line := event.Message
	if event.Total > 0 {
		line = fmt.Sprintf("%s (%d/%d)", event.Message, event.Current, event.Total)
	}
	if p.isTTY {
		fmt.Printf("  \033[36m[%s]\033[0m %s\n", event.Status, line)
	} else {
		fmt.Printf("  [%s] %s\n", event.Status, line)
	}
}

func (p *progressTracker) printBanner(task string) {
	fmt.Println("============================================================")
	fmt.Println("Multi-Agent Code Generation")
	fmt.Println("============================================================")
	fmt.Printf("Task: %s\n\n", firstLine(task))
}

func (p *progressTracker) printSummary(result orch.RunResult, outputDir string) {
	fmt.Println()
	fmt.Println("============================================================")
	if result.Success {
		fmt.Println("Execution completed successfully")
	} else {
		fmt.Println("Execution failed")
		if result.Error != "" {
			fmt.Printf("Error: %s\n", result.Error)
		}
	}
	fmt.Println("============================================================")
	fmt.Printf("Status:          %s\n", result.Status)
	fmt.Printf("Tasks completed: %d\n", len(result.TasksCompleted))
	fmt.Printf("Files created:   %d\n", result.TotalFiles)
	for _, f := range result.FilesCreated {
		fmt.Printf("  - %s\n", f)
	}
	fmt.Printf("Duration:        %.1fs\n", result.DurationSeconds)
	fmt.Printf("Output:          %s\n", outputDir)
}

// saveLog writes the accumulated progress entries as a JSON array.
func (p *progressTracker) saveLog(path string) error {
	data, err := json.MarshalIndent(p.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode execution log: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
