package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	execpkg "codeagents/pkg/exec"
	"codeagents/pkg/logx"
)

const defaultCommandTimeout = 30 * time.Second

// Registry executes tool calls against a sandboxed base directory.
// Every filesystem path is resolved relative to the base directory and
// verified to stay under it; escapes fail closed.
type Registry struct {
	baseDir        string
	executor       execpkg.Executor
	logger         *logx.Logger
	commandTimeout time.Duration
}

// NewRegistry creates a registry rooted at baseDir, creating the
// directory if needed.
func NewRegistry(baseDir string, executor execpkg.Executor, logger *logx.Logger) (*Registry, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("resolve base directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("create base directory: %w", err)
	}
	if logger == nil {
		logger = logx.NewLogger("tools")
	}
	return &Registry{
		baseDir:        abs,
		executor:       executor,
		logger:         logger,
		commandTimeout: defaultCommandTimeout,
	}, nil
}

// SetCommandTimeout overrides the default execute_command timeout used
// when the model does not supply one.
func (r *Registry) SetCommandTimeout(d time.Duration) {
	if d > 0 {
		r.commandTimeout = d
	}
}

// BaseDir returns the sandbox root.
func (r *Registry) BaseDir() string {
	return r.baseDir
}

// Catalog returns the full tool catalog. Every model call that permits
// tool use advertises the whole set.
func (r *Registry) Catalog() []ToolDefinition {
	return []ToolDefinition{
		{
			Name:        ToolCreateFile,
			Description: "Create a new file with specified content",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"file_path": {Type: "string", Description: "Path to the file to create (relative to output directory)"},
					"content":   {Type: "string", Description: "Content to write to the file"},
				},
				Required: []string{"file_path", "content"},
			},
		},
		{
			Name:        ToolReadFile,
			Description: "Read content from a file",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"file_path": {Type: "string", Description: "Path to the file to read"},
				},
				Required: []string{"file_path"},
			},
		},
		{
			Name:        ToolListFiles,
			Description: "List all files in a directory",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"directory": {Type: "string", Description: "Directory path to list files from"},
				},
				Required: []string{"directory"},
			},
		},
		{
			Name:        ToolCreateDirectory,
			Description: "Create a new directory",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"dir_path": {Type: "string", Description: "Path to the directory to create"},
				},
				Required: []string{"dir_path"},
			},
		},
		{
			Name:        ToolWebSearch,
			Description: "Search the web for information (simulated)",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"query": {Type: "string", Description: "Search query"},
				},
				Required: []string{"query"},
			},
		},
		{
			Name:        ToolExecuteCommand,
			Description: "Execute a shell command (use with caution, only for safe operations like validation)",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"command": {Type: "string", Description: "Command to execute"},
					"timeout": {Type: "integer", Description: "Timeout in seconds", Default: 30},
				},
				Required: []string{"command"},
			},
		},
	}
}

// Typed argument structs, one per tool, decoded from the model's
// argument map before dispatch.

type createFileArgs struct {
	FilePath string `json:"file_path"`
	Content  string `json:"content"`
}

type readFileArgs struct {
	FilePath string `json:"file_path"`
}

type listFilesArgs struct {
	Directory string `json:"directory"`
}

type createDirectoryArgs struct {
	DirPath string `json:"dir_path"`
}

type webSearchArgs struct {
	Query string `json:"query"`
}

type executeCommandArgs struct {
	Command string `json:"command"`
	Timeout int    `json:"timeout"`
}

// Execute dispatches one tool call. It never returns an error to the
// caller: every failure, including an unknown tool name, is reported
// through the result so the model can react.
func (r *Registry) Execute(ctx context.Context, name string, arguments map[string]any) ToolResult {
	switch name {
	case ToolCreateFile:
		var args createFileArgs
		if err := decodeArgs(arguments, &args); err != nil {
			return errorResult(fmt.Sprintf("Invalid arguments for %s: %v", name, err))
		}
		return r.createFile(args)
	case ToolReadFile:
		var args readFileArgs
		if err := decodeArgs(arguments, &args); err != nil {
			return errorResult(fmt.Sprintf("Invalid arguments for %s: %v", name, err))
		}
		return r.readFile(args)
	case ToolListFiles:
		var args listFilesArgs
		if err := decodeArgs(arguments, &args); err != nil {
			return errorResult(fmt.Sprintf("Invalid arguments for %s: %v", name, err))
		}
		return r.listFiles(args)
	case ToolCreateDirectory:
		var args createDirectoryArgs
		if err := decodeArgs(arguments, &args); err != nil {
			return errorResult(fmt.Sprintf("Invalid arguments for %s: %v", name, err))
		}
		return r.createDirectory(args)
	case ToolWebSearch:
		var args webSearchArgs
		if err := decodeArgs(arguments, &args); err != nil {
			return errorResult(fmt.Sprintf("Invalid arguments for %s: %v", name, err))
		}
		return r.webSearch(args)
	case ToolExecuteCommand:
		var args executeCommandArgs
		if err := decodeArgs(arguments, &args); err != nil {
			return errorResult(fmt.Sprintf("Invalid arguments for %s: %v", name, err))
		}
		return r.executeCommand(ctx, args)
	default:
		return errorResult(fmt.Sprintf("Unknown tool: %s", name))
	}
}

// decodeArgs converts the model's argument map into a typed struct.
func decodeArgs(arguments map[string]any, out any) error {
	data, err := json.Marshal(arguments)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// resolve maps a model-supplied relative path to an absolute path and
// verifies it stays under the sandbox root.
func (r *Registry) resolve(rel string) (string, error) {
	if filepath.IsAbs(rel) {
		return "", fmt.Errorf("absolute paths are not allowed: %s", rel)
	}
	full := filepath.Clean(filepath.Join(r.baseDir, rel))
	if full != r.baseDir && !strings.HasPrefix(full, r.baseDir+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes output directory: %s", rel)
	}
	return full, nil
}
