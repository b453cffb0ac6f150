// Package tools provides the fixed tool catalog and the sandboxed
// registry that executes model-requested tool calls. The catalog is
// static per registry instance and dispatch is a closed switch over
// the known tool names.
package tools

// Tool name constants.
const (
	ToolCreateFile      = "create_file"
	ToolReadFile        = "read_file"
	ToolListFiles       = "list_files"
	ToolCreateDirectory = "create_directory"
	ToolWebSearch       = "web_search"
	ToolExecuteCommand  = "execute_command"
)

// Property defines a single parameter in a tool's input schema.
type Property struct {
	Type        string              `json:"type"`
	Description string              `json:"description,omitempty"`
	Enum        []string            `json:"enum,omitempty"`
	Items       *Property           `json:"items,omitempty"`
	Properties  map[string]Property `json:"properties,omitempty"`
	Default     any                 `json:"default,omitempty"`
}

// InputSchema defines the JSON schema for a tool's parameters.
type InputSchema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required,omitempty"`
}

// ToolDefinition describes one tool in the catalog, in the shape the
// model backends advertise to the model.
type ToolDefinition struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema InputSchema `json:"input_schema"`
}

// SearchResult is one snippet returned by the web_search tool.
type SearchResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// ToolResult is the outcome of one tool execution. Success is always
// set; the remaining fields depend on which tool produced the result.
type ToolResult struct {
	Success    bool           `json:"success"`
	Message    string         `json:"message,omitempty"`
	Content    string         `json:"content,omitempty"`
	Path       string         `json:"path,omitempty"`
	Files      []string       `json:"files,omitempty"`
	Count      int            `json:"count,omitempty"`
	Results    []SearchResult `json:"results,omitempty"`
	Stdout     string         `json:"stdout,omitempty"`
	Stderr     string         `json:"stderr,omitempty"`
	ReturnCode int            `json:"returncode,omitempty"`
}

func errorResult(msg string) ToolResult {
	return ToolResult{Success: false, Message: msg}
}
