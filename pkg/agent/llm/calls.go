package llm

import (
	"encoding/json"
	"strings"

	"codeagents/pkg/logx"
)

// WireCall is a tool invocation as it appears on the wire: the
// arguments are a JSON-encoded string. Transcript assistant turns
// store this form.
type WireCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function WireFunction `json:"function"`
}

// WireFunction is the function part of a wire tool call.
type WireFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolCall is a decoded tool invocation ready for execution.
type ToolCall struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Parameters map[string]any `json:"parameters"`
}

// Wire converts a decoded call back to wire form. The conversion is
// total: parameters that originated from decoded JSON always
// re-marshal, and an empty parameter set encodes as "{}".
func (t ToolCall) Wire() WireCall {
	args := "{}"
	if len(t.Parameters) > 0 {
		if data, err := json.Marshal(t.Parameters); err == nil {
			args = string(data)
		}
	}
	return WireCall{
		ID:   t.ID,
		Type: "function",
		Function: WireFunction{
			Name:      t.Name,
			Arguments: args,
		},
	}
}

// Decode parses the wire call's argument string into a ToolCall. If
// the arguments are not valid JSON, one repair pass escapes raw
// newline and carriage-return characters and re-parses. Any other
// corruption is an error.
func (w WireCall) Decode() (ToolCall, error) {
	params, err := parseArguments(w.Function.Arguments)
	if err != nil {
		repaired := escapeRawNewlines(w.Function.Arguments)
		params, err = parseArguments(repaired)
		if err != nil {
			return ToolCall{}, err
		}
	}
	return ToolCall{ID: w.ID, Name: w.Function.Name, Parameters: params}, nil
}

// DecodeCalls decodes a response's wire calls, dropping any whose
// arguments fail to parse even after repair. A response may
// legitimately yield zero, some, or all of its calls.
func DecodeCalls(wireCalls []WireCall, logger *logx.Logger) []ToolCall {
	calls := make([]ToolCall, 0, len(wireCalls))
	for _, wc := range wireCalls {
		call, err := wc.Decode()
		if err != nil {
			if logger != nil {
				logger.Warn("dropping tool call %s (%s): unparsable arguments: %v", wc.ID, wc.Function.Name, err)
			}
			continue
		}
		calls = append(calls, call)
	}
	return calls
}

// WireCalls converts decoded calls to wire form for transcript storage.
func WireCalls(calls []ToolCall) []WireCall {
	wire := make([]WireCall, 0, len(calls))
	for _, c := range calls {
		wire = append(wire, c.Wire())
	}
	return wire
}

func parseArguments(args string) (map[string]any, error) {
	if strings.TrimSpace(args) == "" {
		return map[string]any{}, nil
	}
	var params map[string]any
	if err := json.Unmarshal([]byte(args), &params); err != nil {
		return nil, err
	}
	return params, nil
}

// escapeRawNewlines escapes literal newline and carriage-return bytes
// that the backend left unescaped inside JSON string values.
func escapeRawNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r", "\\r")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
